package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"chatter/crud"
	"chatter/domain"
	"chatter/errs"
)

// latestFeedTTL is how long a cached latest-feed page may be served.
const latestFeedTTL = time.Minute

func (s *Server) registerFeedRoutes(r *mux.Router) {
	r.HandleFunc("/feed/personalized", s.requireAuth(s.handlePersonalizedFeed)).Methods("GET")
	r.HandleFunc("/feed/following", s.requireAuth(s.handleFollowingFeed)).Methods("GET")
	r.HandleFunc("/feed/latest", s.handleLatestFeed).Methods("GET")
}

// feedResponse is one page of a feed. NextCursor resumes the pagination;
// HasMore is false once a page came back short.
type feedResponse struct {
	Posts      []*domain.Post `json:"posts"`
	NextCursor int            `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// feedPage turns query parameters into a page request.
func feedPage(r *http.Request) (pageSize, cursor int, filters domain.FeedFilters) {
	q := r.URL.Query()
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	cursor, _ = strconv.Atoi(q.Get("cursor"))
	filters = domain.FeedFilters{
		SortBy:    domain.SortOrder(q.Get("sort_by")),
		DateRange: domain.DateRange(q.Get("date_range")),
	}
	return pageSize, cursor, filters
}

func newFeedResponse(posts []*domain.Post, pageSize int) *feedResponse {
	resp := &feedResponse{
		Posts:   posts,
		HasMore: len(posts) == pageSize,
	}
	if resp.Posts == nil {
		resp.Posts = []*domain.Post{}
	}
	if len(posts) > 0 {
		resp.NextCursor = posts[len(posts)-1].ID
	}
	return resp
}

// handlePersonalizedFeed handles the route "GET /feed/personalized".
func (s *Server) handlePersonalizedFeed(w http.ResponseWriter, r *http.Request) {
	pageSize, cursor, filters := feedPage(r)
	user := s.getUserFromContext(r.Context())
	posts, err := s.feeds.Personalized(r.Context(), user.ID, pageSize, cursor, filters)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(newFeedResponse(posts, normalizedPageSize(pageSize)))
}

// handleFollowingFeed handles the route "GET /feed/following".
func (s *Server) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	pageSize, cursor, filters := feedPage(r)
	user := s.getUserFromContext(r.Context())
	posts, err := s.feeds.Following(r.Context(), user.ID, pageSize, cursor, filters)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(newFeedResponse(posts, normalizedPageSize(pageSize)))
}

// handleLatestFeed handles the route "GET /feed/latest".
// The latest feed is identical for everyone, so its pages are served
// from a short-lived cache.
func (s *Server) handleLatestFeed(w http.ResponseWriter, r *http.Request) {
	pageSize, cursor, filters := feedPage(r)

	cacheKey := fmt.Sprintf("feed:latest:%d:%d:%s:%s", pageSize, cursor, filters.SortBy, filters.DateRange)
	if s.pageCache != nil {
		if cached, ok := s.pageCache.Get(cacheKey).(*feedResponse); ok && cached != nil {
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	posts, err := s.feeds.Latest(r.Context(), pageSize, cursor, filters)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	resp := newFeedResponse(posts, normalizedPageSize(pageSize))
	if s.pageCache != nil {
		s.pageCache.Set(cacheKey, resp, latestFeedTTL)
	}
	json.NewEncoder(w).Encode(resp)
}

// normalizedPageSize applies the bounds the feed service applies, so
// that has_more is computed against the page size actually used.
func normalizedPageSize(pageSize int) int {
	if pageSize <= 0 {
		return crud.DefaultPageSize
	}
	if pageSize > crud.MaxPageSize {
		return crud.MaxPageSize
	}
	return pageSize
}
