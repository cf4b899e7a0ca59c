package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/domain"
	"chatter/errs"
)

func (s *Server) registerBookmarkRoutes(r *mux.Router) {
	r.HandleFunc("/post/{id:[0-9]+}/bookmark", s.requireAuth(s.handleToggleBookmark)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}/bookmark", s.requireAuth(s.handleDeleteBookmark)).Methods("DELETE")
	r.HandleFunc("/bookmarks", s.requireAuth(s.handleListBookmarks)).Methods("GET")
}

// handleToggleBookmark handles the route "POST /post/:id/bookmark".
// It flips the persisted bookmark state and reports the state after the
// call, so a double-tap converges instead of erroring.
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	bookmarked, err := s.bs.Toggle(r.Context(), user.ID, postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"bookmarked": bookmarked})
}

// handleDeleteBookmark handles the route "DELETE /post/:id/bookmark".
// Removing an absent bookmark is not an error.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	if _, err := s.bs.Remove(r.Context(), user.ID, postID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"bookmarked": false})
}

// handleListBookmarks handles the route "GET /bookmarks".
// It returns the signed-in user's bookmarks newest first, paginated the
// same way as the feeds.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cursor, _ := strconv.Atoi(q.Get("cursor"))
	limit, _ := strconv.Atoi(q.Get("page_size"))

	user := s.getUserFromContext(r.Context())
	bookmarks, next, err := s.bs.ByUser(r.Context(), user.ID, cursor, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if bookmarks == nil {
		bookmarks = []*domain.Bookmark{}
	}
	json.NewEncoder(w).Encode(struct {
		Bookmarks  []*domain.Bookmark `json:"bookmarks"`
		NextCursor int                `json:"next_cursor"`
		HasMore    bool               `json:"has_more"`
	}{
		Bookmarks:  bookmarks,
		NextCursor: next,
		HasMore:    next != 0,
	})
}
