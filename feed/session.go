// Package feed holds the client-session half of feed browsing: the
// accumulation and de-duplication of fetched pages across infinite
// scrolling, and the pull-to-refresh gesture. The server half, composing
// the pages themselves, lives in crud.FeedService.
package feed

import (
	"context"
	"sync"

	"chatter/domain"
	"chatter/errs"
)

// A Fetcher loads one feed page: up to pageSize posts following the post
// with the cursor ID, 0 for the first page. domain.FeedService methods
// bind to this once the feed variant and user are chosen.
type Fetcher func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error)

// Session accumulates the pages of one feed across load-more calls.
// Posts are de-duplicated by ID against everything accumulated so far,
// preserving first-seen insertion order, so overlapping pages returned
// by concurrent writes never show a post twice. A Session is safe for
// concurrent use.
type Session struct {
	mu       sync.Mutex
	fetch    Fetcher
	pageSize int
	filters  domain.FeedFilters

	posts    []*domain.Post
	seen     map[int]bool
	cursor   int
	gen      int
	hasMore  bool
	inFlight bool
	pending  bool
	closed   bool
}

// NewSession returns a Session over the given fetcher. Nothing is fetched
// until the first LoadMore call.
func NewSession(fetch Fetcher, pageSize int, filters domain.FeedFilters) *Session {
	return &Session{
		fetch:    fetch,
		pageSize: pageSize,
		filters:  filters,
		seen:     make(map[int]bool),
		hasMore:  true,
	}
}

// LoadMore fetches the next page and merges it into the accumulated
// posts. It is the handler for the infinite-scroll sentinel: calls while
// a fetch is already in flight coalesce into at most one follow-up
// fetch, and calls after the feed is exhausted or the session closed do
// nothing. It returns how many previously unseen posts were added.
//
// A failed fetch stops pagination (hasMore becomes false) until an
// explicit Refresh, and surfaces as a fetch error.
func (s *Session) LoadMore(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.closed || !s.hasMore {
		s.mu.Unlock()
		return 0, nil
	}
	if s.inFlight {
		// Coalesce: remember that more was asked for, the running
		// fetch will follow up once.
		s.pending = true
		s.mu.Unlock()
		return 0, nil
	}
	s.inFlight = true
	added := 0
	for {
		gen, cursor, filters, pageSize := s.gen, s.cursor, s.filters, s.pageSize
		s.mu.Unlock()

		batch, err := s.fetch(ctx, pageSize, cursor, filters)

		s.mu.Lock()
		if s.closed {
			// The session was abandoned while the fetch was running.
			// Drop the result instead of writing into discarded state.
			s.inFlight = false
			s.mu.Unlock()
			return added, nil
		}
		if s.gen != gen {
			// The session was reset mid-flight, by a refresh or a
			// filter change. This page belongs to the previous state.
			// Drop it and refetch from the top.
			if s.hasMore && !s.pending {
				s.pending = true
			}
		} else if err != nil {
			s.hasMore = false
			s.inFlight = false
			s.pending = false
			s.mu.Unlock()
			return added, errs.FetchFailed
		} else {
			added += s.merge(batch)
			if len(batch) < pageSize {
				s.hasMore = false
			}
		}
		if !s.pending || !s.hasMore {
			s.inFlight = false
			s.pending = false
			s.mu.Unlock()
			return added, nil
		}
		s.pending = false
	}
}

// merge appends the previously unseen posts of a batch and advances the
// cursor to the last post of the batch. Must be called with mu held.
func (s *Session) merge(batch []*domain.Post) int {
	added := 0
	for _, post := range batch {
		if s.seen[post.ID] {
			continue
		}
		s.seen[post.ID] = true
		s.posts = append(s.posts, post)
		added++
	}
	if len(batch) > 0 {
		s.cursor = batch[len(batch)-1].ID
	}
	return added
}

// SetFilters starts a fresh pagination session with the new filters.
// The accumulated posts and the cursor are discarded before the next
// fetch, so stale pages never mix with new filter results. Setting the
// filters the session already has is a no-op.
func (s *Session) SetFilters(filters domain.FeedFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.filters == filters {
		return
	}
	s.filters = filters
	s.reset()
}

// Refresh discards all accumulated state and fetches page one again.
// This is what a completed pull-to-refresh gesture triggers.
func (s *Session) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, nil
	}
	s.reset()
	s.mu.Unlock()
	return s.LoadMore(ctx)
}

// reset clears the accumulated state and invalidates any fetch still in
// flight, so a page started before the reset can never merge into the
// fresh state. Must be called with mu held.
func (s *Session) reset() {
	s.gen++
	s.posts = nil
	s.seen = make(map[int]bool)
	s.cursor = 0
	s.hasMore = true
	s.pending = false
}

// Posts returns a copy of the accumulated posts in first-seen order.
func (s *Session) Posts() []*domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// HasMore reports whether another LoadMore call could add posts.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Cursor returns the ID of the last post the session has paged past,
// 0 before the first fetch.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Close abandons the session, e.g. when the user navigates away.
// In-flight fetches complete but their results are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.posts = nil
	s.seen = nil
	s.hasMore = false
}
