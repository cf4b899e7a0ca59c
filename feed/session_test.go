package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chatter/domain"
	"chatter/errs"
)

// pagedFetcher serves fixed pages in order, one per call.
func pagedFetcher(pages ...[]*domain.Post) Fetcher {
	call := 0
	return func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		if call >= len(pages) {
			return nil, nil
		}
		page := pages[call]
		call++
		return page, nil
	}
}

func posts(ids ...int) []*domain.Post {
	out := make([]*domain.Post, len(ids))
	for i, id := range ids {
		out[i] = &domain.Post{ID: id}
	}
	return out
}

func ids(posts []*domain.Post) []int {
	out := make([]int, len(posts))
	for i, post := range posts {
		out[i] = post.ID
	}
	return out
}

func sameIDs(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSessionDeduplicatesOverlappingPages(t *testing.T) {
	ctx := context.Background()
	s := NewSession(pagedFetcher(
		posts(1, 2, 3),
		posts(3, 4, 5),
	), 3, domain.FeedFilters{})

	added, err := s.LoadMore(ctx)
	if err != nil {
		t.Fatalf("load 1: %v", err)
	}
	if added != 3 {
		t.Errorf("load 1: got %d added, want 3", added)
	}

	added, err = s.LoadMore(ctx)
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	// Post 3 appeared on both pages, only 4 and 5 are new.
	if added != 2 {
		t.Errorf("load 2: got %d added, want 2", added)
	}
	if got := ids(s.Posts()); !sameIDs(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("got posts %v, want [1 2 3 4 5] in first-seen order", got)
	}
}

func TestSessionAdvancesCursorPastDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewSession(pagedFetcher(
		posts(1, 2, 3),
		posts(2, 3),
	), 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load 1: %v", err)
	}
	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	// The cursor follows the raw batch, duplicate or not, so pagination
	// never gets stuck re-requesting the same page.
	if s.Cursor() != 3 {
		t.Errorf("got cursor %d, want 3", s.Cursor())
	}
}

func TestSessionStopsAfterShortPage(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		calls++
		return posts(1, 2), nil // short of pageSize 3
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.HasMore() {
		t.Error("expected no more pages after a short page")
	}

	// Further calls must not hit the fetcher again.
	added, err := s.LoadMore(ctx)
	if err != nil {
		t.Fatalf("load after exhausted: %v", err)
	}
	if added != 0 {
		t.Errorf("got %d added after exhausted, want 0", added)
	}
	if calls != 1 {
		t.Errorf("got %d fetch calls, want 1", calls)
	}
}

func TestSessionFetchError(t *testing.T) {
	ctx := context.Background()
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		return nil, errors.New("connection reset")
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	_, err := s.LoadMore(ctx)
	if !errors.Is(err, errs.FetchFailed) {
		t.Fatalf("got %v, want FetchFailed", err)
	}
	if s.HasMore() {
		t.Error("expected pagination to stop after a failed fetch")
	}
}

func TestSessionRefreshAfterError(t *testing.T) {
	ctx := context.Background()
	failed := false
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		if !failed {
			failed = true
			return nil, errors.New("connection reset")
		}
		return posts(1, 2), nil
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); !errors.Is(err, errs.FetchFailed) {
		t.Fatalf("got %v, want FetchFailed", err)
	}

	added, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if added != 2 {
		t.Errorf("got %d added after refresh, want 2", added)
	}
	if got := ids(s.Posts()); !sameIDs(got, []int{1, 2}) {
		t.Errorf("got posts %v, want [1 2]", got)
	}
}

func TestSessionRefreshDropsInFlightPage(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		if cursor == 3 {
			close(entered)
			<-release
			return posts(31, 32, 33), nil
		}
		return posts(1, 2, 3), nil
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load 1: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.LoadMore(ctx); err != nil {
			t.Errorf("load 2: %v", err)
		}
	}()
	<-entered

	// The second page is still in flight. Refreshing now must discard
	// it once it lands, not merge it into the reset state.
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	close(release)
	<-done

	if got := ids(s.Posts()); !sameIDs(got, []int{1, 2, 3}) {
		t.Errorf("got posts %v, want only page one after refresh", got)
	}
	if s.Cursor() != 3 {
		t.Errorf("got cursor %d, want 3", s.Cursor())
	}
}

func TestSessionSetFiltersResets(t *testing.T) {
	ctx := context.Background()
	var gotFilters domain.FeedFilters
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		gotFilters = filters
		if filters.SortBy == domain.SortPopular {
			return posts(7, 8, 9), nil
		}
		return posts(1, 2, 3), nil
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Cursor() != 3 {
		t.Fatalf("got cursor %d, want 3", s.Cursor())
	}

	s.SetFilters(domain.FeedFilters{SortBy: domain.SortPopular})

	// The old accumulation and cursor are gone before the next fetch.
	if len(s.Posts()) != 0 {
		t.Errorf("got %d posts after filter change, want 0", len(s.Posts()))
	}
	if s.Cursor() != 0 {
		t.Errorf("got cursor %d after filter change, want 0", s.Cursor())
	}

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load after filter change: %v", err)
	}
	if gotFilters.SortBy != domain.SortPopular {
		t.Errorf("fetcher saw filters %+v, want the new sort order", gotFilters)
	}
	if got := ids(s.Posts()); !sameIDs(got, []int{7, 8, 9}) {
		t.Errorf("got posts %v, want the popular page", got)
	}
}

func TestSessionSetSameFiltersKeepsState(t *testing.T) {
	ctx := context.Background()
	s := NewSession(pagedFetcher(posts(1, 2, 3)), 3, domain.FeedFilters{})

	if _, err := s.LoadMore(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.SetFilters(domain.FeedFilters{})
	if got := ids(s.Posts()); !sameIDs(got, []int{1, 2, 3}) {
		t.Errorf("got posts %v, want them kept", got)
	}
	if s.Cursor() != 3 {
		t.Errorf("got cursor %d, want 3", s.Cursor())
	}
}

func TestSessionCoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(entered)
			<-release
			return posts(1, 2, 3), nil
		}
		return posts(4, 5), nil
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.LoadMore(ctx); err != nil {
			t.Errorf("load: %v", err)
		}
	}()
	<-entered

	// Any number of calls while the first fetch runs coalesce into one
	// follow-up fetch.
	for i := 0; i < 5; i++ {
		if _, err := s.LoadMore(ctx); err != nil {
			t.Fatalf("coalesced load %d: %v", i, err)
		}
	}
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("got %d fetch calls, want 2", calls)
	}
	if got := ids(s.Posts()); !sameIDs(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("got posts %v, want both pages merged", got)
	}
}

func TestSessionCloseDropsInFlightResults(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	fetch := func(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
		close(entered)
		<-release
		return posts(1, 2, 3), nil
	}
	s := NewSession(fetch, 3, domain.FeedFilters{})

	done := make(chan int)
	go func() {
		added, _ := s.LoadMore(ctx)
		done <- added
	}()
	<-entered

	s.Close()
	close(release)

	if added := <-done; added != 0 {
		t.Errorf("got %d added after close, want 0", added)
	}
	if len(s.Posts()) != 0 {
		t.Errorf("got %d posts after close, want 0", len(s.Posts()))
	}

	// A closed session ignores further calls entirely.
	if added, err := s.LoadMore(ctx); err != nil || added != 0 {
		t.Errorf("load after close: got %d, %v", added, err)
	}
}
