package http

import (
	"net/http/httptest"
	"testing"

	"chatter/domain"
)

func TestFeedPage(t *testing.T) {
	r := httptest.NewRequest("GET", "/feed/latest?page_size=20&cursor=42&sort_by=popular&date_range=thisWeek", nil)
	pageSize, cursor, filters := feedPage(r)
	if pageSize != 20 {
		t.Errorf("got page size %d, want 20", pageSize)
	}
	if cursor != 42 {
		t.Errorf("got cursor %d, want 42", cursor)
	}
	if filters.SortBy != domain.SortPopular {
		t.Errorf("got sort %q, want popular", filters.SortBy)
	}
	if filters.DateRange != domain.DateRangeWeek {
		t.Errorf("got date range %q, want thisWeek", filters.DateRange)
	}
}

func TestFeedPageDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/feed/latest", nil)
	pageSize, cursor, filters := feedPage(r)
	if pageSize != 0 || cursor != 0 {
		t.Errorf("got page size %d and cursor %d, want zero values", pageSize, cursor)
	}
	if filters.SortBy != "" || filters.DateRange != "" {
		t.Errorf("got filters %+v, want them empty for the service to default", filters)
	}
}

func TestNewFeedResponse(t *testing.T) {
	full := []*domain.Post{{ID: 9}, {ID: 7}, {ID: 5}}
	resp := newFeedResponse(full, 3)
	if !resp.HasMore {
		t.Error("expected a full page to report more")
	}
	if resp.NextCursor != 5 {
		t.Errorf("got next cursor %d, want 5", resp.NextCursor)
	}

	short := newFeedResponse(full[:2], 3)
	if short.HasMore {
		t.Error("expected a short page to be the last one")
	}

	empty := newFeedResponse(nil, 3)
	if empty.Posts == nil {
		t.Error("expected an empty page to encode as [], not null")
	}
	if empty.HasMore || empty.NextCursor != 0 {
		t.Errorf("got has_more=%v next_cursor=%d for an empty page", empty.HasMore, empty.NextCursor)
	}
}

func TestNormalizedPageSize(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 10},
		{-3, 10},
		{7, 7},
		{50, 50},
		{500, 50},
	}
	for _, tt := range tests {
		if got := normalizedPageSize(tt.in); got != tt.want {
			t.Errorf("normalizedPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
