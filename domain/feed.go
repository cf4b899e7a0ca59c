package domain

import "context"

// SortOrder selects how a feed page is ordered.
type SortOrder string

const (
	// SortNewest orders by creation time, newest first. This is the
	// order the store paginates in.
	SortNewest SortOrder = "newest"
	// SortPopular re-orders each fetched page by like count. The
	// re-sort is page-local; pagination still walks creation time.
	SortPopular SortOrder = "popular"
)

// DateRange restricts a feed to posts created since a point in time
// relative to the request.
type DateRange string

const (
	DateRangeAll   DateRange = "all"
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "thisWeek"
	DateRangeMonth DateRange = "thisMonth"
)

// FeedFilters carries the user-selected sort and date restriction of a
// feed session. Changing either starts a new pagination session.
type FeedFilters struct {
	SortBy    SortOrder `json:"sort_by"`
	DateRange DateRange `json:"date_range"`
}

// FeedService composes the three feed variants as paginated sequences of
// published posts. The cursor is the ID of the last post of the previous
// page, 0 for the first page.
type FeedService interface {
	// Personalized returns posts whose tags intersect the user's interests.
	Personalized(ctx context.Context, userID, pageSize, cursor int, filters FeedFilters) ([]*Post, error)
	// Following returns posts written by users the given user follows.
	Following(ctx context.Context, userID, pageSize, cursor int, filters FeedFilters) ([]*Post, error)
	// Latest returns all published posts.
	Latest(ctx context.Context, pageSize, cursor int, filters FeedFilters) ([]*Post, error)
}
