package crud

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// Page size bounds applied to every feed request. A non-positive
// page size falls back to the default, oversized requests are clamped
// to the maximum.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// FeedService composes the three feed variants out of published posts.
// It implements the domain.FeedService interface. Pagination is keyset
// based: the cursor is the ID of the last post of the previous page and
// the page resumes strictly after that post in (created_at, id) order.
type FeedService struct {
	feedValidator
}

// feedValidator normalizes incoming page parameters and filters.
// On success, it passes the request on to feedGorm.
type feedValidator struct {
	feedGorm
}

// feedGorm runs the feed queries against the database. It assumes
// parameters have been normalized.
type feedGorm struct {
	db      *gorm.DB
	follows domain.FollowService
}

// NewFeedService returns an instance of FeedService. It consults the
// passed in FollowService for the following feed.
func NewFeedService(db *gorm.DB, follows domain.FollowService) *FeedService {
	return &FeedService{
		feedValidator{
			feedGorm{
				db:      db,
				follows: follows,
			},
		},
	}
}

// Ensure the FeedService struct properly implements the domain.FeedService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FeedService = &FeedService{}

// Personalized returns posts whose tags intersect the user's interests.
func (fv *feedValidator) Personalized(ctx context.Context, userID, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	pageSize, filters, err := fv.normalize(pageSize, filters)
	if err != nil {
		return nil, err
	}
	return fv.feedGorm.Personalized(ctx, userID, pageSize, cursor, filters)
}

// Following returns posts written by users the given user follows.
func (fv *feedValidator) Following(ctx context.Context, userID, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	pageSize, filters, err := fv.normalize(pageSize, filters)
	if err != nil {
		return nil, err
	}
	return fv.feedGorm.Following(ctx, userID, pageSize, cursor, filters)
}

// Latest returns all published posts.
func (fv *feedValidator) Latest(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	pageSize, filters, err := fv.normalize(pageSize, filters)
	if err != nil {
		return nil, err
	}
	return fv.feedGorm.Latest(ctx, pageSize, cursor, filters)
}

// normalize applies page size bounds and filter defaults, and rejects
// filter values that name no known sort or date range.
func (fv *feedValidator) normalize(pageSize int, filters domain.FeedFilters) (int, domain.FeedFilters, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if filters.SortBy == "" {
		filters.SortBy = domain.SortNewest
	}
	if filters.DateRange == "" {
		filters.DateRange = domain.DateRangeAll
	}
	switch filters.SortBy {
	case domain.SortNewest, domain.SortPopular:
	default:
		return 0, filters, errs.Errorf(errs.EINVALID, "Unknown sort order %q.", filters.SortBy)
	}
	switch filters.DateRange {
	case domain.DateRangeAll, domain.DateRangeToday, domain.DateRangeWeek, domain.DateRangeMonth:
	default:
		return 0, filters, errs.Errorf(errs.EINVALID, "Unknown date range %q.", filters.DateRange)
	}
	return pageSize, filters, nil
}

func (fg *feedGorm) Personalized(ctx context.Context, userID, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	interests := fg.db.Table("user_interests").Select("tag").Where("user_id = ?", userID)
	tagged := fg.db.Table("post_tags").Select("post_id").Where("tag IN (?)", interests)
	q := fg.published(ctx, filters).Where("posts.id IN (?)", tagged)
	return fg.fetchPage(ctx, q, pageSize, cursor, filters)
}

func (fg *feedGorm) Following(ctx context.Context, userID, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	authorIDs, err := fg.follows.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return []*domain.Post{}, nil
	}
	q := fg.published(ctx, filters).Where("author_id IN ?", authorIDs)
	return fg.fetchPage(ctx, q, pageSize, cursor, filters)
}

func (fg *feedGorm) Latest(ctx context.Context, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	return fg.fetchPage(ctx, fg.published(ctx, filters), pageSize, cursor, filters)
}

// published starts a query over published posts, restricted by the
// date range filter relative to now.
func (fg *feedGorm) published(ctx context.Context, filters domain.FeedFilters) *gorm.DB {
	q := fg.db.WithContext(ctx).Model(&domain.Post{}).
		Where("status = ?", domain.PostStatusPublished)
	if cutoff, ok := dateCutoff(filters.DateRange, time.Now()); ok {
		q = q.Where("posts.created_at >= ?", cutoff)
	}
	return q
}

// fetchPage resumes after the cursor post, fetches one page in
// (created_at, id) descending order and fills in the aggregate fields.
// The popularity sort is applied after the fetch and is page-local.
func (fg *feedGorm) fetchPage(ctx context.Context, q *gorm.DB, pageSize, cursor int, filters domain.FeedFilters) ([]*domain.Post, error) {
	if cursor > 0 {
		var pivot domain.Post
		err := fg.db.WithContext(ctx).Select("id", "created_at").First(&pivot, "id = ?", cursor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.Errorf(errs.EINVALID, "Unknown feed cursor %d.", cursor)
			}
			return nil, err
		}
		q = q.Where("posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)",
			pivot.CreatedAt, pivot.CreatedAt, pivot.ID)
	}

	var posts []*domain.Post
	err := q.Order("posts.created_at DESC, posts.id DESC").
		Limit(pageSize).
		Preload("Author").
		Preload("Likes").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		post.LikeCount = len(post.Likes)
	}
	if err := fg.fillTags(ctx, posts); err != nil {
		return nil, err
	}
	if err := fg.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}

	if filters.SortBy == domain.SortPopular {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].LikeCount > posts[j].LikeCount
		})
	}
	return posts, nil
}

// fillTags batch-loads the tags of the given posts.
func (fg *feedGorm) fillTags(ctx context.Context, posts []*domain.Post) error {
	return fillTags(ctx, fg.db, posts)
}

// fillCommentCounts batch-loads the comment counts of the given posts.
func (fg *feedGorm) fillCommentCounts(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	postIDs := make([]int, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
	}
	type countRow struct {
		PostID int
		Count  int
	}
	var rows []countRow
	err := fg.db.WithContext(ctx).Model(&domain.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	for _, post := range posts {
		post.CommentCount = counts[post.ID]
	}
	return nil
}

// fillTags batch-loads post_tags rows into the Tags field of the given posts.
func fillTags(ctx context.Context, db *gorm.DB, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	postIDs := make([]int, len(posts))
	byID := make(map[int]*domain.Post, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
		byID[post.ID] = post
		post.Tags = []string{}
	}
	var rows []domain.PostTag
	err := db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("tag ASC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		if post, ok := byID[row.PostID]; ok {
			post.Tags = append(post.Tags, row.Tag)
		}
	}
	return nil
}

// dateCutoff translates a date range filter into the earliest creation
// time still included, relative to now. Today means since midnight,
// thisWeek since Monday, thisMonth since the first of the month.
func dateCutoff(dateRange domain.DateRange, now time.Time) (time.Time, bool) {
	switch dateRange {
	case domain.DateRangeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case domain.DateRangeWeek:
		year, month, day := now.Date()
		midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the week started the previous Monday.
		}
		return midnight.AddDate(0, 0, -(weekday - 1)), true
	case domain.DateRangeMonth:
		year, month, _ := now.Date()
		return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}
