package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// BookmarkService manages Bookmarks. It implements the
// domain.BookmarkService interface. Every mutation re-checks the persisted
// state instead of trusting what the caller last saw, so rapid repeated
// toggles never produce duplicate rows.
type BookmarkService struct {
	bookmarkValidator
}

// bookmarkValidator runs validations on incoming Bookmark data.
// On success, it passes the data on to bookmarkGorm.
// Otherwise, it returns the error of the validation that has failed.
type bookmarkValidator struct {
	bookmarkGorm
}

// bookmarkGorm runs CRUD operations on the database using incoming Bookmark
// data. It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type bookmarkGorm struct {
	db *gorm.DB
}

// NewBookmarkService returns an instance of BookmarkService.
func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{
		bookmarkValidator{
			bookmarkGorm{
				db: db,
			},
		},
	}
}

// Ensure the BookmarkService struct properly implements the domain.BookmarkService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.BookmarkService = &BookmarkService{}

// Add runs validations needed for creating new Bookmark database records.
func (bv *bookmarkValidator) Add(ctx context.Context, userID, postID int) (bool, error) {
	bookmark := &domain.Bookmark{UserID: userID, PostID: postID}
	err := runBookmarkValFns(bookmark,
		bv.userIdValid,
		bv.bookmarkedPostExists(ctx))
	if err != nil {
		return false, err
	}
	return bv.bookmarkGorm.Add(ctx, bookmark)
}

// runBookmarkValFns runs any number of functions of type bookmarkValFn on
// the passed in Bookmark object. If none of them returns an error, it
// returns nil. Otherwise, it returns the respective error.
func runBookmarkValFns(bookmark *domain.Bookmark, fns ...bookmarkValFn) error {
	for _, fn := range fns {
		if err := fn(bookmark); err != nil {
			return err
		}
	}
	return nil
}

// A bookmarkValFn is any function that takes in a pointer to a
// domain.Bookmark object and returns an error.
type bookmarkValFn func(bookmark *domain.Bookmark) error

// userIdValid makes sure the bookmarking user's ID is greater than 0.
func (bv *bookmarkValidator) userIdValid(bookmark *domain.Bookmark) error {
	if bookmark.UserID <= 0 {
		return errs.UserIDRequired
	}
	return nil
}

// bookmarkedPostExists makes sure the post to be bookmarked exists.
func (bv *bookmarkValidator) bookmarkedPostExists(ctx context.Context) bookmarkValFn {
	return func(bookmark *domain.Bookmark) error {
		var post domain.Post
		err := bv.db.WithContext(ctx).First(&post, "id = ?", bookmark.PostID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}
		return nil
	}
}

// Add inserts the bookmark row unless it is already there. It reports
// whether a row was actually inserted. A duplicate insert lost to a
// concurrent call counts as not inserted, backed by the unique index
// on (user_id, post_id).
func (bg *bookmarkGorm) Add(ctx context.Context, bookmark *domain.Bookmark) (bool, error) {
	var existing domain.Bookmark
	err := bg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", bookmark.UserID, bookmark.PostID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	err = bg.db.WithContext(ctx).Create(bookmark).Error
	if err != nil {
		if isDuplicateErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove deletes the bookmark row. It reports whether a row was deleted.
func (bg *bookmarkGorm) Remove(ctx context.Context, userID, postID int) (bool, error) {
	result := bg.db.WithContext(ctx).
		Delete(&domain.Bookmark{}, "user_id = ? AND post_id = ?", userID, postID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsBookmarked checks whether the user has bookmarked the post.
func (bg *bookmarkGorm) IsBookmarked(ctx context.Context, userID, postID int) (bool, error) {
	var bookmark domain.Bookmark
	err := bg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&bookmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Toggle flips the bookmark state based on what is currently persisted
// and returns the state after the call.
func (bg *bookmarkGorm) Toggle(ctx context.Context, userID, postID int) (bool, error) {
	bookmarked, err := bg.IsBookmarked(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if bookmarked {
		if _, err := bg.Remove(ctx, userID, postID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := bg.Add(ctx, &domain.Bookmark{UserID: userID, PostID: postID}); err != nil {
		return false, err
	}
	return true, nil
}

// ByUser returns the user's bookmarks newest first, resuming after the
// bookmark with the cursor ID. The second return value is the cursor for
// the next page, 0 when this was the last one.
func (bg *bookmarkGorm) ByUser(ctx context.Context, userID, cursor, limit int) ([]*domain.Bookmark, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q := bg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Preload("Post").
		Preload("Post.Author")
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var bookmarks []*domain.Bookmark
	if err := q.Find(&bookmarks).Error; err != nil {
		return nil, 0, err
	}
	next := 0
	if len(bookmarks) == limit {
		next = bookmarks[len(bookmarks)-1].ID
	}
	return bookmarks, next, nil
}

// isDuplicateErr reports whether an error is a unique constraint violation.
// Postgres and sqlite word these differently.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
