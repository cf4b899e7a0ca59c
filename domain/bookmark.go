package domain

import (
	"context"
	"time"
)

// Bookmark represents a post saved by a user for later. At most one row
// exists per (user, post) pair, enforced by a unique index.
type Bookmark struct {
	ID     int  `json:"id"`
	UserID int  `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_bookmark_user_post"`
	PostID int  `json:"post_id" gorm:"notNull;uniqueIndex:idx_bookmark_user_post"`
	Post   Post `json:"post"`

	CreatedAt time.Time `json:"created_at"`
}

// BookmarkService is a set of methods to manipulate and work with the
// Bookmark model. Add and Remove report whether a row was actually
// inserted or deleted, so a lost race shows up as false instead of a
// duplicate record.
type BookmarkService interface {
	Add(ctx context.Context, userID, postID int) (bool, error)
	Remove(ctx context.Context, userID, postID int) (bool, error)
	IsBookmarked(ctx context.Context, userID, postID int) (bool, error)
	// Toggle re-checks the current persisted state and flips it. It
	// returns the state after the call.
	Toggle(ctx context.Context, userID, postID int) (bool, error)
	// ByUser returns the user's bookmarks newest first, resuming after
	// the bookmark with the cursor ID. The second return value is the
	// cursor for the next page, 0 when there is none.
	ByUser(ctx context.Context, userID, cursor, limit int) ([]*Bookmark, int, error)
}
