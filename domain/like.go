package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Post.
// The set of likes of a post is the set of Like rows carrying its ID;
// at most one row exists per (user, post) pair.
type Like struct {
	ID     int `json:"id"`
	UserID int `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_like_user_post"`
	PostID int `json:"post_id" gorm:"notNull;uniqueIndex:idx_like_user_post"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like
// model. Like and Unlike have set semantics: liking an already liked post
// or unliking a post that was never liked is a no-op, not an error.
type LikeService interface {
	Like(ctx context.Context, userID, postID int) error
	Unlike(ctx context.Context, userID, postID int) error
	IsLiked(ctx context.Context, userID, postID int) (bool, error)
	Count(ctx context.Context, postID int) (int, error)
}
