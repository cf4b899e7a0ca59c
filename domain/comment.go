package domain

import (
	"context"
	"time"
)

// Comment is an append-only remark below a post. Comments are never
// edited or deleted in place; their order is insertion order.
type Comment struct {
	ID       int    `json:"id"`
	PostID   int    `json:"post_id" gorm:"notNull;index"`
	AuthorID int    `json:"author_id" gorm:"notNull"`
	Author   User   `json:"author"`
	Content  string `json:"content" gorm:"notNull;type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	Create(ctx context.Context, comment *Comment) error
	// ByPost returns the oldest comments of a post in insertion order,
	// up to limit. A limit of 0 returns all of them.
	ByPost(ctx context.Context, postID, limit int) ([]*Comment, error)
	CountByPost(ctx context.Context, postID int) (int, error)
}
