package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	// PostStatusDraft marks a post that is only visible to its author.
	PostStatusDraft = "draft"
	// PostStatusPublished marks a post that shows up in feeds. A published
	// post can never go back to draft.
	PostStatusPublished = "published"
)

// Post represents a unit of content authored by a user. Tags live in the
// post_tags-table and are filled in by the service on reads, like the
// LikeCount and CommentCount aggregates.
type Post struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id" gorm:"notNull;index"`
	Author     User   `json:"author"`
	Title      string `json:"title" gorm:"notNull"`
	Content    string `json:"content" gorm:"type:text"`
	Status     string `json:"status" gorm:"notNull;default:draft;index"`
	CoverImage string `json:"cover_image"`
	Views      int    `json:"views" gorm:"notNull;default:0"`

	Tags     []string  `json:"tags" gorm:"-"`
	Likes    []Like    `json:"likes" gorm:"foreignKey:PostID"`
	Comments []Comment `json:"comments" gorm:"foreignKey:PostID"`

	LikeCount    int `json:"like_count" gorm:"-"`
	CommentCount int `json:"comment_count" gorm:"-"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}

// PostTag relates a post to one of its tags. At most one row per
// (post, tag) pair.
type PostTag struct {
	PostID int    `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	Tag    string `json:"tag" gorm:"primaryKey;size:64;index"`
}

// Published reports whether the post shows up in feeds.
func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	ByID(ctx context.Context, id int) (*Post, error)
	ByAuthor(ctx context.Context, authorID int, includeDrafts bool) ([]*Post, error)
	Search(ctx context.Context, query string, limit int) ([]*Post, error)
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Publish(ctx context.Context, id, authorID int) (*Post, error)
	Delete(ctx context.Context, post *Post) error
	RecordView(ctx context.Context, id int) error
}
