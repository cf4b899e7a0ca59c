package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// CommentService manages Comments. Comments are append-only, so there is
// no update or delete. It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment
// data. It assumes that data has been validated. On success, it returns
// nil. Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.authorIdValid,
		cv.contentRequired,
		cv.commentedPostExists(ctx))
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the
// passed in Comment object. If none of them returns an error, it returns
// nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment
// object and returns an error.
type commentValFn func(comment *domain.Comment) error

// authorIdValid makes sure the comment carries the ID of its author.
func (cv *commentValidator) authorIdValid(comment *domain.Comment) error {
	if comment.AuthorID <= 0 {
		return errs.UserIDRequired
	}
	return nil
}

// contentRequired makes sure the content is not the empty string.
func (cv *commentValidator) contentRequired(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errs.ContentRequired
	}
	return nil
}

// commentedPostExists makes sure the post to be commented on exists.
func (cv *commentValidator) commentedPostExists(ctx context.Context) commentValFn {
	return func(comment *domain.Comment) error {
		var post domain.Post
		err := cv.db.WithContext(ctx).First(&post, "id = ?", comment.PostID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}
		return nil
	}
}

// Create writes the comment and loads its author for the response.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	if err := cg.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return cg.db.WithContext(ctx).First(&comment.Author, "id = ?", comment.AuthorID).Error
}

// ByPost returns the oldest comments of a post in insertion order, up to
// limit. A limit of 0 returns all of them.
func (cg *commentGorm) ByPost(ctx context.Context, postID, limit int) ([]*domain.Comment, error) {
	q := cg.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Preload("Author")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var comments []*domain.Comment
	if err := q.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost returns the number of comments below a post.
func (cg *commentGorm) CountByPost(ctx context.Context, postID int) (int, error) {
	var count int64
	err := cg.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return int(count), err
}
