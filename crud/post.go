package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// PostService manages Posts and their tags.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorIdValid,
		pv.titleRequired,
		pv.contentRequired,
		pv.statusDefault,
		pv.statusValid,
		pv.tagsNormalize)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Update runs validations needed for updating a Post record in the database.
// A published post can not go back to draft.
func (pv *postValidator) Update(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.titleRequired,
		pv.contentRequired,
		pv.statusDefault,
		pv.statusValid,
		pv.noUnpublish(ctx),
		pv.tagsNormalize)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(ctx, post)
}

// Delete runs validations needed for soft-deleting a Post record.
func (pv *postValidator) Delete(ctx context.Context, post *domain.Post) error {
	if err := runPostValFns(post, pv.idValid); err != nil {
		return err
	}
	return pv.postGorm.Delete(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed
// in Post object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post
// object and returns an error.
type postValFn func(post *domain.Post) error

// idValid makes sure that the ID of a Post to be changed is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post ID is invalid.")
	}
	return nil
}

// authorIdValid makes sure the post carries the ID of its author.
func (pv *postValidator) authorIdValid(post *domain.Post) error {
	if post.AuthorID <= 0 {
		return errs.UserIDRequired
	}
	return nil
}

// titleRequired makes sure the title is not the empty string.
func (pv *postValidator) titleRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return errs.TitleRequired
	}
	return nil
}

// contentRequired makes sure the content is not the empty string.
func (pv *postValidator) contentRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Content) == "" {
		return errs.ContentRequired
	}
	return nil
}

// statusDefault makes a post without a status a draft.
func (pv *postValidator) statusDefault(post *domain.Post) error {
	if post.Status == "" {
		post.Status = domain.PostStatusDraft
	}
	return nil
}

// statusValid makes sure the status is either draft or published.
func (pv *postValidator) statusValid(post *domain.Post) error {
	if post.Status != domain.PostStatusDraft && post.Status != domain.PostStatusPublished {
		return errs.StatusInvalid
	}
	return nil
}

// noUnpublish makes sure an update never takes a published post back
// to draft.
func (pv *postValidator) noUnpublish(ctx context.Context) postValFn {
	return func(post *domain.Post) error {
		var existing domain.Post
		err := pv.db.WithContext(ctx).Select("id", "status").First(&existing, "id = ?", post.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}
		if existing.Status == domain.PostStatusPublished && post.Status == domain.PostStatusDraft {
			return errs.Errorf(errs.EINVALID, "A published post cannot go back to draft.")
		}
		return nil
	}
}

// tagsNormalize lowercases the tags and drops empties and duplicates.
func (pv *postValidator) tagsNormalize(post *domain.Post) error {
	post.Tags = domain.NormalizeTags(post.Tags)
	return nil
}

// ByID returns a single post with its author, likes, comments and tags.
func (pg *postGorm) ByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	post.LikeCount = len(post.Likes)
	post.CommentCount = len(post.Comments)
	if err := fillTags(ctx, pg.db, []*domain.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ByAuthor returns the posts of one author, newest first. Drafts are
// only included when asked for, for the author's own view.
func (pg *postGorm) ByAuthor(ctx context.Context, authorID int, includeDrafts bool) ([]*domain.Post, error) {
	q := pg.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Preload("Likes")
	if !includeDrafts {
		q = q.Where("status = ?", domain.PostStatusPublished)
	}
	var posts []*domain.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, post := range posts {
		post.LikeCount = len(post.Likes)
	}
	if err := fillTags(ctx, pg.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Search returns published posts whose title contains the query,
// case-insensitive, newest first.
func (pg *postGorm) Search(ctx context.Context, query string, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []*domain.Post{}, nil
	}
	var posts []*domain.Post
	err := pg.db.WithContext(ctx).
		Where("status = ?", domain.PostStatusPublished).
		Where("LOWER(title) LIKE ?", "%"+query+"%").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Author").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := fillTags(ctx, pg.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Create writes the post and its tag rows in one transaction.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return replaceTags(tx, post)
	})
}

// Update saves the post and replaces its tag rows in one transaction.
func (pg *postGorm) Update(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.PostTag{}, "post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return replaceTags(tx, post)
	})
}

// Publish transitions a draft to published. Publishing an already
// published post is a no-op; only the author may publish.
func (pg *postGorm) Publish(ctx context.Context, id, authorID int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}
		if post.AuthorID != authorID {
			return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to publish this post.")
		}
		if post.Published() {
			return nil
		}
		post.Status = domain.PostStatusPublished
		return tx.Model(&post).UpdateColumn("status", domain.PostStatusPublished).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete soft-deletes the post. Its tag rows stay behind, invisible
// through the post.
func (pg *postGorm) Delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Delete(&domain.Post{}, "id = ?", post.ID).Error
}

// RecordView bumps the view counter without touching updated_at.
func (pg *postGorm) RecordView(ctx context.Context, id int) error {
	return pg.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// replaceTags inserts the tag rows of a post.
func replaceTags(tx *gorm.DB, post *domain.Post) error {
	for _, tag := range post.Tags {
		if err := tx.Create(&domain.PostTag{PostID: post.ID, Tag: tag}).Error; err != nil {
			return err
		}
	}
	return nil
}
