package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// LikeService manages Likes. It implements the domain.LikeService interface.
// Like and Unlike have set semantics: repeating either call is a no-op.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Like runs validations needed for adding a user to the like set of a post.
func (lv *likeValidator) Like(ctx context.Context, userID, postID int) error {
	like := &domain.Like{UserID: userID, PostID: postID}
	err := runLikeValFns(like,
		lv.userIdValid,
		lv.likedPostExists(ctx))
	if err != nil {
		return err
	}
	return lv.likeGorm.Like(ctx, like)
}

// Unlike runs validations needed for removing a user from the like set of a post.
func (lv *likeValidator) Unlike(ctx context.Context, userID, postID int) error {
	like := &domain.Like{UserID: userID, PostID: postID}
	if err := runLikeValFns(like, lv.userIdValid); err != nil {
		return err
	}
	return lv.likeGorm.Unlike(ctx, like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed
// in Like object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like
// object and returns an error.
type likeValFn func(like *domain.Like) error

// userIdValid makes sure the liking user's ID is greater than 0.
func (lv *likeValidator) userIdValid(like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.UserIDRequired
	}
	return nil
}

// likedPostExists makes sure the post to be liked exists and is published.
func (lv *likeValidator) likedPostExists(ctx context.Context) likeValFn {
	return func(like *domain.Like) error {
		var post domain.Post
		err := lv.db.WithContext(ctx).First(&post, "id = ?", like.PostID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}
		return nil
	}
}

// Like inserts the like row unless it is already there. A duplicate insert
// lost to a concurrent call is swallowed, the like set already contains the
// user either way.
func (lg *likeGorm) Like(ctx context.Context, like *domain.Like) error {
	var existing domain.Like
	err := lg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", like.UserID, like.PostID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	err = lg.db.WithContext(ctx).Create(like).Error
	if err != nil && isDuplicateErr(err) {
		return nil
	}
	return err
}

// Unlike deletes the like row. Deleting an absent row is a no-op.
func (lg *likeGorm) Unlike(ctx context.Context, like *domain.Like) error {
	return lg.db.WithContext(ctx).
		Delete(&domain.Like{}, "user_id = ? AND post_id = ?", like.UserID, like.PostID).Error
}

// IsLiked checks whether the user is in the like set of the post.
func (lg *likeGorm) IsLiked(ctx context.Context, userID, postID int) (bool, error) {
	var like domain.Like
	err := lg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Count returns the size of the like set of the post.
func (lg *likeGorm) Count(ctx context.Context, postID int) (int, error) {
	var count int64
	err := lg.db.WithContext(ctx).Model(&domain.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return int(count), err
}
