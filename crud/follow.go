package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// followTxAttempts bounds how often a conflicting follow/unfollow
// transaction is retried before it is surfaced as errs.FollowFailed.
const followTxAttempts = 3

// FollowService manages Follows and the denormalized follower/following
// counters on the user records. It implements the domain.FollowService
// interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow runs validations needed for creating new Follow database records.
// The self-follow check happens here, before any database access.
func (fv *followValidator) Follow(ctx context.Context, followerID, followedID int) (*domain.Follow, error) {
	follow := &domain.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}
	err := runFollowValFns(follow,
		fv.idsValid,
		fv.followedIsNotFollower)
	if err != nil {
		return nil, err
	}
	if err := fv.followGorm.Follow(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow runs validations needed for deleting Follow database records.
func (fv *followValidator) Unfollow(ctx context.Context, followerID, followedID int) error {
	follow := &domain.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}
	err := runFollowValFns(follow,
		fv.idsValid,
		fv.followedIsNotFollower)
	if err != nil {
		return err
	}
	return fv.followGorm.Unfollow(ctx, follow)
}

// runFollowValFns runs any number of functions of type followValFn on the
// passed in Follow object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow
// object and returns an error.
type followValFn func(follow *domain.Follow) error

// idsValid makes sure both user IDs are greater than 0.
func (fv *followValidator) idsValid(follow *domain.Follow) error {
	if follow.FollowerID <= 0 || follow.FollowedID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is invalid.")
	}
	return nil
}

// followedIsNotFollower makes sure a user is not following themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.SelfFollow
	}
	return nil
}

// Follow creates the follow edge and increments both denormalized counters
// in one transaction, so that either all three writes commit or none do.
func (fg *followGorm) Follow(ctx context.Context, follow *domain.Follow) error {
	return fg.retry(func() error {
		return fg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing domain.Follow
			err := tx.Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
				First(&existing).Error
			if err == nil {
				return errs.AlreadyFollowing
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := fg.usersExist(tx, follow.FollowerID, follow.FollowedID); err != nil {
				return err
			}
			if err := tx.Create(follow).Error; err != nil {
				return err
			}
			err = tx.Model(&domain.User{}).Where("id = ?", follow.FollowerID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error
			if err != nil {
				return err
			}
			return tx.Model(&domain.User{}).Where("id = ?", follow.FollowedID).
				UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error
		})
	})
}

// Unfollow deletes the follow edge and decrements both denormalized counters
// in one transaction. The decrements are clamped at 0, so an externally
// corrupted counter never goes negative.
func (fg *followGorm) Unfollow(ctx context.Context, follow *domain.Follow) error {
	return fg.retry(func() error {
		return fg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing domain.Follow
			err := tx.Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
				First(&existing).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NotFollowing
				}
				return err
			}
			if err := tx.Delete(&domain.Follow{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			err = tx.Model(&domain.User{}).Where("id = ? AND following_count > 0", follow.FollowerID).
				UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error
			if err != nil {
				return err
			}
			return tx.Model(&domain.User{}).Where("id = ? AND follower_count > 0", follow.FollowedID).
				UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error
		})
	})
}

// usersExist makes sure both ends of the edge are existing users.
func (fg *followGorm) usersExist(tx *gorm.DB, followerID, followedID int) error {
	for _, id := range []int{followerID, followedID} {
		var user domain.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.UserNotFound
			}
			return err
		}
	}
	return nil
}

// IsFollowing checks whether the follow edge exists. It has no side effects.
func (fg *followGorm) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var follow domain.Follow
	err := fg.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Following returns the IDs of all users the given user follows.
func (fg *followGorm) Following(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := fg.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowerCount reads the denormalized follower counter off the user record.
func (fg *followGorm) FollowerCount(ctx context.Context, userID int) (int, error) {
	user, err := fg.userByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.FollowerCount, nil
}

// FollowingCount reads the denormalized following counter off the user record.
func (fg *followGorm) FollowingCount(ctx context.Context, userID int) (int, error) {
	user, err := fg.userByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.FollowingCount, nil
}

func (fg *followGorm) userByID(ctx context.Context, userID int) (*domain.User, error) {
	var user domain.User
	err := fg.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// retry re-runs a transaction that failed with a serialization conflict,
// up to followTxAttempts times. Domain errors pass through untouched.
func (fg *followGorm) retry(op func() error) error {
	var err error
	for attempt := 0; attempt < followTxAttempts; attempt++ {
		err = op()
		if err == nil || !retryableTxErr(err) {
			return err
		}
	}
	return errs.FollowFailed
}

// retryableTxErr reports whether an error is a transient transaction
// conflict worth retrying. Application errors never are.
func retryableTxErr(err error) bool {
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
