package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between
// two users. A Follow is created when one user decides to follow another
// user. The FollowerID is the ID of the user that follows, and the
// FollowedID is the ID of the user that is being followed. At most one
// edge exists per ordered pair, and a user can never follow themselves.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id" gorm:"notNull;index;uniqueIndex:idx_follower_followed"`
	Follower   User      `json:"follower"`
	FollowedID int       `json:"followed_id" gorm:"notNull;index;uniqueIndex:idx_follower_followed"`
	Followed   User      `json:"followed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow
// model. Follow and Unfollow keep the denormalized follower/following
// counters on the user records consistent with the edge set.
type FollowService interface {
	Follow(ctx context.Context, followerID, followedID int) (*Follow, error)
	Unfollow(ctx context.Context, followerID, followedID int) error
	IsFollowing(ctx context.Context, followerID, followedID int) (bool, error)
	// Following returns the IDs of all users the given user follows.
	Following(ctx context.Context, userID int) ([]int, error)
	// FollowerCount and FollowingCount read the denormalized counters on
	// the user record. They may trail a concurrently committing follow but
	// always match a committed state.
	FollowerCount(ctx context.Context, userID int) (int, error)
	FollowingCount(ctx context.Context, userID int) (int, error)
}
