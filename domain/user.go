package domain

import (
	"context"
	"time"
)

// User represents a registered member of the platform. The FollowerCount
// and FollowingCount fields are denormalized counters kept in sync with
// the follows-table by the FollowService; the follow edges remain the
// source of truth.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email" gorm:"notNull;uniqueIndex"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`

	FollowerCount  int `json:"follower_count" gorm:"notNull;default:0"`
	FollowingCount int `json:"following_count" gorm:"notNull;default:0"`

	// Interests holds the tags this user wants in their personalized
	// feed. They live in the user_interests-table, not in a column.
	Interests []string `json:"interests" gorm:"-"`

	Password         string `json:"password,omitempty" gorm:"-"`
	PasswordHash     string `json:"-"`
	Remember         string `json:"-" gorm:"-"`
	RememberHash     string `json:"-" gorm:"uniqueIndex"`
	NoPasswordNeeded bool   `json:"-" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInterest relates a user to a tag they're interested in.
// At most one row per (user, tag) pair.
type UserInterest struct {
	UserID int    `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Tag    string `json:"tag" gorm:"primaryKey;size:64"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It also covers the database half of the authentication system.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(email, password string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	SetInterests(ctx context.Context, userID int, interests []string) error
	MakeRememberToken() (string, error)
}
