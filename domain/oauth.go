package domain

import (
	"context"
	"time"
)

// OAuth links a user account to an identity at an external provider.
// It is created the first time a user signs in through that provider.
type OAuth struct {
	ID             int    `json:"id"`
	UserID         int    `json:"user_id" gorm:"notNull;index"`
	User           *User  `json:"user"`
	Provider       string `json:"provider" gorm:"notNull;index:idx_provider_user"`
	ProviderUserID string `json:"provider_user_id" gorm:"notNull;index:idx_provider_user"`
	AccessToken    string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthService is a set of methods to manipulate and work with the OAuth model.
type OAuthService interface {
	Find(ctx context.Context, userID int, provider string) (*OAuth, error)
	ByProviderUserID(ctx context.Context, provider, providerUserID string) (*OAuth, error)
	Create(ctx context.Context, oauth *OAuth) error
}
