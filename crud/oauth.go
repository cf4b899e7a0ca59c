package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chatter/domain"
	"chatter/errs"
)

// OAuthService manages OAuth links between local users and external
// identity providers. It implements the domain.OAuthService interface.
type OAuthService struct {
	oauthValidator
}

type oauthValidator struct {
	oauthGorm
}

type oauthGorm struct {
	db *gorm.DB
}

// NewOAuthService returns an instance of OAuthService.
func NewOAuthService(db *gorm.DB) *OAuthService {
	return &OAuthService{
		oauthValidator{
			oauthGorm{
				db: db,
			},
		},
	}
}

// Ensure the OAuthService struct properly implements the domain.OAuthService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.OAuthService = &OAuthService{}

func (ov *oauthValidator) Find(ctx context.Context, userID int, provider string) (*domain.OAuth, error) {
	return ov.oauthGorm.Find(ctx, userID, provider)
}

func (ov *oauthValidator) Create(ctx context.Context, oauth *domain.OAuth) error {
	err := runOAuthValFns(oauth,
		ov.userIdRequired,
		ov.providerRequired,
		ov.providerUserIdRequired)
	if err != nil {
		return err
	}
	return ov.oauthGorm.Create(ctx, oauth)
}

// runOAuthValFns runs any number of functions of type oauthValFn on the
// passed in OAuth object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runOAuthValFns(oauth *domain.OAuth, fns ...oauthValFn) error {
	for _, fn := range fns {
		if err := fn(oauth); err != nil {
			return err
		}
	}
	return nil
}

// A oauthValFn is any function that takes in a pointer to a domain.OAuth
// object and returns an error.
type oauthValFn func(oauth *domain.OAuth) error

func (ov *oauthValidator) providerRequired(oauth *domain.OAuth) error {
	if oauth.Provider == "" {
		return errs.ProviderRequired
	}
	return nil
}

func (ov *oauthValidator) providerUserIdRequired(oauth *domain.OAuth) error {
	if oauth.ProviderUserID == "" {
		return errs.ProviderUserIdRequired
	}
	return nil
}

func (ov *oauthValidator) userIdRequired(oauth *domain.OAuth) error {
	if oauth.UserID <= 0 {
		return errs.UserIDRequired
	}
	return nil
}

func (og *oauthGorm) Find(ctx context.Context, userID int, provider string) (*domain.OAuth, error) {
	var oauth domain.OAuth
	err := og.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("provider = ?", provider).
		First(&oauth).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "No %s account is linked to this user.", provider)
		}
		return nil, err
	}
	return &oauth, nil
}

func (og *oauthGorm) ByProviderUserID(ctx context.Context, provider, providerUserID string) (*domain.OAuth, error) {
	var oauth domain.OAuth
	err := og.db.WithContext(ctx).
		Where("provider = ?", provider).
		Where("provider_user_id = ?", providerUserID).
		First(&oauth).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "This %s account is not linked to any user.", provider)
		}
		return nil, err
	}
	return &oauth, nil
}

func (og *oauthGorm) Create(ctx context.Context, oauth *domain.OAuth) error {
	return og.db.WithContext(ctx).Create(oauth).Error
}
