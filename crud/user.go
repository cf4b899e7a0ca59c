package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chatter/auth"
	"chatter/domain"
	"chatter/errs"
)

// UserService manages Users. It also contains the part of the
// authentication system that handles database interactions and token
// hashing. It's basically the "backend" of the auth system, with
// http/auth.go dealing with requests, middleware and cookies being the
// "frontend". It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	hmac       auth.HMAC
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper, hmacKey string) *UserService {
	return &UserService{
		userValidator{
			hmac:       auth.NewHMAC(hmacKey),
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password for existence
// and correctness.
func (uv *userValidator) Authenticate(email, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByEmail(context.Background(), email)
	if err != nil {
		return nil, err
	}

	// Append the predefined pepper to the submitted password and compare
	// the hash to the one stored on the user's record.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "The password is incorrect.")
		}
		return nil, err
	}
	return found, nil
}

// MakeRememberToken is a helper to generate remember tokens of a
// predetermined byte size.
func (uv *userValidator) MakeRememberToken() (string, error) {
	return auth.MakeRememberToken()
}

// ByRemember hashes a user's remember token and passes the HASHED token
// on to userGorm.ByRemember, which will look it up in the database.
func (uv *userValidator) ByRemember(token string) (*domain.User, error) {
	user := domain.User{
		Remember: token,
	}
	if err := runUserValFns(&user, uv.rememberHmac); err != nil {
		return nil, err
	}
	return uv.userGorm.ByRemember(user.RememberHash)
}

// Create runs validations needed for creating new User database records.
// It will create a remember token if none is provided.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.rememberSetIfUnset,
		uv.rememberMinBytes,
		uv.rememberHmac,
		uv.rememberHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail(ctx),
		uv.interestsNormalize)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update runs validations needed for updating a User record in the database.
// It will hash a remember token if one is provided (and will not return an
// error if it's not).
func (uv *userValidator) Update(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.rememberMinBytes,
		uv.rememberHmac,
		uv.rememberHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail(ctx))
	if err != nil {
		return err
	}
	return uv.userGorm.Update(ctx, user)
}

// SetInterests replaces the user's interest tags after normalizing them.
func (uv *userValidator) SetInterests(ctx context.Context, userID int, interests []string) error {
	if userID <= 0 {
		return errs.UserIDRequired
	}
	return uv.userGorm.SetInterests(ctx, userID, domain.NormalizeTags(interests))
}

// runUserValFns runs any number of functions of type userValFn on the passed
// in User object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User
// object and returns an error.
type userValFn func(user *domain.User) error

// emailFormat makes sure that a provided email address matches a predefined
// regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(ctx context.Context) userValFn {
	return func(user *domain.User) error {
		existing, err := uv.userGorm.ByEmail(ctx, user.Email)
		if err != nil {
			if errs.ErrorCode(err) == errs.ENOTFOUND {
				// Address is not taken.
				return nil
			}
			return err
		}
		if user.ID != existing.ID {
			// Email found, and the passed in user is not the owner of that email.
			return errs.EmailTaken
		}
		return nil
	}
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.EmailRequired
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the
// empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.NoPasswordNeeded {
		return nil
	}
	if user.PasswordHash == "" {
		return errs.PasswordRequired
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8
// characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.NoPasswordNeeded {
		return nil
	}
	if user.Password == "" {
		return errs.PasswordRequired
	}
	return nil
}

// rememberSetIfUnset generates a remember token if none is provided.
func (uv *userValidator) rememberSetIfUnset(user *domain.User) error {
	if user.Remember != "" {
		return nil
	}
	token, err := auth.MakeRememberToken()
	if err != nil {
		return err
	}
	user.Remember = token
	return nil
}

// rememberMinBytes makes sure a provided remember token is at least 32 bytes.
func (uv *userValidator) rememberMinBytes(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	n, err := auth.NBytes(user.Remember)
	if err != nil {
		return err
	}
	if n < auth.RememberTokenBytes {
		return errs.RememberTooShort
	}
	return nil
}

// rememberHmac hashes a provided remember token with HMAC.
func (uv *userValidator) rememberHmac(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	user.RememberHash = uv.hmac.Hash(user.Remember)
	return nil
}

// rememberHashRequired makes sure the user's remember token hash is not the
// empty string.
func (uv *userValidator) rememberHashRequired(user *domain.User) error {
	if user.RememberHash == "" {
		return errs.RememberRequired
	}
	return nil
}

// interestsNormalize lowercases the interest tags and drops empties and
// duplicates.
func (uv *userValidator) interestsNormalize(user *domain.User) error {
	user.Interests = domain.NormalizeTags(user.Interests)
	return nil
}

// ByID returns the user with the given ID, with their interests filled in.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound
		}
		return nil, err
	}
	if err := ug.fillInterests(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByEmail returns the user with the given email address.
func (ug *userGorm) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The email address does not exist in our database.")
		}
		return nil, err
	}
	return &user, nil
}

// ByRemember looks up the user carrying the given HASHED remember token.
func (ug *userGorm) ByRemember(rememberHash string) (*domain.User, error) {
	var user domain.User
	err := ug.db.First(&user, "remember_hash = ?", rememberHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create writes the user record and their interest rows in one transaction.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return replaceInterests(tx, user.ID, user.Interests)
	})
}

// Update saves the user record.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Save(user).Error
}

// SetInterests replaces the user's interest rows in one transaction.
func (ug *userGorm) SetInterests(ctx context.Context, userID int, interests []string) error {
	return ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.UserInterest{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return replaceInterests(tx, userID, interests)
	})
}

// fillInterests loads the user's interest rows into the Interests field.
func (ug *userGorm) fillInterests(ctx context.Context, user *domain.User) error {
	var tags []string
	err := ug.db.WithContext(ctx).Model(&domain.UserInterest{}).
		Where("user_id = ?", user.ID).
		Order("tag ASC").
		Pluck("tag", &tags).Error
	if err != nil {
		return err
	}
	user.Interests = tags
	return nil
}

// replaceInterests inserts the interest rows of a user.
func replaceInterests(tx *gorm.DB, userID int, interests []string) error {
	for _, tag := range interests {
		if err := tx.Create(&domain.UserInterest{UserID: userID, Tag: tag}).Error; err != nil {
			return err
		}
	}
	return nil
}
