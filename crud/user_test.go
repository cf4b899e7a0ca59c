package crud

import (
	"context"
	"errors"
	"testing"

	"chatter/domain"
	"chatter/errs"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(setupDB(t), "test-pepper", "test-hmac-key")
}

func TestCreateUser(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	user := &domain.User{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "letmein-please",
	}
	if err := us.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("got email %q, want it normalized", user.Email)
	}
	if user.Password != "" {
		t.Error("expected the plain password to be cleared")
	}
	if user.PasswordHash == "" || user.PasswordHash == "letmein-please" {
		t.Error("expected the password to be hashed")
	}
	if user.Remember == "" || user.RememberHash == "" {
		t.Error("expected a remember token and its hash to be set")
	}
}

func TestCreateUserValidation(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	err := us.Create(ctx, &domain.User{Email: "a@b.com"})
	if !errors.Is(err, errs.PasswordRequired) {
		t.Errorf("got %v, want PasswordRequired", err)
	}
	err = us.Create(ctx, &domain.User{Email: "a@b.com", Password: "short"})
	if errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("got %v, want EINVALID for a short password", err)
	}
	err = us.Create(ctx, &domain.User{Password: "letmein-please"})
	if !errors.Is(err, errs.EmailRequired) {
		t.Errorf("got %v, want EmailRequired", err)
	}
	err = us.Create(ctx, &domain.User{Email: "not-an-email", Password: "letmein-please"})
	if errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("got %v, want EINVALID for a malformed email", err)
	}
}

func TestCreateUserEmailTaken(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	first := &domain.User{Email: "a@b.com", Password: "letmein-please"}
	if err := us.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := us.Create(ctx, &domain.User{Email: "A@B.com", Password: "letmein-please"})
	if !errors.Is(err, errs.EmailTaken) {
		t.Fatalf("got %v, want EmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@b.com", Password: "letmein-please"}
	if err := us.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := us.Authenticate("a@b.com", "letmein-please")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("got user %d, want %d", found.ID, user.ID)
	}

	if _, err := us.Authenticate("a@b.com", "wrong-password"); errs.ErrorCode(err) != errs.EUNAUTHORIZED {
		t.Errorf("got %v, want EUNAUTHORIZED", err)
	}
	if _, err := us.Authenticate("nobody@b.com", "letmein-please"); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("got %v, want ENOTFOUND", err)
	}
}

func TestByRemember(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@b.com", Password: "letmein-please"}
	if err := us.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := us.ByRemember(user.Remember)
	if err != nil {
		t.Fatalf("by remember: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("got user %d, want %d", found.ID, user.ID)
	}
}

func TestSetInterests(t *testing.T) {
	us := newTestUserService(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@b.com", Password: "letmein-please"}
	if err := us.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := us.SetInterests(ctx, user.ID, []string{"Go", "go", "", "Databases"})
	if err != nil {
		t.Fatalf("set interests: %v", err)
	}

	loaded, err := us.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	// Interests come back normalized and sorted.
	if !sameStrings(loaded.Interests, []string{"databases", "go"}) {
		t.Errorf("got interests %v, want [databases go]", loaded.Interests)
	}

	// Setting again replaces instead of appending.
	if err := us.SetInterests(ctx, user.ID, []string{"rust"}); err != nil {
		t.Fatalf("replace interests: %v", err)
	}
	loaded, err = us.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if !sameStrings(loaded.Interests, []string{"rust"}) {
		t.Errorf("got interests %v, want [rust]", loaded.Interests)
	}
}
