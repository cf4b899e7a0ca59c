package crud

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatter/domain"
)

// setupDB opens a throwaway sqlite database in a temp directory and runs
// the migrations, so every test starts from an empty schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		domain.User{},
		domain.UserInterest{},
		domain.OAuth{},
		domain.Post{},
		domain.PostTag{},
		domain.Comment{},
		domain.Follow{},
		domain.Like{},
		domain.Bookmark{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// seedUser writes a user record directly, bypassing the validation chain.
func seedUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
		RememberHash: "remember-" + name,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

// seedPost writes a post record directly with a fixed creation time.
func seedPost(t *testing.T, db *gorm.DB, author *domain.User, title, status string, createdAt time.Time) *domain.Post {
	t.Helper()
	post := &domain.Post{
		AuthorID:  author.ID,
		Title:     title,
		Content:   "content of " + title,
		Status:    status,
		CreatedAt: createdAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post %s: %v", title, err)
	}
	return post
}

// seedTags attaches tags to a post directly.
func seedTags(t *testing.T, db *gorm.DB, post *domain.Post, tags ...string) {
	t.Helper()
	for _, tag := range tags {
		if err := db.Create(&domain.PostTag{PostID: post.ID, Tag: tag}).Error; err != nil {
			t.Fatalf("seed tag %s: %v", tag, err)
		}
	}
}

// seedLikes attaches n likes from freshly seeded users to a post.
func seedLikes(t *testing.T, db *gorm.DB, post *domain.Post, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		user := seedUser(t, db, fmt.Sprintf("liker-%d-%d", post.ID, i))
		if err := db.Create(&domain.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}
}

// postIDs extracts the IDs of a result page, in order.
func postIDs(posts []*domain.Post) []int {
	ids := make([]int, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	return ids
}

// sameIDs compares two ID slices, order included.
func sameIDs(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
