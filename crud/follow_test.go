package crud

import (
	"context"
	"errors"
	"testing"

	"chatter/domain"
	"chatter/errs"
)

func TestFollow(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	follow, err := fs.Follow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if follow.FollowerID != alice.ID || follow.FollowedID != bob.ID {
		t.Errorf("got edge %d->%d, want %d->%d", follow.FollowerID, follow.FollowedID, alice.ID, bob.ID)
	}

	following, err := fs.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if !following {
		t.Error("expected alice to follow bob")
	}

	// The edge and both counters must have committed together.
	assertCounts(t, fs, bob.ID, 1, 0)
	assertCounts(t, fs, alice.ID, 0, 1)
}

func TestFollowTwice(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := fs.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := fs.Follow(ctx, alice.ID, bob.ID); !errors.Is(err, errs.AlreadyFollowing) {
		t.Fatalf("got %v, want AlreadyFollowing", err)
	}

	// The failed repeat must not have bumped any counter.
	assertCounts(t, fs, bob.ID, 1, 0)
	assertCounts(t, fs, alice.ID, 0, 1)
}

func TestSelfFollow(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")

	if _, err := fs.Follow(ctx, alice.ID, alice.ID); !errors.Is(err, errs.SelfFollow) {
		t.Fatalf("got %v, want SelfFollow", err)
	}

	// The rejection happens before any store write.
	var edges int64
	if err := db.Model(&domain.Follow{}).Count(&edges).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if edges != 0 {
		t.Errorf("got %d follow rows, want 0", edges)
	}
	assertCounts(t, fs, alice.ID, 0, 0)
}

func TestFollowUnknownUser(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")

	if _, err := fs.Follow(ctx, alice.ID, alice.ID+1); !errors.Is(err, errs.UserNotFound) {
		t.Fatalf("got %v, want UserNotFound", err)
	}
	assertCounts(t, fs, alice.ID, 0, 0)
}

func TestUnfollow(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := fs.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := fs.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	following, err := fs.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if following {
		t.Error("expected alice to no longer follow bob")
	}
	assertCounts(t, fs, bob.ID, 0, 0)
	assertCounts(t, fs, alice.ID, 0, 0)
}

func TestUnfollowNotFollowing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if err := fs.Unfollow(ctx, alice.ID, bob.ID); !errors.Is(err, errs.NotFollowing) {
		t.Fatalf("got %v, want NotFollowing", err)
	}
	assertCounts(t, fs, bob.ID, 0, 0)
	assertCounts(t, fs, alice.ID, 0, 0)
}

func TestUnfollowClampsCounters(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	// Seed the edge directly, leaving the counters at 0 as if they had
	// been corrupted out of band.
	err := db.Create(&domain.Follow{FollowerID: alice.ID, FollowedID: bob.ID}).Error
	if err != nil {
		t.Fatalf("seed edge: %v", err)
	}

	if err := fs.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	// The decrements must clamp at 0, never go negative.
	assertCounts(t, fs, bob.ID, 0, 0)
	assertCounts(t, fs, alice.ID, 0, 0)
}

func TestCountersMatchEdges(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	steps := []struct {
		unfollow           bool
		follower, followed int
	}{
		{false, alice.ID, bob.ID},
		{false, carol.ID, bob.ID},
		{false, bob.ID, alice.ID},
		{true, alice.ID, bob.ID},
		{false, alice.ID, carol.ID},
		{true, carol.ID, bob.ID},
	}
	for i, step := range steps {
		var err error
		if step.unfollow {
			err = fs.Unfollow(ctx, step.follower, step.followed)
		} else {
			_, err = fs.Follow(ctx, step.follower, step.followed)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	// After any sequence of committed operations the counters must equal
	// the number of edges in the store.
	for _, user := range []*domain.User{alice, bob, carol} {
		var followers, following int64
		if err := db.Model(&domain.Follow{}).Where("followed_id = ?", user.ID).Count(&followers).Error; err != nil {
			t.Fatalf("count followers: %v", err)
		}
		if err := db.Model(&domain.Follow{}).Where("follower_id = ?", user.ID).Count(&following).Error; err != nil {
			t.Fatalf("count following: %v", err)
		}
		assertCounts(t, fs, user.ID, int(followers), int(following))
	}
}

func TestFollowing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fs := NewFollowService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	if _, err := fs.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := fs.Follow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	ids, err := fs.Following(ctx, alice.ID)
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d followed users, want 2", len(ids))
	}
	seen := map[int]bool{ids[0]: true, ids[1]: true}
	if !seen[bob.ID] || !seen[carol.ID] {
		t.Errorf("got followed IDs %v, want bob and carol", ids)
	}
}

// assertCounts checks both denormalized counters of a user.
func assertCounts(t *testing.T, fs *FollowService, userID, followers, following int) {
	t.Helper()
	ctx := context.Background()
	gotFollowers, err := fs.FollowerCount(ctx, userID)
	if err != nil {
		t.Fatalf("follower count: %v", err)
	}
	gotFollowing, err := fs.FollowingCount(ctx, userID)
	if err != nil {
		t.Fatalf("following count: %v", err)
	}
	if gotFollowers != followers {
		t.Errorf("user %d: got %d followers, want %d", userID, gotFollowers, followers)
	}
	if gotFollowing != following {
		t.Errorf("user %d: got following count %d, want %d", userID, gotFollowing, following)
	}
}
