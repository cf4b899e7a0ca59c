package crud

import (
	"context"
	"testing"
	"time"

	"chatter/domain"
	"chatter/errs"
)

func TestBookmarkAddRemove(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	bs := NewBookmarkService(db)
	reader := seedUser(t, db, "reader")
	author := seedUser(t, db, "author")
	post := seedPost(t, db, author, "post", domain.PostStatusPublished, time.Now())

	added, err := bs.Add(ctx, reader.ID, post.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Error("expected first add to insert")
	}

	added, err = bs.Add(ctx, reader.ID, post.ID)
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if added {
		t.Error("expected repeat add to report false")
	}

	removed, err := bs.Remove(ctx, reader.ID, post.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Error("expected remove to delete")
	}

	removed, err = bs.Remove(ctx, reader.ID, post.ID)
	if err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
	if removed {
		t.Error("expected repeat remove to report false")
	}
}

func TestBookmarkToggle(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	bs := NewBookmarkService(db)
	reader := seedUser(t, db, "reader")
	author := seedUser(t, db, "author")
	post := seedPost(t, db, author, "post", domain.PostStatusPublished, time.Now())

	// A toggle round trip must land back where it started.
	for i, want := range []bool{true, false, true, false} {
		got, err := bs.Toggle(ctx, reader.ID, post.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Errorf("toggle %d: got %v, want %v", i, got, want)
		}
		persisted, err := bs.IsBookmarked(ctx, reader.ID, post.ID)
		if err != nil {
			t.Fatalf("is bookmarked %d: %v", i, err)
		}
		if persisted != want {
			t.Errorf("toggle %d: persisted state %v, want %v", i, persisted, want)
		}
	}
}

func TestBookmarkUnknownPost(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	bs := NewBookmarkService(db)
	reader := seedUser(t, db, "reader")

	_, err := bs.Add(ctx, reader.ID, 999)
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Fatalf("got %v, want ENOTFOUND", err)
	}
}

func TestBookmarkList(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	bs := NewBookmarkService(db)
	reader := seedUser(t, db, "reader")
	author := seedUser(t, db, "author")

	var bookmarkIDs []int
	for i := 0; i < 3; i++ {
		post := seedPost(t, db, author, "post", domain.PostStatusPublished, time.Now())
		if _, err := bs.Add(ctx, reader.ID, post.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
		var stored domain.Bookmark
		err := db.Where("user_id = ? AND post_id = ?", reader.ID, post.ID).First(&stored).Error
		if err != nil {
			t.Fatalf("load bookmark: %v", err)
		}
		bookmarkIDs = append([]int{stored.ID}, bookmarkIDs...)
	}

	page1, next, err := bs.ByUser(ctx, reader.ID, 0, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1: got %d bookmarks, want 2", len(page1))
	}
	if page1[0].ID != bookmarkIDs[0] || page1[1].ID != bookmarkIDs[1] {
		t.Errorf("page 1: got IDs %d,%d, want %d,%d", page1[0].ID, page1[1].ID, bookmarkIDs[0], bookmarkIDs[1])
	}
	if next != page1[1].ID {
		t.Errorf("page 1: got next cursor %d, want %d", next, page1[1].ID)
	}
	if page1[0].Post.ID == 0 {
		t.Error("page 1: expected the post to be preloaded")
	}

	page2, next, err := bs.ByUser(ctx, reader.ID, next, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != bookmarkIDs[2] {
		t.Errorf("page 2: got %d bookmarks, want the remaining one", len(page2))
	}
	if next != 0 {
		t.Errorf("page 2: got next cursor %d, want 0", next)
	}
}
