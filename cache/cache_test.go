package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c.Set("a", "payload", time.Minute)
	if got := c.Get("a"); got != "payload" {
		t.Errorf("got %v, want payload", got)
	}
	if got := c.Get("missing"); got != nil {
		t.Errorf("got %v for a missing key, want nil", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c.Set("a", "payload", -time.Second)
	if got := c.Get("a"); got != nil {
		t.Errorf("got %v for an expired key, want nil", got)
	}
}

func TestCacheDelete(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c.Set("a", "payload", time.Minute)
	c.Delete("a")
	if got := c.Get("a"); got != nil {
		t.Errorf("got %v after delete, want nil", got)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	if got := c.Get("a"); got != nil {
		t.Errorf("got %v for the evicted key, want nil", got)
	}
	if got := c.Get("c"); got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}
