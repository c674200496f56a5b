package cache

import (
	"testing"
	"time"
)

func TestGetSetExpiry(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := NewTTL[string](5*time.Minute, clock)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Set("k", "v")
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Errorf("Get() = (%q, %v), want (v, true)", got, ok)
	}

	// Just inside the TTL.
	now = now.Add(5 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired at exactly the TTL boundary")
	}

	// Past the TTL the entry is dropped on read.
	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still served")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after lazy eviction, want 0", c.Len())
	}
}

func TestSetRefreshesTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := NewTTL[int](time.Minute, clock)
	c.Set("k", 1)

	now = now.Add(50 * time.Second)
	c.Set("k", 2)

	now = now.Add(30 * time.Second)
	if got, ok := c.Get("k"); !ok || got != 2 {
		t.Errorf("Get() = (%d, %v), want (2, true) after rewrite", got, ok)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := NewTTL[int](time.Hour, nil)
	c.Set("u1|all-time", 1)
	c.Set("u1|daily", 2)
	c.Set("u2|all-time", 3)

	c.Invalidate("u1|")

	if _, ok := c.Get("u1|all-time"); ok {
		t.Error("u1 entry survived invalidation")
	}
	if _, ok := c.Get("u1|daily"); ok {
		t.Error("u1 entry survived invalidation")
	}
	if got, ok := c.Get("u2|all-time"); !ok || got != 3 {
		t.Error("u2 entry was dropped by another user's invalidation")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewTTL[int](time.Hour, nil)
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			c.Set("k", i)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		c.Get("k")
	}
	<-done
}
