package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSetDelete(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}

	c.Set("a", "one")
	got, ok := c.Get("a")
	if !ok || got != "one" {
		t.Errorf("Get(a) = %q, %v; want %q, true", got, ok, "one")
	}

	c.Set("a", "two")
	if got, _ := c.Get("a"); got != "two" {
		t.Errorf("Get(a) after overwrite = %q, want %q", got, "two")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Delete = hit, want miss")
	}
}

func TestLRUCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the LRU entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) = miss")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) = hit, want evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Get(a) = miss, want kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("Get(c) = miss, want kept")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) = hit, want expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1 (Get already dropped one)", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestManager_SweepsRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](4, time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Size() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep never removed the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
