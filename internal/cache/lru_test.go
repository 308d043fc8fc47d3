package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, found := c.Get("a"); found {
		t.Error("oldest entry survived eviction")
	}
	if v, found := c.Get("c"); !found || v != 3 {
		t.Errorf("c = %d, %v", v, found)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent; b should evict next
	c.Set("c", 3)

	if _, found := c.Get("a"); !found {
		t.Error("recently read entry was evicted")
	}
	if _, found := c.Get("b"); found {
		t.Error("least recently used entry survived eviction")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[string](10, -time.Second) // everything is born expired
	c.Set("k", "v")

	if _, found := c.Get("k"); found {
		t.Error("expired entry returned")
	}
	c.Set("k", "v")
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("cleaned %d entries, want 1", removed)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d after cleanup, want 0", c.Size())
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Minute))
	// Must return immediately; there is no cleanup goroutine to wait for.
	m.Stop()
	m.Stop()
}

func TestLRUPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Size() != 0 {
		t.Errorf("size = %d after purge, want 0", c.Size())
	}
	c.Set("a", 9)
	if v, found := c.Get("a"); !found || v != 9 {
		t.Errorf("cache unusable after purge: %d, %v", v, found)
	}
}
