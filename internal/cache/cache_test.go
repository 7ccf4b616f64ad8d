package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Set("a", "1")
	c.Set("a", "2")
	if v, ok := c.Get("a"); !ok || v != "2" {
		t.Fatalf("expected overwritten value, got %q ok=%v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", hits, misses)
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a was used recently and should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("c should be present")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 expired entry left to clean, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected only c to remain, got %d entries", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Delete("a")
	c.Delete("never-set")
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestKey(t *testing.T) {
	if got := Key("monthly", 7); got != "monthly|7" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("categories", 3, "expense", "5"); got != "categories|3|expense|5" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key("trend", 1) == Key("trend", 2) {
		t.Fatalf("generations must produce distinct keys")
	}
}

func TestManagerCleanNow(t *testing.T) {
	a, clock := newTestCache(10, time.Minute)
	b := NewLRUCache[int](10, time.Minute)
	b.now = clock.now

	a.Set("x", "1")
	b.Set("y", 1)
	clock.t = clock.t.Add(time.Hour)

	m := NewManager()
	m.Register(a)
	m.Register(b)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop()

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
