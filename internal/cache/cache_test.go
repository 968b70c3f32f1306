package cache

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b was least recently used and should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRU_Expiry(t *testing.T) {
	clk := &clock{t: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[string](10, 30*time.Second, WithClock(clk.now))
	c.Set("2025-05", "summary")
	c.Set("2025-04", "summary")

	clk.t = clk.t.Add(29 * time.Second)
	if _, ok := c.Get("2025-05"); !ok {
		t.Fatal("entry expired early")
	}

	clk.t = clk.t.Add(time.Second)
	if _, ok := c.Get("2025-05"); ok {
		t.Fatal("entry should expire at the TTL")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup", c.Len())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses", hits, misses)
	}
}

func TestLRU_SetReplacesAndPurge(t *testing.T) {
	c := NewLRU[int](0, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}
	c.Set("other", 3) // size floor is 1
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	c.Purge()
	if _, ok := c.Get("other"); ok || c.Len() != 0 {
		t.Error("Purge should empty the cache")
	}
}

func TestJanitor(t *testing.T) {
	clk := &clock{t: time.Now()}
	a := NewLRU[int](4, time.Second, WithClock(clk.now))
	b := NewLRU[int](4, time.Hour, WithClock(clk.now))
	a.Set("x", 1)
	b.Set("y", 2)
	clk.t = clk.t.Add(2 * time.Second)

	j := NewJanitor(nil, a, b)
	if n := j.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}

	j.Start(time.Hour)
	if err := j.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := j.Stop(); err != nil {
		t.Fatal("second Stop should be a no-op")
	}

	unstarted := NewJanitor(nil)
	if err := unstarted.Stop(); err != nil {
		t.Fatal(err)
	}
}
