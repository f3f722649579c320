package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestLRU_GetSet(t *testing.T) {
	c := New[string, int](2)
	if v, ok := c.Get("a"); ok || v != 0 {
		t.Fatal("expected miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", 2)
	c.Set("c", 3) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3) // evicts b, not a
	if _, ok := c.Get("a"); !ok {
		t.Error("recently read a should survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
}

func TestLRU_Update(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("a", 5)
	if v, _ := c.Get("a"); v != 5 {
		t.Errorf("got %d, want 5", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len=%d, want 1", c.Len())
	}
}

func TestLRU_Disabled(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		c := New[string, int](capacity)
		c.Set("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Errorf("capacity %d: cache should not store", capacity)
		}
		if c.Len() != 0 {
			t.Errorf("capacity %d: Len=%d, want 0", capacity, c.Len())
		}
		if hits, misses := c.Stats(); hits != 0 || misses != 1 {
			t.Errorf("capacity %d: Stats = %d, %d; want 0, 1", capacity, hits, misses)
		}
		c.Purge()
	}
}

func TestLRU_StatsAndPurge(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = %d, %d; want 1, 1", hits, misses)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats after Purge = %d, %d", hits, misses)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[string, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := strconv.Itoa((g + i) % 32)
				c.Set(k, i)
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len=%d exceeds capacity", c.Len())
	}
}
