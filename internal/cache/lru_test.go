package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Add("a", 1)
	c.Add("b", 2)
	if c.Add("a", 1) {
		t.Fatalf("a should already be present")
	}
	c.Add("c", 3) // evicts b, the least recently used

	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
	if c.Add("a", 1) {
		t.Fatalf("a should have survived eviction")
	}
	if !c.Add("b", 2) {
		t.Fatalf("b should have been evicted")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Add("old", "x")
	now = now.Add(30 * time.Second)
	c.Add("new", "y")
	now = now.Add(45 * time.Second)

	if !c.Add("old", "x") {
		t.Fatalf("old should have expired and been re-added")
	}
	if removed := c.CleanExpired(); removed != 0 {
		t.Fatalf("nothing else has expired yet, removed=%d", removed)
	}
	now = now.Add(time.Minute)
	if removed := c.CleanExpired(); removed != 1 || c.Size() != 1 {
		t.Fatalf("expected new to expire, removed=%d size=%d", removed, c.Size())
	}
}

func TestLRUCacheAdd(t *testing.T) {
	c := NewLRUCache[struct{}](100, time.Hour)
	if !c.Add("m1", struct{}{}) {
		t.Fatalf("first add should succeed")
	}
	if c.Add("m1", struct{}{}) {
		t.Fatalf("second add should report duplicate")
	}

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Add("race", struct{}{}) {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
