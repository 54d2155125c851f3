package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "w")
	now = now.Add(500 * time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected fresh entry, got %q %v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 expired entry cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLoadingCacheSharesConcurrentLoads(t *testing.T) {
	c := NewLoadingCache[[]string](4, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"Office"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Get(context.Background(), "expenses", load); err != nil || len(v) != 1 {
				t.Errorf("unexpected result %v %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}

	// Cached now.
	if _, err := c.Get(context.Background(), "expenses", load); err != nil || calls.Load() != 1 {
		t.Fatalf("expected cache hit, calls=%d err=%v", calls.Load(), err)
	}

	c.Invalidate("expenses")
	if _, err := c.Get(context.Background(), "expenses", load); err != nil || calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, calls=%d err=%v", calls.Load(), err)
	}
}

func TestLoadingCacheDoesNotCacheErrors(t *testing.T) {
	c := NewLoadingCache[int](4, time.Minute)
	fail := true
	load := func(context.Context) (int, error) {
		if fail {
			return 0, errors.New("source down")
		}
		return 7, nil
	}

	if _, err := c.Get(context.Background(), "k", load); err == nil {
		t.Fatal("expected load error")
	}
	fail = false
	if v, err := c.Get(context.Background(), "k", load); err != nil || v != 7 {
		t.Fatalf("expected retry to succeed, got %v %v", v, err)
	}
}

func TestLoadingCacheLoadSurvivesCallerCancel(t *testing.T) {
	c := NewLoadingCache[int](4, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 7, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		v   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := c.Get(ctx, "k", load)
		done <- result{v, err}
	}()

	<-started
	cancel()
	close(release)

	got := <-done
	if got.err != nil || got.v != 7 {
		t.Fatalf("expected shared load to finish, got %v %v", got.v, got.err)
	}
	if v, err := c.Get(context.Background(), "k", load); err != nil || v != 7 {
		t.Fatalf("expected cached value, got %v %v", v, err)
	}
}

func TestLoadingCacheZeroTTLAlwaysLoads(t *testing.T) {
	c := NewLoadingCache[int](4, 0)
	n := 0
	load := func(context.Context) (int, error) { n++; return n, nil }

	a, _ := c.Get(context.Background(), "k", load)
	b, _ := c.Get(context.Background(), "k", load)
	if a != 1 || b != 2 {
		t.Fatalf("expected fresh loads, got %d and %d", a, b)
	}
}

func TestManager(t *testing.T) {
	c := NewLRUCache[int](4, time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)

	time.Sleep(5 * time.Millisecond)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected one expired entry, got %d", n)
	}

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	// Stop without Start must not block.
	NewManager().Stop()
}
