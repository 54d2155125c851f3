package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadingCache fills an LRUCache on miss. Concurrent misses for the same key
// share one load. A zero ttl disables storage but keeps load sharing.
type LoadingCache[T any] struct {
	lru   *LRUCache[T]
	ttl   time.Duration
	group singleflight.Group
}

func NewLoadingCache[T any](maxSize int, ttl time.Duration) *LoadingCache[T] {
	return &LoadingCache[T]{
		lru: NewLRUCache[T](maxSize, ttl),
		ttl: ttl,
	}
}

// Get returns the cached value for key or calls load to produce it. Load
// errors are returned to every waiting caller and never cached.
func (c *LoadingCache[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if c.ttl > 0 {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A load that finished between the lookup above and Do has stored
		// its result already.
		if c.ttl > 0 {
			if v, ok := c.lru.Get(key); ok {
				return v, nil
			}
		}
		// Waiters share this load, so one caller cancelling must not fail it.
		data, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return data, err
		}
		if c.ttl > 0 {
			c.lru.Set(key, data)
		}
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops key so the next Get reloads it.
func (c *LoadingCache[T]) Invalidate(key string) {
	c.lru.Delete(key)
	c.group.Forget(key)
}

// CleanExpired implements Cleaner.
func (c *LoadingCache[T]) CleanExpired() int {
	return c.lru.CleanExpired()
}
