package memo

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Observer is notified of every cache lookup.
type Observer interface {
	CacheRequest(stage string, hit bool)
}

// Cache memoizes pure computations by content key. Errors are never cached.
// Concurrent callers asking for the same key share one computation.
type Cache struct {
	store    *ristretto.Cache
	group    singleflight.Group
	observer Observer
}

// New builds a cache bounded by maxCost (an approximate byte budget).
func New(maxCost int64, observer Observer) (*Cache, error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("cache max cost must be positive, got %d", maxCost)
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{store: store, observer: observer}, nil
}

// Do returns the value cached under stage/key, computing it with fn on a miss.
// cost estimates the value's size. The second result reports a cache hit.
func (c *Cache) Do(stage, key string, cost func(v interface{}) int64, fn func() (interface{}, error)) (interface{}, bool, error) {
	full := stage + ":" + key
	if v, ok := c.store.Get(full); ok {
		c.observe(stage, true)
		return v, true, nil
	}
	c.observe(stage, false)
	v, err, _ := c.group.Do(full, func() (interface{}, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.store.Set(full, v, cost(v))
		// Make the value visible to the next Get.
		c.store.Wait()
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}

func (c *Cache) observe(stage string, hit bool) {
	if c.observer != nil {
		c.observer.CacheRequest(stage, hit)
	}
}
