// Package dedup implements the block- and transaction-hash dedup caches
// described in spec.md §4.1 and §4.4: a time-to-live membership cache
// sized at throughput * ttl * 2. The teacher's own common/cache.go wraps
// hashicorp/golang-lru behind a small Cache interface but only offers
// fixed-capacity LRU eviction; golang-lru v0.5.3 (the teacher's pinned
// version) has no expirable variant, so this package adds a sweep
// goroutine on top of it to get time-based eviction, the way
// original_source's fetch_blocks.rs sizes and expires its moka cache.
package dedup

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
)

var logger = log.NewModuleLogger(log.Common)

// TTLCache is a hash-keyed membership cache with a fixed capacity ceiling
// and time-based eviction. It is internally synchronized; callers never
// need external locking (spec.md §5, "internally thread-safe").
type TTLCache struct {
	ttl      time.Duration
	store    *lru.Cache
	mu       sync.Mutex
	expireAt map[dbtype.Hash]time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a TTLCache with the given time-to-live and capacity. Per
// spec.md, capacity is typically net_throughput * ttlSeconds * 2.
func New(ttl time.Duration, capacity int) *TTLCache {
	if capacity < 1 {
		capacity = 1
	}
	store, err := lru.New(capacity)
	if err != nil {
		// lru.New only errors on size <= 0, which is guarded above.
		panic(err)
	}
	c := &TTLCache{
		ttl:      ttl,
		store:    store,
		expireAt: make(map[dbtype.Hash]time.Time, capacity),
		stopCh:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.sweepLoop()
	return c
}

// Contains reports whether hash was inserted within the last ttl.
func (c *TTLCache) Contains(hash dbtype.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.expireAt[hash]
	if !ok || time.Now().After(exp) {
		return false
	}
	return c.store.Contains(hash)
}

// Insert records hash as seen, evicting the oldest entry if the cache is
// at capacity.
func (c *TTLCache) Insert(hash dbtype.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(hash, struct{}{})
	c.expireAt[hash] = time.Now().Add(c.ttl)
}

// Len returns the current number of held entries, including expired
// entries the background sweep has not yet removed.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Close stops the background sweep goroutine.
func (c *TTLCache) Close() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *TTLCache) sweepLoop() {
	defer c.wg.Done()
	interval := c.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.sweep(now)
		}
	}
}

func (c *TTLCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for h, exp := range c.expireAt {
		if now.After(exp) {
			c.store.Remove(h)
			delete(c.expireAt, h)
			evicted++
		}
	}
	if evicted > 0 {
		logger.Debug("swept expired dedup cache entries", "count", evicted, "remaining", c.store.Len())
	}
}
