package cache

import (
	"context"
	"sync"
	"time"

	"musicbox/logger"
)

type entry struct {
	value     []byte
	writtenAt time.Time
}

// MemoryCache is a process-local TTL map. It is not an LRU: reads never extend an entry's life.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[Key]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache 创建内存缓存
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[Key]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) expired(e entry, now time.Time) bool {
	return now.Sub(e.writtenAt) >= c.ttl
}

// Get 返回未过期的值；读到过期条目时顺便删除
func (c *MemoryCache) Get(_ context.Context, key Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set overwrites the entry and resets its timestamp.
func (c *MemoryCache) Set(_ context.Context, key Key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, writtenAt: c.now()}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, match func(Key) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	return nil
}

// Len returns the number of physically stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep evicts every expired entry and returns how many were removed.
// Expiry is checked under the same lock as Set, so a value written concurrently is never evicted.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper 按固定间隔清理过期缓存，ctx 取消后退出
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					logger.Debug("清理过期缓存", logger.Int("evicted", n))
				}
			}
		}
	}()
}
