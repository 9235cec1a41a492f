package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/analytics"
	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/patrickmn/go-cache"
)

// Cache holds computed analytics summaries until the case set changes.
type Cache interface {
	Get(key string) (*analytics.Summary, bool)
	Set(key string, value *analytics.Summary) error
	Delete(key string)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

type LRUCache struct {
	cache   *cache.Cache
	mu      sync.RWMutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, ttl time.Duration) Cache {
	return &LRUCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
		stats:   CacheStats{},
	}
}

func (c *LRUCache) Get(key string) (*analytics.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if summary, ok := data.(*analytics.Summary); ok {
			c.stats.Hits++
			return summary, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *LRUCache) Set(key string, value *analytics.Summary) error {
	if value == nil {
		return fmt.Errorf("cannot cache nil summary for %s", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = c.cache.ItemCount()
	return stats
}

// removeOldest evicts the entry closest to expiry, which is the one set earliest.
func (c *LRUCache) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldest int64

	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// GenerateCacheKey identifies the summary of one filtered view of one
// generation of the case set. A summary computed from an older generation
// can never be served for a newer one, even if it is stored late.
func GenerateCacheKey(f cases.Filter, generation uint64) string {
	return fmt.Sprintf("summary:%d:%s:%s:%s", generation, orAll(f.Status), orAll(f.Type), f.Query)
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
