package imagegen

import (
	"sync"
	"time"
)

// Cache holds the rendered share card for a short period so repeated link
// unfurls do not re-render it.
type Cache struct {
	mu        sync.RWMutex
	data      []byte
	expiresAt time.Time
	ttl       time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns the cached card if still valid.
func (c *Cache) Get() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

// Set stores a freshly rendered card.
func (c *Cache) Set(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = data
	c.expiresAt = time.Now().Add(c.ttl)
}
