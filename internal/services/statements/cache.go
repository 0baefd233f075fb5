package statements

import (
	"sync"
	"time"

	"finlens/internal/models"
)

type cacheEntry struct {
	analysis *models.SpendingAnalysis
	storedAt time.Time
}

// Cache holds finished analyses by id until they expire
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache whose entries live for ttl. A ttl of zero never expires.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores an analysis under its ID
func (c *Cache) Put(a *models.SpendingAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.ID] = cacheEntry{analysis: a, storedAt: c.now()}
}

// Get returns a live analysis
func (c *Cache) Get(id string) (*models.SpendingAnalysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.analysis, true
}

// Delete drops an analysis and reports whether it was present
func (c *Cache) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[id]
	delete(c.entries, id)
	return ok
}

// Purge removes expired entries and returns them
func (c *Cache) Purge() []*models.SpendingAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []*models.SpendingAnalysis
	for id, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, id)
			removed = append(removed, e.analysis)
		}
	}
	return removed
}

// Len returns the number of entries, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(e cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl
}
