package sheet

import (
	"sync"
	"time"
)

// Cache holds the last successfully parsed feed. It is safe for concurrent use;
// each Fetcher normally owns one, but tests can share or pre-seed it.
type Cache struct {
	mu      sync.RWMutex
	rows    []Row
	fetched time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached rows and when they were fetched. ok is false when
// nothing has been cached yet.
func (c *Cache) Get() (rows []Row, fetched time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rows == nil {
		return nil, time.Time{}, false
	}
	return c.rows, c.fetched, true
}

// Set replaces the cached rows.
func (c *Cache) Set(rows []Row, fetched time.Time) {
	if rows == nil {
		rows = []Row{}
	}
	c.mu.Lock()
	c.rows = rows
	c.fetched = fetched
	c.mu.Unlock()
}

// Clear drops the cached rows so the next fetch has no stale fallback.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rows = nil
	c.fetched = time.Time{}
	c.mu.Unlock()
}

// Fresh reports whether cached rows exist and are younger than ttl.
// A zero ttl is never fresh.
func (c *Cache) Fresh(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rows != nil && now.Sub(c.fetched) < ttl
}
