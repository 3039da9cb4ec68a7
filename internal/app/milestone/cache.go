package milestone

import (
	"sync"
	"time"

	"github.com/keepwell-care/keepwell/internal/domain"
)

// DefaultStatusTTL is how long a cached status stays fresh.
const DefaultStatusTTL = 5 * time.Minute

// StatusCache is a process-wide TTL cache of computed milestone
// statuses, keyed by user id. Entries are cloned on the way in and out,
// and the newly-awarded marker is stripped on store so a cached read
// can never replay an award announcement.
type StatusCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	status     domain.MilestoneStatus
	computedAt time.Time
}

// NewStatusCache creates a cache with the given TTL.
// Non-positive TTLs fall back to DefaultStatusTTL.
func NewStatusCache(ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached status for a user if present and fresh.
func (c *StatusCache) Get(userID string) (domain.MilestoneStatus, bool) {
	return c.GetAt(userID, time.Now())
}

// GetAt is Get relative to the given time.
// Accepts a time parameter for testability.
func (c *StatusCache) GetAt(userID string, now time.Time) (domain.MilestoneStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || now.Sub(e.computedAt) > c.ttl {
		return domain.MilestoneStatus{}, false
	}
	return e.status.Clone(), true
}

// Put stores a freshly computed status.
func (c *StatusCache) Put(userID string, st domain.MilestoneStatus) {
	c.PutAt(userID, st, time.Now())
}

// PutAt is Put with an explicit computation time.
func (c *StatusCache) PutAt(userID string, st domain.MilestoneStatus, now time.Time) {
	clone := st.Clone()
	clone.NewlyAwardedBadge = nil // announcements are delivered exactly once

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{status: clone, computedAt: now}
}

// Invalidate drops the user's entry so the next read recomputes.
func (c *StatusCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Sweep removes expired entries and returns how many were dropped.
// Expired entries are already invisible to Get; sweeping bounds memory.
func (c *StatusCache) Sweep() int {
	return c.SweepAt(time.Now())
}

// SweepAt is Sweep relative to the given time.
func (c *StatusCache) SweepAt(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for id, e := range c.entries {
		if now.Sub(e.computedAt) > c.ttl {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries, fresh or expired.
func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
