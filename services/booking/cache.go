package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"domostay/models"
)

// AvailabilityCache is the read-through cache in front of the availability
// calculator. Staleness within the TTL is acceptable for browsing; the
// coordinator never reads it at commit time and invalidates intersecting
// entries after every successful write.
type AvailabilityCache interface {
	Get(ctx context.Context, q AvailabilityQuery) (*models.PerDayReport, bool)
	Set(ctx context.Context, q AvailabilityQuery, report *models.PerDayReport)
	Invalidate(ctx context.Context, unitID string, entry, exit time.Time)
}

func cacheKey(q AvailabilityQuery) string {
	return fmt.Sprintf("avail:%s|%d|%s|%s",
		q.UnitFilter, q.GuestCount,
		q.Start.Format(models.DateLayout), q.End.Format(models.DateLayout))
}

// intersectsQuery reports whether a mutation on unitID over [entry, exit)
// can affect the cached answer for q. A query without a unit filter covers
// every unit.
func intersectsQuery(q AvailabilityQuery, unitID string, entry, exit time.Time) bool {
	if q.UnitFilter != "" && q.UnitFilter != unitID {
		return false
	}
	return q.Start.Before(exit) && q.End.After(entry)
}

type memoryCacheEntry struct {
	query     AvailabilityQuery
	report    *models.PerDayReport
	expiresAt time.Time
}

// MemoryAvailabilityCache is the in-process implementation, used in tests and
// when Redis is not configured. Single-process only; see the Redis
// implementation for anything beyond one node sharing the store.
type MemoryAvailabilityCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl:     ttl,
		entries: make(map[string]memoryCacheEntry),
	}
}

func (c *MemoryAvailabilityCache) Get(_ context.Context, q AvailabilityQuery) (*models.PerDayReport, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(q)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	// Callers get their own copy; the cached report stays untouched.
	return entry.report.Clone(), true
}

func (c *MemoryAvailabilityCache) Set(_ context.Context, q AvailabilityQuery, report *models.PerDayReport) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	// Piggyback expired-entry sweeping on writes.
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[cacheKey(q)] = memoryCacheEntry{
		query:     q,
		report:    report.Clone(),
		expiresAt: now.Add(c.ttl),
	}
}

func (c *MemoryAvailabilityCache) Invalidate(_ context.Context, unitID string, entry, exit time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if intersectsQuery(e.query, unitID, entry, exit) {
			delete(c.entries, k)
		}
	}
}

// Len reports live (unexpired) entries.
func (c *MemoryAvailabilityCache) Len() int {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}
