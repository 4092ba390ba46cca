package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/finwise/finwise_backend/internal/core/domain"
)

// DefaultEntityValueCacheTTL is deliberately longer than the rate cache TTL:
// converted display values only go stale when the user's stored amounts
// change, not on every rate tick.
const DefaultEntityValueCacheTTL = 24 * time.Hour

type entityValueEntry struct {
	value     int64
	expiresAt time.Time
}

// EntityValueCache memoizes converted display values per entity and target
// currency. Keys are scoped by user first so one prefix scan can purge a whole
// user, which the migration completion step relies on.
type EntityValueCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entityValueEntry
	now     func() time.Time
}

// NewEntityValueCache creates an EntityValueCache with the given TTL. A
// non-positive TTL falls back to DefaultEntityValueCacheTTL.
func NewEntityValueCache(ttl time.Duration) *EntityValueCache {
	if ttl <= 0 {
		ttl = DefaultEntityValueCacheTTL
	}
	return &EntityValueCache{
		ttl:     ttl,
		entries: make(map[string]entityValueEntry),
		now:     time.Now,
	}
}

// entityValueKey format is stable for operability:
// "currency:{userId}:entity:{entityType}:{entityId}:{currency}".
func entityValueKey(userID string, entityType domain.EntityType, entityID, currencyCode string) string {
	return fmt.Sprintf("currency:%s:entity:%s:%s:%s", userID, entityType, entityID, currencyCode)
}

func entityPrefix(userID string, entityType domain.EntityType, entityID string) string {
	return fmt.Sprintf("currency:%s:entity:%s:%s:", userID, entityType, entityID)
}

func userPrefix(userID string) string {
	return fmt.Sprintf("currency:%s:", userID)
}

// Get returns the cached converted value, if present and not expired.
func (c *EntityValueCache) Get(userID string, entityType domain.EntityType, entityID, currencyCode string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[entityValueKey(userID, entityType, entityID, currencyCode)]
	if !ok || c.now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.value, true
}

// Set stores a converted value, overwriting any prior value for the same key.
func (c *EntityValueCache) Set(userID string, entityType domain.EntityType, entityID, currencyCode string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entityValueKey(userID, entityType, entityID, currencyCode)] = entityValueEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// DeleteEntity removes every cached value for one entity across all target
// currencies. Called whenever the entity's stored amount mutates.
func (c *EntityValueCache) DeleteEntity(userID string, entityType domain.EntityType, entityID string) {
	c.deleteByPrefix(entityPrefix(userID, entityType, entityID))
}

// DeleteUser removes every cached value belonging to one user. Called when a
// currency migration completes so no stale pre-migration value survives.
func (c *EntityValueCache) DeleteUser(userID string) {
	c.deleteByPrefix(userPrefix(userID))
}

// deleteByPrefix collects matching keys under a read lock, then deletes them.
// Keys created between the scan and the deletes are missed, which is tolerable
// for cache entries that expire on their own.
func (c *EntityValueCache) deleteByPrefix(prefix string) {
	c.mu.RLock()
	keys := make([]string, 0)
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *EntityValueCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
