package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRateCacheTTL bounds how long a fetched rate is served before the
// provider is consulted again.
const DefaultRateCacheTTL = time.Hour

type rateCacheEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// RateCache is a TTL-bounded in-memory cache of exchange rates shielding the
// market-data provider from repeated pair lookups. Expiry is evaluated lazily
// on read; an expired entry is indistinguishable from a miss. Same-currency
// pairs are never cached, callers short-circuit those before this layer.
type RateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]rateCacheEntry
	now     func() time.Time
}

// NewRateCache creates a RateCache with the given TTL. A non-positive TTL
// falls back to DefaultRateCacheTTL.
func NewRateCache(ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRateCacheTTL
	}
	return &RateCache{
		ttl:     ttl,
		entries: make(map[string]rateCacheEntry),
		now:     time.Now,
	}
}

// rateCacheKey format is stable for operability: "fx_rate:{FROM}:{TO}".
func rateCacheKey(fromCode, toCode string) string {
	return fmt.Sprintf("fx_rate:%s:%s", fromCode, toCode)
}

// Get returns the cached rate for a pair, if present and not expired.
func (c *RateCache) Get(fromCode, toCode string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[rateCacheKey(fromCode, toCode)]
	if !ok || c.now().After(entry.expiresAt) {
		return decimal.Decimal{}, false
	}
	return entry.rate, true
}

// Set stores a rate for a pair, restarting its TTL.
func (c *RateCache) Set(fromCode, toCode string, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[rateCacheKey(fromCode, toCode)] = rateCacheEntry{
		rate:      rate,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes the entry for a pair, if any.
func (c *RateCache) Delete(fromCode, toCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, rateCacheKey(fromCode, toCode))
}

// ClearAll removes every cached rate. Safe to call concurrently with reads and
// writes; keys written during the scan may survive, which is acceptable for a
// cache of idempotent values.
func (c *RateCache) ClearAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *RateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
