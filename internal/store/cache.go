// Package store provides the in-memory lookup caches shared across searches
// within a session. Entries are keyed by quantized grid cell and live until
// process exit unless trimming is configured.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/sunspotter/internal/geo"
)

var (
	// ErrNotFound is returned when no entry exists for a given cell.
	ErrNotFound = errors.New("no cached entry for cell")
)

type entry[V any] struct {
	value   V
	addedAt time.Time
}

// GeoCache is a concurrency-safe read-through cache keyed by quantized
// coordinate cells. Precision controls the cell size: 2 decimals for the
// weather cache (~1 km cells), 3 for the place cache (~100 m cells).
type GeoCache[V any] struct {
	mu        sync.RWMutex
	entries   map[string]entry[V]
	precision int
}

// NewGeoCache creates a cache whose keys quantize points to the given number
// of decimal places.
func NewGeoCache[V any](precision int) *GeoCache[V] {
	return &GeoCache[V]{
		entries:   make(map[string]entry[V]),
		precision: precision,
	}
}

// Get returns the cached value for the cell containing p.
func (c *GeoCache[V]) Get(p geo.Point) (V, error) {
	key := geo.CellKey(p, c.precision)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Put stores a value for the cell containing p, overwriting any previous
// entry for that cell.
func (c *GeoCache[V]) Put(p geo.Point, v V) {
	key := geo.CellKey(p, c.precision)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: v, addedAt: time.Now()}
}

// Len returns the number of cached cells.
func (c *GeoCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Trim enforces optional retention bounds: entries older than maxAge are
// dropped, and if more than maxEntries remain the oldest are evicted first.
// Zero values disable the respective bound. Returns the number of evictions.
func (c *GeoCache[V]) Trim(maxEntries int, maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0

	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge)
		for k, e := range c.entries {
			if e.addedAt.Before(cutoff) {
				delete(c.entries, k)
				evicted++
			}
		}
	}

	if maxEntries > 0 && len(c.entries) > maxEntries {
		over := len(c.entries) - maxEntries
		for i := 0; i < over; i++ {
			oldestKey := ""
			var oldestAt time.Time
			for k, e := range c.entries {
				if oldestKey == "" || e.addedAt.Before(oldestAt) {
					oldestKey = k
					oldestAt = e.addedAt
				}
			}
			delete(c.entries, oldestKey)
			evicted++
		}
	}

	return evicted
}
