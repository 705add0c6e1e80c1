// Package spatial maps forecast grid geometries to nearest-grid-point indices
// for a fixed set of target locations, caching the expensive index build per
// distinct grid layout.
package spatial

import (
	"fmt"
	"sync"
)

// GridMeta identifies a grid's geometry from its first message's scalar keys.
// Reading these is cheap; the full coordinate arrays are only read on a cache
// miss.
type GridMeta struct {
	TemplateNumber int64
	Ni             int64
	Nj             int64
	Lat1           float64
	Lon1           float64
}

// Signature derives the cache key. First-point coordinates are truncated to
// four decimals (~11 m): tight enough that genuinely distinct grids never
// collide, loose enough that floating noise in repeated encodings of the same
// grid never splits an entry.
func (m GridMeta) Signature() string {
	return fmt.Sprintf("%d-%d-%d-%.4f-%.4f", m.TemplateNumber, m.Ni, m.Nj, m.Lat1, m.Lon1)
}

// Entry holds the per-grid data reused across files sharing a signature:
// the flattened coordinate arrays (longitudes normalized to [-180, 180]) and
// the nearest flat index for each target point, in target order.
type Entry struct {
	Lats    []float64
	Lons    []float64
	Indices []int
}

// Cache stores one Entry per grid signature for the lifetime of a run.
// It is an explicit object handed to the resolver, never package state.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewCache returns an empty grid cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

func (c *Cache) get(sig string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sig]
	return e, ok
}

func (c *Cache) put(sig string, e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sig] = e
}

// Len reports the number of cached grid layouts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
