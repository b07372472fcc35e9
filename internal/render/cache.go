package render

import (
	"sync"
	"sync/atomic"
)

// Cache keeps the most recently encoded revision of each layer. A widget
// revision never comes back once it has been bumped, so older encodings are
// dropped as soon as a newer one is stored.
type Cache struct {
	mu     sync.RWMutex
	layers map[string]encodedLayer
	hits   atomic.Int64
	misses atomic.Int64
}

type encodedLayer struct {
	revision uint64
	data     []byte
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Layers  int     `json:"layers"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{layers: make(map[string]encodedLayer)}
}

// Get returns the encoded layer if it was stored for exactly this revision.
func (c *Cache) Get(layer string, revision uint64) []byte {
	c.mu.RLock()
	e, ok := c.layers[layer]
	c.mu.RUnlock()

	if !ok || e.revision != revision {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return e.data
}

// Put stores the encoding of a layer at revision. An older revision than the
// one already held is ignored.
func (c *Cache) Put(layer string, revision uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.layers[layer]; ok && e.revision > revision {
		return
	}
	c.layers[layer] = encodedLayer{revision: revision, data: data}
}

// Stats returns cache performance statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.layers)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{Layers: n, Hits: hits, Misses: misses, HitRate: hitRate}
}
