package matrix

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tabloom/internal/assoc"
	"github.com/KaramelBytes/tabloom/internal/table"
)

type cacheKey struct {
	table   uuid.UUID
	method  assoc.Method
	columns string
}

// Cache memoizes Build by table identity, method and column selection. Tables
// must not be mutated after their first build; corrected or cloned tables carry
// a new ID and miss the cache.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Matrix
	opts    []Option
}

// NewCache returns an empty cache. opts are applied to every build.
func NewCache(opts ...Option) *Cache {
	return &Cache{entries: map[cacheKey]*Matrix{}, opts: opts}
}

// Build returns the cached matrix or builds and stores it. No columns means
// every column in table order.
func (c *Cache) Build(t *table.Table, m assoc.Method, columns ...string) *Matrix {
	if len(columns) == 0 {
		columns = nil
	}
	key := cacheKey{table: t.ID, method: m, columns: strings.Join(columns, "\x1f")}
	if columns == nil {
		key.columns = "\x00all"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.entries[key]; ok {
		return hit
	}
	opts := c.opts
	if columns != nil {
		opts = append(append([]Option(nil), c.opts...), WithColumns(columns...))
	}
	mx := Build(t, m, opts...)
	c.entries[key] = mx
	return mx
}

// Len reports the number of cached matrices.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Forget drops every entry for the given table.
func (c *Cache) Forget(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.table == id {
			delete(c.entries, k)
		}
	}
}
