package corpus

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes parsed tables by source path. Entries are created on the
// first successful load and never evicted for the life of the process;
// failed loads are not cached so a fixed file can be retried.
//
// Concurrent first loads of one path are collapsed through singleflight, so
// at most one parse runs and every caller receives the same Table instance.
type Cache struct {
	mu     sync.RWMutex
	tables map[string]*Table
	group  singleflight.Group
}

// NewCache returns an empty table cache.
func NewCache() *Cache {
	return &Cache{tables: make(map[string]*Table)}
}

// Load returns the cached table for path, parsing it on first call. The
// headerSkipRows of the call that performs the parse wins; later calls for
// the same path return the published table regardless of their offset.
func (c *Cache) Load(path string, headerSkipRows int) (*Table, error) {
	c.mu.RLock()
	t, ok := c.tables[path]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		c.mu.RLock()
		t, ok := c.tables[path]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := ReadTable(path, headerSkipRows)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tables[path] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

var defaultCache = NewCache()

// Load is the package-level entry point callers normally use: parse the
// corpus once, then hand out the same immutable Table on every repeat call
// for the same path.
func Load(path string, headerSkipRows int) (*Table, error) {
	return defaultCache.Load(path, headerSkipRows)
}
