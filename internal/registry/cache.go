// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"sync"
)

// Cache loads templates lazily and keeps them for the life of the
// process. Entries are keyed by resolved name and source, so manifest
// entries sharing one file keep their own title and defaults. Entries are
// never invalidated; failed loads are not cached.
type Cache struct {
	reg Registry

	mu    sync.RWMutex
	items map[string]*Template
}

// NewCache wraps reg.
func NewCache(reg Registry) *Cache {
	return &Cache{reg: reg, items: make(map[string]*Template)}
}

// Registry returns the wrapped registry.
func (c *Cache) Registry() Registry { return c.reg }

// Get resolves name and returns its parsed template, loading it on first
// use.
func (c *Cache) Get(ctx context.Context, name string) (*Template, error) {
	res, err := c.reg.Resolve(name)
	if err != nil {
		return nil, err
	}

	key := res.Name + "\x00" + res.Source

	c.mu.RLock()
	t, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	data, err := c.reg.Open(ctx, res)
	if err != nil {
		return nil, err
	}
	t, err = Parse(res, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = t
	return t, nil
}
