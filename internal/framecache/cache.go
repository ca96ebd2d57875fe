// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framecache memoizes transformed frame pixels for live preview.
package framecache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultBudget is the default pixel byte budget (64 MiB).
const DefaultBudget = 64 << 20

// Key identifies one frame of one loaded store.
type Key struct {
	Store uuid.UUID
	Index int
}

// Stats holds cache statistics.
type Stats struct {
	Len       int
	Bytes     int64
	Budget    int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe LRU of frame pixel buffers bounded by total bytes
// rather than entry count, since frame sizes vary per asset.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*list.Element
	lru     *list.List // front = most recently used
	bytes   int64
	budget  int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry struct {
	key Key
	pix []uint8
}

// New creates a cache holding at most budget bytes of pixels.
// If budget <= 0, DefaultBudget is used.
func New(budget int64) *Cache {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Cache{
		entries: make(map[Key]*list.Element),
		lru:     list.New(),
		budget:  budget,
	}
}

// Get returns the cached pixels for key. The slice must not be modified.
func (c *Cache) Get(key Key) ([]uint8, bool) {
	c.mu.Lock()
	el, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(el)
	pix := el.Value.(*entry).pix
	c.mu.Unlock()

	c.hits.Add(1)
	return pix, true
}

// Put stores pix under key, taking ownership of the slice. Entries larger
// than the whole budget are not cached. Returns the number of evictions.
func (c *Cache) Put(key Key, pix []uint8) int {
	size := int64(len(pix))
	if size > c.budget {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		c.bytes += size - int64(len(e.pix))
		e.pix = pix
		c.lru.MoveToFront(el)
	} else {
		c.entries[key] = c.lru.PushFront(&entry{key: key, pix: pix})
		c.bytes += size
	}

	evicted := 0
	for c.bytes > c.budget {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		evicted++
	}
	c.evictions.Add(uint64(evicted))
	return evicted
}

// PurgeStore drops every entry that belongs to store.
func (c *Cache) PurgeStore(store uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.entries {
		if key.Store == store {
			c.removeLocked(el)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*list.Element)
	c.lru.Init()
	c.bytes = 0
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n, b := len(c.entries), c.bytes
	c.mu.Unlock()
	return Stats{
		Len:       n,
		Bytes:     b,
		Budget:    c.budget,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.lru.Remove(el)
	delete(c.entries, e.key)
	c.bytes -= int64(len(e.pix))
}
