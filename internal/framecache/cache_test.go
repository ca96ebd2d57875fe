// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framecache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New(100)
	id := uuid.New()

	_, ok := c.Get(Key{Store: id, Index: 0})
	assert.False(t, ok)

	c.Put(Key{Store: id, Index: 0}, []uint8{1, 2, 3, 4})
	pix, ok := c.Get(Key{Store: id, Index: 0})
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3, 4}, pix)

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, int64(4), st.Bytes)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(8)
	id := uuid.New()
	k := func(i int) Key { return Key{Store: id, Index: i} }

	c.Put(k(0), make([]uint8, 4))
	c.Put(k(1), make([]uint8, 4))
	_, _ = c.Get(k(0)) // 1 is now the oldest

	evicted := c.Put(k(2), make([]uint8, 4))
	assert.Equal(t, 1, evicted)

	_, ok := c.Get(k(1))
	assert.False(t, ok, "frame 1 should have been evicted")
	_, ok = c.Get(k(0))
	assert.True(t, ok)
	_, ok = c.Get(k(2))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestOversizedEntryNotCached(t *testing.T) {
	c := New(4)
	c.Put(Key{Index: 0}, make([]uint8, 5))
	assert.Equal(t, 0, c.Len())
}

func TestReplaceUpdatesBytes(t *testing.T) {
	c := New(100)
	k := Key{Store: uuid.New()}
	c.Put(k, make([]uint8, 10))
	c.Put(k, make([]uint8, 20))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(20), c.Stats().Bytes)
}

func TestPurgeStore(t *testing.T) {
	c := New(0)
	a, b := uuid.New(), uuid.New()
	c.Put(Key{Store: a, Index: 0}, make([]uint8, 4))
	c.Put(Key{Store: a, Index: 1}, make([]uint8, 4))
	c.Put(Key{Store: b, Index: 0}, make([]uint8, 4))

	c.PurgeStore(a)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(4), c.Stats().Bytes)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Stats().Bytes)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(1 << 10)
	id := uuid.New()
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				k := Key{Store: id, Index: (g + i) % 16}
				if _, ok := c.Get(k); !ok {
					c.Put(k, make([]uint8, 64))
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Stats().Bytes, int64(1<<10))
}
