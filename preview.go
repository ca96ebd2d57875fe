package anim

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/anim/internal/framecache"
)

// Preview renders the player's current frame through a transform, keeping
// each transformed frame in a byte-budgeted cache so an expensive effect
// runs once per frame instead of once per refresh.
//
// Only deterministic transforms should be previewed this way: a cached
// frame is reused until SetTransform is called or the store changes. When
// a different store is rendered, the frames of the previous one are purged.
type Preview struct {
	player *Player
	cache  *framecache.Cache

	mu        sync.Mutex
	transform Transform
	gen       uint64
	store     uuid.UUID // store of the last rendered frame
}

// NewPreview creates a cached preview of p. budget is the cache size in
// bytes; 0 selects framecache.DefaultBudget.
func NewPreview(p *Player, transform Transform, budget int64) *Preview {
	return &Preview{
		player:    p,
		cache:     framecache.New(budget),
		transform: transform,
	}
}

// SetTransform replaces the transform and drops every cached frame.
func (v *Preview) SetTransform(t Transform) {
	v.mu.Lock()
	v.transform = t
	v.gen++
	v.cache.Clear()
	v.mu.Unlock()
}

// Render draws the current frame, transformed, into target.
func (v *Preview) Render(target Surface) bool {
	s, idx := v.player.current()
	return v.RenderFrame(s, target, idx)
}

// RenderFrame draws frame index of s, transformed, into target.
func (v *Preview) RenderFrame(s *Store, target Surface, index int) bool {
	if s.Len() == 0 || index < 0 || index >= s.Len() {
		return false
	}
	key := framecache.Key{Store: s.ID(), Index: index}
	v.switchStore(key.Store)

	if pix, ok := v.cache.Get(key); ok && target != nil {
		if target.Width() != s.width || target.Height() != s.height {
			if err := target.Resize(s.width, s.height); err != nil {
				Logger().Warn("anim: preview render failed", "frame", index,
					"err", &RenderError{Reason: "resize", Err: err})
				return false
			}
		}
		if dst := target.Pix(); len(dst) >= len(pix) {
			copy(dst, pix)
			return true
		}
	}

	v.mu.Lock()
	t, gen := v.transform, v.gen
	v.mu.Unlock()
	if !RenderFrame(s, target, index, t) {
		return false
	}

	// A transform may resize the target; only cache canvas-sized results.
	if target.Width() == s.width && target.Height() == s.height {
		pix := make([]uint8, 4*s.width*s.height)
		copy(pix, target.Pix())
		v.mu.Lock()
		if gen == v.gen {
			if n := v.cache.Put(key, pix); n > 0 {
				Logger().Debug("anim: preview cache evicted frames", "count", n)
			}
		}
		v.mu.Unlock()
	}
	return true
}

// switchStore records id as the current store and purges the frames of the
// previous one.
func (v *Preview) switchStore(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id == v.store {
		return
	}
	if v.store != uuid.Nil {
		// Renders of the old store still in flight must not cache.
		v.gen++
		v.cache.PurgeStore(v.store)
		Logger().Debug("anim: preview purged frames of previous store", "store", v.store)
	}
	v.store = id
}

// CacheStats returns statistics of the frame cache.
func (v *Preview) CacheStats() framecache.Stats {
	return v.cache.Stats()
}
