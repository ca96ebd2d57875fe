package anim

import (
	"context"
	"slices"
	"sync"
	"time"
)

// State is a snapshot of playback state.
type State struct {
	Index     int
	Playing   bool
	CarryOver time.Duration
}

// Stats holds playback counters.
type Stats struct {
	Ticks          uint64 // Ticks that advanced time while playing.
	FramesAdvanced uint64 // Total frame changes.
	Wraps          uint64 // Times playback wrapped from the last frame to the first.
	MaxSkip        int    // Most frames advanced by a single tick.
}

// Player advances a frame cursor over a Store using each frame's delay.
//
// Time is accumulated in a carry-over so that no elapsed time is lost
// between ticks, and a tick covering several frame delays fast-forwards
// through all of them. Playback loops forever.
//
// Play starts a driver goroutine fed by the clock's ticker. Pause, Reset and
// Load cancel it synchronously: a tick already queued when they return is
// discarded. Close also waits for every driver started so far to exit,
// including ones already cancelled by Pause, Reset or Load whose frame
// callback is still running.
//
// Player is safe for concurrent use.
type Player struct {
	mu      sync.Mutex
	store   *Store
	index   int
	playing bool
	carry   time.Duration
	stats   Stats

	// gen fences ticks: the driver started for generation g may only apply
	// ticks while gen == g.
	gen    uint64
	cancel context.CancelFunc
	// drivers holds the done channels of drivers that may still be running.
	drivers []chan struct{}

	clock    Clock
	interval time.Duration
	onFrame  func(int)
}

// NewPlayer creates a stopped player with an empty store.
func NewPlayer(opts ...Option) *Player {
	o := applyOptions(opts)
	return &Player{
		clock:    o.clock,
		interval: o.tickInterval,
		onFrame:  o.onFrame,
	}
}

// Load installs a new store and resets playback to (0, stopped, 0).
func (p *Player) Load(s *Store) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.store = s
	p.resetLocked()
}

// Store returns the store being played.
func (p *Player) Store() *Store {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store
}

// Play starts playback. It is a no-op when already playing or when the
// store is empty.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.store.Len() == 0 {
		return
	}
	p.playing = true
	p.gen++

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.drivers = append(slices.DeleteFunc(p.drivers, exited), done)
	go p.drive(ctx, p.gen, p.clock.Now(), p.clock.NewTicker(p.interval), done)
}

// Pause stops playback, keeping the current frame and carry-over.
// It is a no-op when not playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.stopLocked()
	p.playing = false
}

// Reset stops playback and rewinds to frame 0 with no carry-over.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.resetLocked()
}

// Close stops playback and waits for all driver goroutines to exit.
// It must not be called from a frame callback.
func (p *Player) Close() {
	p.mu.Lock()
	p.stopLocked()
	p.playing = false
	pending := p.drivers
	p.drivers = nil
	p.mu.Unlock()
	for _, done := range pending {
		<-done
	}
}

// Seek jumps to frame i and clears the carry-over. Playing state is kept.
func (p *Player) Seek(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= p.store.Len() {
		return ErrFrameOutOfRange
	}
	p.index = i
	p.carry = 0
	return nil
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Index: p.index, Playing: p.playing, CarryOver: p.carry}
}

// Stats returns a snapshot of the playback counters.
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Tick advances playback by elapsed. It is a no-op when stopped or when the
// store is empty, so a tick racing a pending load is harmless.
func (p *Player) Tick(elapsed time.Duration) {
	p.mu.Lock()
	moved := p.tickLocked(elapsed)
	idx, cb := p.index, p.onFrame
	p.mu.Unlock()
	if moved && cb != nil {
		cb(idx)
	}
}

// current returns the store and frame index under one lock.
func (p *Player) current() (*Store, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store, p.index
}

// tickLocked consumes elapsed time frame by frame and reports whether the
// frame changed. A loop rather than a single step, so that a long stall
// (a suspended process, a slow consumer) fast-forwards instead of dropping
// time.
func (p *Player) tickLocked(elapsed time.Duration) bool {
	n := p.store.Len()
	if !p.playing || n == 0 || elapsed <= 0 {
		return false
	}
	p.stats.Ticks++
	p.carry += elapsed

	start := p.index
	skipped := 0
	for {
		d := p.store.frames[p.index].delay
		if p.carry < d {
			break
		}
		p.carry -= d
		p.index++
		if p.index == n {
			p.index = 0
			p.stats.Wraps++
		}
		skipped++
	}

	if skipped == 0 {
		return false
	}
	p.stats.FramesAdvanced += uint64(skipped)
	if skipped > p.stats.MaxSkip {
		p.stats.MaxSkip = skipped
	}
	if skipped > 1 {
		Logger().Debug("anim: playback fast-forward",
			"from", start, "to", p.index, "frames", skipped, "elapsed", elapsed)
	}
	return p.index != start
}

// stopLocked cancels the current driver goroutine. It does not wait; the
// driver stays in p.drivers until Close or a later Play sees it exit.
func (p *Player) stopLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func exited(done chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

func (p *Player) resetLocked() {
	p.index = 0
	p.playing = false
	p.carry = 0
}

// drive turns ticker timestamps into elapsed durations for one generation.
func (p *Player) drive(ctx context.Context, gen uint64, last time.Time, t Ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C():
			elapsed := now.Sub(last)
			if elapsed < 0 {
				elapsed = 0
			}
			last = now

			p.mu.Lock()
			if p.gen != gen {
				p.mu.Unlock()
				return
			}
			moved := p.tickLocked(elapsed)
			idx, cb := p.index, p.onFrame
			p.mu.Unlock()

			if moved && cb != nil {
				cb(idx)
			}
		}
	}
}
