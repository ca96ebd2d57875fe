package anim

import "time"

// Default timing values.
const (
	// DefaultDelay replaces a zero frame delay reported by the source.
	// Some encoders write 0 meaning "as fast as possible"; browsers and most
	// viewers show such frames for 100ms, and so do we.
	DefaultDelay = 100 * time.Millisecond

	// DefaultTickInterval is the refresh period of the playback driver (60Hz).
	DefaultTickInterval = time.Second / 60
)

// Option configures Compose, NewPlayer and New.
// Each constructor reads only the fields it needs.
//
// Example:
//
//	a := anim.New(gifcodec.NewDecoder(),
//	    anim.WithDefaultDelay(50*time.Millisecond),
//	    anim.WithFrameCallback(func(i int) { redraw(i) }))
type Option func(*options)

// options holds optional configuration shared by the engine components.
type options struct {
	defaultDelay time.Duration
	minDelay     time.Duration
	tickInterval time.Duration
	clock        Clock
	onFrame      func(index int)
}

// defaultOptions returns the default options.
func defaultOptions() options {
	return options{
		defaultDelay: DefaultDelay,
		tickInterval: DefaultTickInterval,
		clock:        realClock{},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithDefaultDelay sets the delay used for frames whose source delay is zero.
// Non-positive values are ignored.
func WithDefaultDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.defaultDelay = d
		}
	}
}

// WithMinDelay clamps positive frame delays below d up to d.
// It is disabled by default so source timing is preserved exactly.
func WithMinDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.minDelay = d
		}
	}
}

// WithTickInterval sets how often the playback driver wakes up.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// WithClock replaces the wall clock driving playback. Tests use it to feed
// tick timestamps deterministically.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithFrameCallback registers fn to be called with the new frame index
// whenever a tick moves playback to another frame. fn runs on the playback
// goroutine, outside the player lock; it may call Pause or Reset but must
// not call Close.
func WithFrameCallback(fn func(index int)) Option {
	return func(o *options) {
		o.onFrame = fn
	}
}
