package anim

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"time"
)

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
	none  = color.RGBA{}

	testPalette = color.Palette{none, red, green, blue}
)

const (
	idxClear = 0
	idxRed   = 1
	idxGreen = 2
	idxBlue  = 3
)

// fill builds a patch covering r with a single palette index.
func fill(r image.Rectangle, idx uint8, disposal Disposal, delay time.Duration) RawPatch {
	pix := make([]uint8, r.Dx()*r.Dy())
	for i := range pix {
		pix[i] = idx
	}
	return RawPatch{
		Rect:        r,
		Pix:         pix,
		Palette:     testPalette,
		Transparent: idxClear,
		Disposal:    disposal,
		Delay:       delay,
	}
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func pixelAt(s *Store, frame, x, y int) color.NRGBA {
	return s.Image(frame).NRGBAAt(x, y)
}

// delayStore builds a 1x1 store with the given delays in milliseconds.
func delayStore(ms ...int) *Store {
	frames := make([]Frame, len(ms))
	for i, d := range ms {
		frames[i] = NewFrame(image.NewNRGBA(image.Rect(0, 0, 1, 1)), time.Duration(d)*time.Millisecond)
	}
	s, err := NewStore(1, 1, frames...)
	if err != nil {
		panic(err)
	}
	return s
}

// colorStore builds a 2x2 store whose frame i is a solid colour.
func colorStore(delay time.Duration, colors ...color.RGBA) *Store {
	frames := make([]Frame, len(colors))
	for i, c := range colors {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		for y := range 2 {
			for x := range 2 {
				img.Set(x, y, c)
			}
		}
		frames[i] = NewFrame(img, delay)
	}
	s, err := NewStore(2, 2, frames...)
	if err != nil {
		panic(err)
	}
	return s
}

// fakeClock hands out a ticker whose channel the test writes to.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) ticker(i int) *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type fakeTicker struct {
	ch       chan time.Time
	stopOnce sync.Once
	stopped  chan struct{}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopOnce.Do(func() { close(t.stopped) }) }

// send delivers a tick and reports whether the driver received it.
func (t *fakeTicker) send(at time.Time) bool {
	select {
	case t.ch <- at:
		return true
	case <-t.stopped:
		return false
	case <-time.After(time.Second):
		return false
	}
}

// recordingEncoder captures what the export pipeline feeds it.
type recordingEncoder struct {
	frames    []*image.NRGBA
	delays    []time.Duration
	addErr    error
	addErrAt  int
	finishErr error
	finished  bool
}

func (e *recordingEncoder) AddFrame(img *image.NRGBA, delay time.Duration) error {
	if e.addErr != nil && len(e.frames) == e.addErrAt {
		return e.addErr
	}
	cp := image.NewNRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	e.frames = append(e.frames, cp)
	e.delays = append(e.delays, delay)
	return nil
}

func (e *recordingEncoder) Finish() ([]byte, error) {
	e.finished = true
	if e.finishErr != nil {
		return nil, e.finishErr
	}
	return []byte{byte(len(e.frames))}, nil
}

// stubDecoder returns a fixed result regardless of input.
type stubDecoder struct {
	decoded *Decoded
	err     error
	calls   int
}

func (d *stubDecoder) Decode(_ context.Context, r io.Reader) (*Decoded, error) {
	d.calls++
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return d.decoded, d.err
}

// brokenSurface refuses to be resized.
type brokenSurface struct{ w, h int }

func (b *brokenSurface) Width() int            { return b.w }
func (b *brokenSurface) Height() int           { return b.h }
func (b *brokenSurface) Resize(int, int) error { return errors.New("context lost") }
func (b *brokenSurface) Pix() []uint8          { return nil }
