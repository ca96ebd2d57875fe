package anim

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// Frame is one fully composited image with its display duration.
// Frames are immutable once created.
type Frame struct {
	pix   []uint8
	delay time.Duration
}

// NewFrame creates a frame holding a copy of img, which must start at the
// origin of its canvas.
func NewFrame(img *image.NRGBA, delay time.Duration) Frame {
	b := img.Bounds()
	pix := make([]uint8, 4*b.Dx()*b.Dy())
	rowLen := 4 * b.Dx()
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*rowLen:(y+1)*rowLen], img.Pix[off:off+rowLen])
	}
	return Frame{pix: pix, delay: delay}
}

// Delay returns the frame's display duration.
func (f Frame) Delay() time.Duration { return f.delay }

// Store holds the composited frame sequence of one loaded asset.
// A Store is never mutated after creation and is safe for concurrent reads.
type Store struct {
	id        uuid.UUID
	width     int
	height    int
	frames    []Frame
	loopCount int
}

// NewStore builds a store from already composited frames. Every frame must
// be width×height and have a positive delay.
func NewStore(width, height int, frames ...Frame) (*Store, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidCanvas
	}
	for i, f := range frames {
		if len(f.pix) != 4*width*height {
			return nil, decodeErr("frame has wrong size", i, ErrFrameSize)
		}
		if f.delay <= 0 {
			return nil, decodeErr("frame has no delay", i, ErrInvalidDelay)
		}
	}
	return newStore(width, height, frames, 0), nil
}

func newStore(width, height int, frames []Frame, loopCount int) *Store {
	return &Store{
		id:        uuid.New(),
		width:     width,
		height:    height,
		frames:    frames,
		loopCount: loopCount,
	}
}

// ID identifies this load. Two loads of the same bytes get different IDs.
func (s *Store) ID() uuid.UUID { return s.id }

// Width returns the canvas width.
func (s *Store) Width() int { return s.width }

// Height returns the canvas height.
func (s *Store) Height() int { return s.height }

// Bounds returns the canvas rectangle.
func (s *Store) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

// Len returns the number of frames. A nil store has none.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// LoopCount returns the loop count reported by the source.
func (s *Store) LoopCount() int { return s.loopCount }

// Frame returns frame i.
func (s *Store) Frame(i int) (Frame, bool) {
	if i < 0 || i >= s.Len() {
		return Frame{}, false
	}
	return s.frames[i], true
}

// Delay returns the display duration of frame i, or 0 if i is out of range.
func (s *Store) Delay(i int) time.Duration {
	if i < 0 || i >= s.Len() {
		return 0
	}
	return s.frames[i].delay
}

// Delays returns a copy of all frame durations in order.
func (s *Store) Delays() []time.Duration {
	out := make([]time.Duration, s.Len())
	for i := range out {
		out[i] = s.frames[i].delay
	}
	return out
}

// Duration returns the length of one loop.
func (s *Store) Duration() time.Duration {
	var total time.Duration
	for i := 0; i < s.Len(); i++ {
		total += s.frames[i].delay
	}
	return total
}

// Image returns a copy of frame i as an image, or nil if i is out of range.
func (s *Store) Image(i int) *image.NRGBA {
	f, ok := s.Frame(i)
	if !ok {
		return nil
	}
	img := image.NewNRGBA(s.Bounds())
	copy(img.Pix, f.pix)
	return img
}
