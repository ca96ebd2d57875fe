// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gifcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	gif "github.com/NathanBaulch/gifx"

	"github.com/gogpu/anim"
)

// Sentinel errors for the encoder.
var (
	// ErrNoFrames is returned by Finish when no frame was added.
	ErrNoFrames = errors.New("gifcodec: no frames to encode")

	// ErrFrameSize is returned when a frame differs in size from the first one.
	ErrFrameSize = errors.New("gifcodec: frame size differs from first frame")

	// ErrFinished is returned when the encoder is used after Finish.
	ErrFinished = errors.New("gifcodec: encoder already finished")
)

// maxDelay is the largest delay a GIF can store.
const maxDelay = 0xffff

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithLoopCount sets the loop count written to the file
// (0 = forever, -1 = play once).
func WithLoopCount(n int) EncoderOption {
	return func(e *Encoder) { e.loop = n }
}

// WithAlphaThreshold sets the alpha below which a pixel becomes
// transparent. GIF has no partial transparency. Default 128.
func WithAlphaThreshold(a uint8) EncoderOption {
	return func(e *Encoder) { e.alphaThreshold = a }
}

// Encoder streams full-canvas frames into an animated GIF. Each frame is
// quantized and written when it is added, so only the encoded bytes are
// held. It is single-use: create a new one per export.
type Encoder struct {
	buf            bytes.Buffer
	w              *gif.Encoder
	frames         int
	loop           int
	size           image.Point
	alphaThreshold uint8
	finished       bool
}

var _ anim.Encoder = (*Encoder)(nil)

// NewEncoder creates a GIF encoder.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{alphaThreshold: 128}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddFrame quantizes img and writes it with the given delay. The first
// frame fixes the canvas size and supplies the global colour table.
func (e *Encoder) AddFrame(img *image.NRGBA, delay time.Duration) error {
	if e.finished {
		return ErrFinished
	}
	size := img.Bounds().Size()
	if e.frames > 0 && size != e.size {
		return fmt.Errorf("%w: got %v, want %v", ErrFrameSize, size, e.size)
	}
	if e.frames == 0 && (size.X <= 0 || size.Y <= 0) {
		return fmt.Errorf("gifcodec: empty frame %v", img.Bounds())
	}

	pm, transparent := quantize(img, e.alphaThreshold)
	if e.frames == 0 {
		e.size = size
		e.w = gif.NewEncoder(&e.buf)
		cfg := image.Config{Width: size.X, Height: size.Y, ColorModel: pm.Palette}
		if err := e.w.WriteHeader(cfg, e.loop); err != nil {
			return fmt.Errorf("gifcodec: write header: %w", err)
		}
	}

	disposal := byte(anim.DisposalNone)
	if transparent {
		// Clear before the next frame so its transparent pixels do not
		// show this one through.
		disposal = byte(anim.DisposalBackground)
	}
	frm := &gif.Frame{Image: pm, Delay: centiseconds(delay), Disposal: disposal}
	if err := e.w.WriteFrame(frm); err != nil {
		return fmt.Errorf("gifcodec: write frame %d: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Finish writes the trailer and returns the encoded GIF. The encoder
// cannot be reused.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, ErrFinished
	}
	e.finished = true
	if e.frames == 0 {
		return nil, ErrNoFrames
	}

	if err := e.w.WriteTrailer(); err != nil {
		return nil, fmt.Errorf("gifcodec: write trailer: %w", err)
	}
	if err := e.w.Flush(); err != nil {
		return nil, fmt.Errorf("gifcodec: flush: %w", err)
	}
	anim.Logger().Debug("gifcodec: encoded", "frames", e.frames, "bytes", e.buf.Len())
	return e.buf.Bytes(), nil
}

// centiseconds rounds d to the GIF delay unit, keeping at least 1.
func centiseconds(d time.Duration) int {
	cs := int((d + centisecond/2) / centisecond)
	if cs < 1 {
		cs = 1
	}
	if cs > maxDelay {
		cs = maxDelay
	}
	return cs
}
