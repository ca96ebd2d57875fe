package anim

import (
	"context"
	"image"
	"io"
	"time"
)

// Decoder turns container bytes into patches. Any failure should be
// reported as a *DecodeError with a human-readable reason.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*Decoded, error)
}

// Encoder accumulates frames and serializes them into one asset.
// Palette quantization and container layout are entirely its business.
//
// An Encoder is used for a single export.
type Encoder interface {
	// AddFrame appends a frame. img is only valid during the call; the
	// encoder must copy what it keeps.
	AddFrame(img *image.NRGBA, delay time.Duration) error

	// Finish serializes all accumulated frames.
	Finish() ([]byte, error)
}
