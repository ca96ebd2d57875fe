package anim

import (
	"errors"
	"strconv"
)

// Sentinel errors for the anim package.
var (
	// ErrNoPatches is returned when a decoder produced no frames.
	ErrNoPatches = errors.New("anim: no frames decoded")

	// ErrInvalidCanvas is returned when the canvas size is not positive.
	ErrInvalidCanvas = errors.New("anim: invalid canvas size")

	// ErrPatchBounds is returned when a patch does not fit inside the canvas.
	ErrPatchBounds = errors.New("anim: patch outside canvas")

	// ErrPatchSize is returned when a patch's index buffer does not match its rectangle.
	ErrPatchSize = errors.New("anim: patch pixel count mismatch")

	// ErrPaletteIndex is returned when a patch pixel refers past the end of its palette.
	ErrPaletteIndex = errors.New("anim: palette index out of range")

	// ErrEmptyStore is returned when an operation needs at least one frame.
	ErrEmptyStore = errors.New("anim: frame store is empty")

	// ErrFrameOutOfRange is returned for a frame index outside the store.
	ErrFrameOutOfRange = errors.New("anim: frame index out of range")

	// ErrFrameSize is returned when a frame does not match the canvas size.
	ErrFrameSize = errors.New("anim: frame size does not match canvas")

	// ErrInvalidDelay is returned for a frame delay that is not positive.
	ErrInvalidDelay = errors.New("anim: frame delay must be positive")

	// ErrNilSurface is returned when rendering into a nil surface.
	ErrNilSurface = errors.New("anim: nil surface")

	errNilEncoder = errors.New("anim: nil encoder")
)

// DecodeError reports a failed load: bad or missing source bytes, or a
// malformed or empty patch list. Frame is -1 when no single frame is at fault.
type DecodeError struct {
	Reason string
	Frame  int
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "anim: decode"
	if e.Frame >= 0 {
		msg += " frame " + strconv.Itoa(e.Frame)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RenderError reports a target surface that could not be used.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return "anim: render: " + e.Reason + ": " + e.Err.Error()
	}
	return "anim: render: " + e.Reason
}

func (e *RenderError) Unwrap() error { return e.Err }

// EncodeError reports a failed export. Op names the failing step
// ("export", "add frame", "finish"); Frame is -1 outside per-frame steps.
type EncodeError struct {
	Op    string
	Frame int
	Err   error
}

func (e *EncodeError) Error() string {
	msg := "anim: encode: " + e.Op
	if e.Frame >= 0 {
		msg += " frame " + strconv.Itoa(e.Frame)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

func decodeErr(reason string, frame int, err error) *DecodeError {
	return &DecodeError{Reason: reason, Frame: frame, Err: err}
}
