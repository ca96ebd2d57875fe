package anim

import (
	"image"
	"image/color"
	"time"
)

// Disposal is the per-frame instruction telling how the canvas is treated
// before the next frame is drawn.
type Disposal uint8

// Disposal codes as stored in the container.
const (
	DisposalUnspecified Disposal = 0
	DisposalNone        Disposal = 1
	DisposalBackground  Disposal = 2
	DisposalPrevious    Disposal = 3
)

func (d Disposal) String() string {
	switch d {
	case DisposalUnspecified:
		return "unspecified"
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return "reserved"
	}
}

// NoTransparency marks a patch without a transparent palette index.
const NoTransparency = -1

// RawPatch is one decoded unit produced by a Decoder: a sub-rectangle of
// palette indices placed within the canvas.
type RawPatch struct {
	// Rect is the placement and size of the patch in canvas coordinates.
	Rect image.Rectangle

	// Pix holds palette indices row by row, Rect.Dx()*Rect.Dy() entries.
	Pix []uint8

	// Palette is the colour table Pix indexes into.
	Palette color.Palette

	// Transparent is the "no paint" palette index, or NoTransparency.
	Transparent int

	// Disposal tells how to treat this patch's area before the next one.
	Disposal Disposal

	// Delay is the display duration as reported by the source; 0 means
	// unspecified.
	Delay time.Duration
}

// Decoded is the output of a Decoder.
type Decoded struct {
	Width   int
	Height  int
	Patches []RawPatch

	// LoopCount is the container's loop count (0 = forever, -1 = play once).
	// Playback always loops; exporters may preserve it.
	LoopCount int
}
