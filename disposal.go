package anim

import "image"

// disposeAction is what the compositor does to the working canvas after a
// patch has been shown and before the next one is drawn.
type disposeAction uint8

const (
	actionLeave disposeAction = iota
	actionRestoreBackground
	actionRestorePrevious
)

// action maps a container disposal code to a compositor action.
// Codes 4-7 are reserved and treated like "do not dispose".
func (d Disposal) action() disposeAction {
	switch d {
	case DisposalBackground:
		return actionRestoreBackground
	case DisposalPrevious:
		return actionRestorePrevious
	default:
		return actionLeave
	}
}

// canvas is the working buffer of one Compose pass together with the
// disposal context: the previous patch, its action and the snapshot taken
// before it was drawn.
type canvas struct {
	img *image.NRGBA

	prevRect   image.Rectangle
	prevAction disposeAction
	hasPrev    bool

	snapshot []uint8
}

func newCanvas(width, height int) *canvas {
	return &canvas{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// dispose applies the previous patch's action.
func (c *canvas) dispose() {
	if !c.hasPrev {
		return
	}
	switch c.prevAction {
	case actionRestoreBackground:
		c.clear(c.prevRect)
	case actionRestorePrevious:
		if c.snapshot != nil {
			copy(c.img.Pix, c.snapshot)
		}
	}
}

// clear sets r to fully transparent.
func (c *canvas) clear(r image.Rectangle) {
	r = r.Intersect(c.img.Rect)
	rowLen := 4 * r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := c.img.PixOffset(r.Min.X, y)
		clear(c.img.Pix[off : off+rowLen])
	}
}

// prepare records the snapshot the next dispose may need. The canvas is
// only copied when the upcoming patch asks to be restored to previous.
func (c *canvas) prepare(a disposeAction) {
	if a != actionRestorePrevious {
		return
	}
	if c.snapshot == nil {
		c.snapshot = make([]uint8, len(c.img.Pix))
	}
	copy(c.snapshot, c.img.Pix)
}

// finish remembers p's disposal context for the next iteration.
func (c *canvas) finish(rect image.Rectangle, a disposeAction) {
	c.prevRect = rect
	c.prevAction = a
	c.hasPrev = true
}
