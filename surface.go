package anim

// Surface is an addressable straight-alpha RGBA pixel buffer that the
// engine may resize and write into. Displaying or persisting it is the
// caller's business.
//
// Pix returns the backing buffer in image.NRGBA layout: 4 bytes per pixel,
// rows of exactly 4*Width bytes, no padding. Writes through the returned
// slice modify the surface.
//
// Surfaces are not safe for concurrent use. Live preview and export must
// never share one.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Resize changes the surface dimensions. Existing content may be lost.
	Resize(width, height int) error

	// Pix returns the pixel buffer.
	Pix() []uint8
}

// Transform mutates a surface in place. It owns no buffer; it works on the
// caller's surface and must not keep it after returning.
type Transform func(s Surface)
