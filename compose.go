package anim

import (
	"image"
	"image/color"
	"time"
)

// Compose flattens decoded patches into self-contained frames by replaying
// the disposal state machine. Rendering any resulting frame needs no
// knowledge of the others, which is what makes seeking and export cheap.
//
// Compose is deterministic: the same input always yields bit-identical
// frames. It fails with *DecodeError when d has no patches or any patch is
// inconsistent with the canvas.
func Compose(d *Decoded, opts ...Option) (*Store, error) {
	o := applyOptions(opts)

	if d == nil || len(d.Patches) == 0 {
		return nil, decodeErr("empty patch list", -1, ErrNoPatches)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, decodeErr("canvas is "+sizeString(d.Width, d.Height), -1, ErrInvalidCanvas)
	}
	bounds := image.Rect(0, 0, d.Width, d.Height)
	for i := range d.Patches {
		if err := validatePatch(&d.Patches[i], bounds); err != nil {
			err.Frame = i
			return nil, err
		}
	}

	c := newCanvas(d.Width, d.Height)
	frames := make([]Frame, len(d.Patches))
	for i := range d.Patches {
		p := &d.Patches[i]
		a := p.Disposal.action()

		c.dispose()
		c.prepare(a)
		drawPatch(c.img, p)

		pix := make([]uint8, len(c.img.Pix))
		copy(pix, c.img.Pix)
		frames[i] = Frame{pix: pix, delay: o.frameDelay(p.Delay)}

		c.finish(p.Rect, a)
	}

	return newStore(d.Width, d.Height, frames, d.LoopCount), nil
}

// frameDelay applies the zero-delay default and the optional floor.
func (o *options) frameDelay(d time.Duration) time.Duration {
	if d <= 0 {
		d = o.defaultDelay
	}
	if o.minDelay > 0 && d < o.minDelay {
		d = o.minDelay
	}
	return d
}

func validatePatch(p *RawPatch, canvas image.Rectangle) *DecodeError {
	if p.Rect.Empty() || !p.Rect.In(canvas) {
		return decodeErr("patch "+p.Rect.String()+" not inside canvas "+canvas.String(), 0, ErrPatchBounds)
	}
	if len(p.Pix) != p.Rect.Dx()*p.Rect.Dy() {
		return decodeErr("patch has "+itoa(len(p.Pix))+" pixels for "+p.Rect.String(), 0, ErrPatchSize)
	}
	n := len(p.Palette)
	for _, idx := range p.Pix {
		if int(idx) >= n && int(idx) != p.Transparent {
			return decodeErr("pixel index "+itoa(int(idx))+" with palette of "+itoa(n), 0, ErrPaletteIndex)
		}
	}
	return nil
}

// drawPatch expands p's indices into dst. The transparent index leaves the
// destination untouched; every other index overwrites it with an opaque
// palette colour.
func drawPatch(dst *image.NRGBA, p *RawPatch) {
	lut := paletteLUT(p.Palette)
	w := p.Rect.Dx()
	for y := 0; y < p.Rect.Dy(); y++ {
		row := p.Pix[y*w : (y+1)*w]
		off := dst.PixOffset(p.Rect.Min.X, p.Rect.Min.Y+y)
		for x, idx := range row {
			if int(idx) == p.Transparent {
				continue
			}
			c := lut[idx]
			o := off + 4*x
			dst.Pix[o+0] = c.R
			dst.Pix[o+1] = c.G
			dst.Pix[o+2] = c.B
			dst.Pix[o+3] = 0xff
		}
	}
}

// paletteLUT converts a palette to straight-alpha colours once per patch.
func paletteLUT(pal color.Palette) [256]color.NRGBA {
	var lut [256]color.NRGBA
	for i, c := range pal {
		if i >= len(lut) {
			break
		}
		lut[i] = opaque(c)
	}
	return lut
}

// opaque returns c's colour channels un-premultiplied.
func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}
