package anim

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Pixmap is the default Surface: a straight-alpha RGBA pixel buffer backed
// by an *image.NRGBA, so it can be handed to image/draw and
// golang.org/x/image/draw directly.
type Pixmap struct {
	img *image.NRGBA
}

var (
	_ Surface    = (*Pixmap)(nil)
	_ draw.Image = (*Pixmap)(nil)
)

// NewPixmap creates a transparent pixmap with the given dimensions.
// Non-positive dimensions produce an empty pixmap.
func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Pixmap{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// PixmapFromImage creates a pixmap holding a copy of img.
func PixmapFromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	pm := NewPixmap(b.Dx(), b.Dy())
	draw.Draw(pm.img, pm.img.Rect, img, b.Min, draw.Src)
	return pm
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int { return p.img.Rect.Dx() }

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int { return p.img.Rect.Dy() }

// Pix returns the raw NRGBA pixel data.
func (p *Pixmap) Pix() []uint8 { return p.img.Pix }

// Image returns the backing image. It shares memory with the pixmap.
func (p *Pixmap) Image() *image.NRGBA { return p.img }

// Resize reallocates the pixmap when the dimensions change. Content is not
// preserved.
func (p *Pixmap) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("anim: invalid pixmap size %dx%d", width, height)
	}
	if width == p.Width() && height == p.Height() {
		return nil
	}
	p.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Clear fills the entire pixmap with c.
func (p *Pixmap) Clear(c color.Color) {
	draw.Draw(p.img, p.img.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// NRGBAAt returns the colour of a single pixel. Out-of-bounds reads return
// transparent black.
func (p *Pixmap) NRGBAAt(x, y int) color.NRGBA { return p.img.NRGBAAt(x, y) }

// Set implements draw.Image.
func (p *Pixmap) Set(x, y int, c color.Color) { p.img.Set(x, y, c) }

// At implements image.Image.
func (p *Pixmap) At(x, y int) color.Color { return p.img.At(x, y) }

// Bounds implements image.Image.
func (p *Pixmap) Bounds() image.Rectangle { return p.img.Rect }

// ColorModel implements image.Image.
func (p *Pixmap) ColorModel() color.Model { return color.NRGBAModel }

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, p.img)
}
