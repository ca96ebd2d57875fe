// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gifcodec

import (
	"image"
	"image/color"
	"image/color/palette"

	"golang.org/x/image/draw"
)

// maxColors is the size of a GIF colour table.
const maxColors = 256

// quantize converts img to a paletted image. Frames with few enough colours
// get an exact palette and survive a round trip unchanged; others are
// dithered against Plan 9. Pixels with alpha below threshold map to a
// single transparent entry, reported by the second result.
func quantize(img *image.NRGBA, threshold uint8) (*image.Paletted, bool) {
	if pm, transparent, ok := exactPalette(img, threshold); ok {
		return pm, transparent
	}
	return ditherPlan9(img, threshold)
}

func exactPalette(img *image.NRGBA, threshold uint8) (*image.Paletted, bool, bool) {
	b := img.Bounds()
	index := make(map[color.NRGBA]uint8, maxColors)
	pal := make(color.Palette, 0, maxColors)
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), nil)
	transparentIdx := -1

	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[off : off+4*b.Dx()]
		for x := 0; x < b.Dx(); x++ {
			px := row[4*x : 4*x+4]
			var idx int
			if px[3] < threshold {
				if transparentIdx < 0 {
					if len(pal) == maxColors {
						return nil, false, false
					}
					transparentIdx = len(pal)
					pal = append(pal, color.NRGBA{})
				}
				idx = transparentIdx
			} else {
				c := color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xff}
				i, ok := index[c]
				if !ok {
					if len(pal) == maxColors {
						return nil, false, false
					}
					i = uint8(len(pal)) //nolint:gosec // len(pal) < 256
					index[c] = i
					pal = append(pal, c)
				}
				idx = int(i)
			}
			pm.Pix[y*pm.Stride+x] = uint8(idx) //nolint:gosec // idx < 256
		}
	}
	pm.Palette = pal
	return pm, transparentIdx >= 0, true
}

// ditherPlan9 maps img onto the Plan 9 palette with Floyd-Steinberg error
// diffusion. When transparency is needed the last entry is given up for
// it.
func ditherPlan9(img *image.NRGBA, threshold uint8) (*image.Paletted, bool) {
	b := img.Bounds()
	r := image.Rect(0, 0, b.Dx(), b.Dy())

	transparent := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] < threshold {
			transparent = true
			break
		}
	}

	pal := palette.Plan9
	if transparent {
		pal = palette.Plan9[:maxColors-1]
	}
	pm := image.NewPaletted(r, pal)

	// Dither an opaque copy so alpha does not darken the colours.
	src := image.NewNRGBA(r)
	draw.Draw(src, r, img, b.Min, draw.Src)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	draw.FloydSteinberg.Draw(pm, r, src, image.Point{})

	if transparent {
		out := make(color.Palette, 0, maxColors)
		out = append(out, pal...)
		out = append(out, color.NRGBA{})
		pm.Palette = out
		tIdx := uint8(len(pal)) //nolint:gosec // len(pal) == 255
		for y := 0; y < r.Dy(); y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < r.Dx(); x++ {
				if img.Pix[off+4*x+3] < threshold {
					pm.Pix[y*pm.Stride+x] = tIdx
				}
			}
		}
	}
	return pm, transparent
}
