// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gifcodec

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"io"
	"time"

	gif "github.com/NathanBaulch/gifx"

	"github.com/gogpu/anim"
)

// centisecond is the GIF delay unit.
const centisecond = 10 * time.Millisecond

// Decoder decodes GIF containers into raw patches.
type Decoder struct{}

var _ anim.Decoder = (*Decoder)(nil)

// NewDecoder creates a GIF decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads a GIF from r one block at a time, stopping early when ctx
// is cancelled.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*anim.Decoded, error) {
	if err := ctx.Err(); err != nil {
		return nil, &anim.DecodeError{Reason: "cancelled", Frame: -1, Err: err}
	}
	br := bufio.NewReader(r)
	scr := peekScreen(br)

	dec := gif.NewDecoder(br)
	if _, err := dec.ReadHeader(); err != nil {
		return nil, &anim.DecodeError{Reason: "gif header", Frame: -1, Err: err}
	}

	out := &anim.Decoded{Width: scr.width, Height: scr.height, LoopCount: scr.loop}
	var union image.Rectangle
	for {
		if err := ctx.Err(); err != nil {
			return nil, &anim.DecodeError{Reason: "cancelled", Frame: len(out.Patches), Err: err}
		}
		blk, err := dec.ReadBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &anim.DecodeError{Reason: "gif block", Frame: len(out.Patches), Err: err}
		}
		frm, ok := blk.(*gif.Frame)
		if !ok || frm.Image == nil {
			continue
		}
		img := frm.Image
		union = union.Union(img.Rect)
		out.Patches = append(out.Patches, anim.RawPatch{
			Rect:        img.Rect,
			Pix:         compact(img),
			Palette:     img.Palette,
			Transparent: transparentIndex(img),
			Disposal:    anim.Disposal(frm.Disposal),
			Delay:       time.Duration(frm.Delay) * centisecond,
		})
	}
	if len(out.Patches) == 0 {
		return nil, &anim.DecodeError{Reason: "gif has no images", Frame: -1, Err: anim.ErrNoPatches}
	}
	if out.Width <= 0 || out.Height <= 0 {
		out.Width, out.Height = union.Max.X, union.Max.Y
	}

	anim.Logger().Debug("gifcodec: decoded",
		"frames", len(out.Patches), "width", out.Width, "height", out.Height, "loop", out.LoopCount)
	return out, nil
}

// screen is the logical screen of a GIF and its NETSCAPE2.0 loop count
// (-1 when absent).
type screen struct {
	width, height int
	loop          int
}

// netscapeLoop is the application extension carrying the loop count,
// up to the two count bytes.
var netscapeLoop = []byte("\x21\xff\x0bNETSCAPE2.0\x03\x01")

// peekScreen reads the logical screen descriptor and, when it directly
// follows the global colour table, the loop extension. Nothing is
// consumed; a malformed header is left for the decoder to report.
func peekScreen(br *bufio.Reader) screen {
	s := screen{loop: -1}
	hdr, err := br.Peek(13)
	if err != nil {
		return s
	}
	s.width = int(binary.LittleEndian.Uint16(hdr[6:8]))
	s.height = int(binary.LittleEndian.Uint16(hdr[8:10]))

	off := 13
	if flags := hdr[10]; flags&0x80 != 0 {
		off += 3 << (flags&0x07 + 1)
	}
	ext, err := br.Peek(off + len(netscapeLoop) + 2)
	if err != nil {
		return s
	}
	ext = ext[off:]
	if string(ext[:len(netscapeLoop)]) == string(netscapeLoop) {
		s.loop = int(binary.LittleEndian.Uint16(ext[len(netscapeLoop):]))
	}
	return s
}

// compact copies img's indices into a buffer without row padding.
func compact(img *image.Paletted) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w {
		out := make([]uint8, w*h)
		copy(out, img.Pix)
		return out
	}
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return out
}

// transparentIndex recovers the transparent index from the palette: the
// decoder replaces that entry with a fully transparent colour, which no
// opaque GIF colour can be. An index past the end of the colour table pads
// the palette with transparent entries up to it, so the last one wins.
func transparentIndex(img *image.Paletted) int {
	for i := len(img.Palette) - 1; i >= 0; i-- {
		if _, _, _, a := img.Palette[i].RGBA(); a == 0 {
			return i
		}
	}
	return anim.NoTransparency
}
