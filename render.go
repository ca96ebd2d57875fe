package anim

import (
	"image"

	"golang.org/x/image/draw"
)

// RenderFrame copies frame index of s into target and then runs transform
// on target, if given.
//
// target is resized to the canvas size when it differs. RenderFrame returns
// false, without touching target, when the store is empty or index is out
// of range; it also returns false when target is unusable, logging the
// RenderError. It never panics on these conditions because it runs on
// every refresh tick and a transient empty state must not stop playback.
func RenderFrame(s *Store, target Surface, index int, transform Transform) bool {
	if err := renderFrame(s, target, index, transform); err != nil {
		if re, ok := err.(*RenderError); ok {
			Logger().Warn("anim: render failed", "frame", index, "err", re)
		}
		return false
	}
	return true
}

func renderFrame(s *Store, target Surface, index int, transform Transform) error {
	f, ok := s.Frame(index)
	if !ok {
		if s.Len() == 0 {
			return ErrEmptyStore
		}
		return ErrFrameOutOfRange
	}
	if target == nil {
		return &RenderError{Reason: "no target", Err: ErrNilSurface}
	}
	if target.Width() != s.width || target.Height() != s.height {
		if err := target.Resize(s.width, s.height); err != nil {
			return &RenderError{Reason: "resize to " + sizeString(s.width, s.height), Err: err}
		}
	}
	pix := target.Pix()
	if len(pix) < len(f.pix) {
		return &RenderError{Reason: "surface buffer too small for " + sizeString(s.width, s.height)}
	}
	copy(pix, f.pix)
	if transform != nil {
		transform(target)
	}
	return nil
}

// RenderScaled draws frame index of s into dst, scaled to dst's bounds with
// scaler (draw.NearestNeighbor when nil). It is meant for thumbnails and
// previews at sizes other than the canvas.
func RenderScaled(s *Store, dst draw.Image, index int, scaler draw.Scaler) bool {
	src := s.Image(index)
	if src == nil || dst == nil || dst.Bounds().Empty() {
		return false
	}
	if scaler == nil {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return true
}

// Render draws the player's current frame into target.
func (p *Player) Render(target Surface, transform Transform) bool {
	s, idx := p.current()
	return RenderFrame(s, target, idx, transform)
}

// imageOf views a surface as an NRGBA image without copying.
func imageOf(s Surface) *image.NRGBA {
	if pm, ok := s.(*Pixmap); ok {
		return pm.img
	}
	return &image.NRGBA{
		Pix:    s.Pix(),
		Stride: 4 * s.Width(),
		Rect:   image.Rect(0, 0, s.Width(), s.Height()),
	}
}
