package anim

import (
	"image"
	"testing"
	"time"

	"golang.org/x/image/draw"
)

func benchStore(b *testing.B, w, h, n int) *Store {
	b.Helper()
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = NewFrame(image.NewNRGBA(image.Rect(0, 0, w, h)), 40*time.Millisecond)
	}
	s, err := NewStore(w, h, frames...)
	if err != nil {
		b.Fatal(err)
	}
	return s
}

func BenchmarkRenderFrame(b *testing.B) {
	sizes := []struct {
		name string
		w, h int
	}{
		{"128x128", 128, 128},
		{"480x270", 480, 270},
		{"1280x720", 1280, 720},
	}
	for _, sz := range sizes {
		b.Run(sz.name, func(b *testing.B) {
			s := benchStore(b, sz.w, sz.h, 4)
			target := NewPixmap(sz.w, sz.h)
			b.SetBytes(int64(4 * sz.w * sz.h))
			i := 0
			for b.Loop() {
				RenderFrame(s, target, i%4, nil)
				i++
			}
		})
	}
}

func BenchmarkRenderScaled(b *testing.B) {
	s := benchStore(b, 480, 270, 1)
	dst := image.NewNRGBA(image.Rect(0, 0, 160, 90))
	for _, sc := range []struct {
		name   string
		scaler draw.Scaler
	}{
		{"NearestNeighbor", draw.NearestNeighbor},
		{"ApproxBiLinear", draw.ApproxBiLinear},
		{"CatmullRom", draw.CatmullRom},
	} {
		b.Run(sc.name, func(b *testing.B) {
			for b.Loop() {
				RenderScaled(s, dst, 0, sc.scaler)
			}
		})
	}
}

func BenchmarkPlayerTick(b *testing.B) {
	p := NewPlayer(WithClock(newFakeClock()))
	p.Load(delayStore(10, 20, 30, 40))
	p.Play()
	defer p.Close()
	for b.Loop() {
		p.Tick(time.Second / 60)
	}
}
