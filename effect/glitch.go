// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package effect

import (
	"cmp"
	"math/rand"
	"slices"

	"github.com/gogpu/anim"
	"github.com/gogpu/anim/internal/parallel"
)

// PixelSortOptions configures sorting of dark pixel runs.
type PixelSortOptions struct {
	// Intensity in [0,1]; runs shorter than Intensity*100 pixels are kept.
	Intensity float64 `yaml:"intensity"`
	// Threshold in [0,1]; pixels whose key exceeds Threshold*255 end a run.
	Threshold float64 `yaml:"threshold"`
	// Vertical sorts columns instead of rows.
	Vertical bool `yaml:"vertical"`
	// Channel is the sort key (0=R, 1=G, 2=B). Nil sorts by brightness.
	Channel *int `yaml:"channel"`
}

// DataBendOptions configures chunk-wise mangling of the pixel buffer.
type DataBendOptions struct {
	// Amount in [0,1]; 1 performs 200 operations.
	Amount float64 `yaml:"amount"`
	// Mode is 0=duplicate, 1=reverse, 2=shift, 3=scramble. Nil picks one
	// per operation.
	Mode *int `yaml:"mode"`
	// ChunkSize in [0,1] scales the largest chunk up to 500 bytes. Nil is 0.5.
	ChunkSize *float64 `yaml:"chunkSize"`
	// Channel limits the effect to one channel (0..3). Nil touches all four.
	Channel *int `yaml:"channel"`
}

// ByteCorruptOptions configures raw byte corruption.
type ByteCorruptOptions struct {
	// Amount in [0,1]; at most 5% of the bytes are corrupted.
	Amount float64 `yaml:"amount"`
	// Mode is 0=random byte, 1=bit flip, 2=zero, 3=max. Nil picks one.
	Mode *int `yaml:"mode"`
	// BlockSize is the number of consecutive bytes per corruption. 0 is 1.
	BlockSize int `yaml:"blockSize"`
	// Structured corrupts at an even stride instead of random offsets.
	Structured bool `yaml:"structured"`
}

// ChunkSwapOptions configures swapping of byte chunks.
type ChunkSwapOptions struct {
	// Amount in [0,1]; 1 performs 10 swaps.
	Amount float64 `yaml:"amount"`
	// ChunkSize in [0,1] scales a base chunk of 5% of the pixel count. Nil
	// is 0.5.
	ChunkSize *float64 `yaml:"chunkSize"`
	// PreserveAlpha leaves alpha bytes in place.
	PreserveAlpha bool `yaml:"preserveAlpha"`
}

// BinaryXorOptions configures XOR with a repeating byte pattern.
type BinaryXorOptions struct {
	// Pattern to XOR with. Empty draws int(8*Strength)+1 random bytes.
	Pattern []byte `yaml:"pattern"`
	// Strength in [0,1] scales every pattern byte.
	Strength float64 `yaml:"strength"`
	// Mode is 0=whole buffer, 1=horizontal bands, 2=vertical bands,
	// 3=8x8 grid of blocks.
	Mode int `yaml:"mode"`
}

// BlendMode selects how Blend combines two pixels.
type BlendMode int

// Blend modes.
const (
	BlendMix BlendMode = iota
	BlendDifference
	BlendMultiply
	BlendScreen
	BlendOverlay
)

// BlendOptions configures blending with a secondary image, which is tiled
// over the frame.
type BlendOptions struct {
	Mode BlendMode `yaml:"mode"`
	// Amount in [0,1] mixes the blended colour over the original.
	Amount  float64 `yaml:"amount"`
	OffsetX int     `yaml:"offsetX"`
	OffsetY int     `yaml:"offsetY"`
	// Image is a path to the secondary image. Callers load it into Source.
	Image string `yaml:"image"`
	// Source is the secondary image. Blend is skipped while it is nil.
	Source anim.Surface `yaml:"-"`
}

// sortKey returns the pixel sort key of the pixel at pix[0:4].
func sortKey(p []uint8, channel *int) uint8 {
	if channel != nil && *channel >= 0 && *channel < 3 {
		return p[*channel]
	}
	return uint8((uint16(p[0]) + uint16(p[1]) + uint16(p[2])) / 3)
}

// PixelSort sorts runs of pixels whose key stays at or below the threshold.
// A pixel above the threshold, or the last pixel of a line, ends a run; the
// run before it is sorted by key when it is at least Intensity*100 pixels
// long. Lines are rows, or columns when Vertical is set.
func PixelSort(pix []uint8, width int, o PixelSortOptions) {
	if width <= 0 || len(pix) < 4*width {
		return
	}
	height := len(pix) / (4 * width)
	threshold := uint8(o.Threshold * 255)
	minRun := int(o.Intensity * 100)

	// at maps the i-th pixel of line n to its byte offset.
	at := func(n, i int) int { return 4 * (n*width + i) }
	lines, length := height, width
	if o.Vertical {
		at = func(n, i int) int { return 4 * (i*width + n) }
		lines, length = width, height
	}

	parallel.Default().Rows(lines, func(n0, n1 int) {
		var run [][4]uint8
		for n := n0; n < n1; n++ {
			start := 0
			for i := range length {
				if sortKey(pix[at(n, i):], o.Channel) <= threshold && i != length-1 {
					continue
				}
				if i > start && i-start >= minRun {
					run = run[:0]
					for j := start; j < i; j++ {
						off := at(n, j)
						run = append(run, [4]uint8(pix[off:off+4]))
					}
					slices.SortStableFunc(run, func(a, b [4]uint8) int {
						return cmp.Compare(sortKey(a[:], o.Channel), sortKey(b[:], o.Channel))
					})
					for j, p := range run {
						copy(pix[at(n, start+j):], p[:])
					}
				}
				start = i + 1
			}
		}
	})
}

// DataBend performs int(amount*200) random chunk operations on pix. Chunks
// are pixel aligned and between 16 and ChunkSize*500 bytes long.
func DataBend(pix []uint8, amount float64, o DataBendOptions, rng *rand.Rand) {
	iterations := int(amount * 200)
	chunk := 0.5
	if o.ChunkSize != nil {
		chunk = *o.ChunkSize
	}
	const minChunk = 16
	maxChunk := max(int(chunk*500), minChunk+1)

	channels := []int{0, 1, 2, 3}
	if o.Channel != nil && *o.Channel >= 0 && *o.Channel < 4 {
		channels = []int{*o.Channel}
	}
	var tmp []uint8

	for range iterations {
		size := minChunk + rng.Intn(maxChunk-minChunk)
		size -= size % 4
		maxStart := len(pix) - 2*size
		if maxStart < 4 {
			continue
		}
		pos := rng.Intn(maxStart)
		pos -= pos % 4

		var mode int
		if o.Mode != nil {
			mode = *o.Mode
		} else {
			mode = rng.Intn(4)
		}

		tmp = append(tmp[:0], pix[pos:pos+size]...)
		switch mode {
		case 0: // duplicate into the following chunk
			for i := 0; i < size; i += 4 {
				for _, ch := range channels {
					pix[pos+size+i+ch] = tmp[i+ch]
				}
			}
		case 1: // reverse
			for i := 0; i < size/8; i++ {
				a, b := pos+4*i, pos+size-4-4*i
				for _, ch := range channels {
					pix[a+ch], pix[b+ch] = pix[b+ch], pix[a+ch]
				}
			}
		case 2: // rotate left
			shift := 4 + rng.Intn(size-4)
			shift -= shift % 4
			for i := 0; i < size; i += 4 {
				src := (i + shift) % size
				for _, ch := range channels {
					pix[pos+i+ch] = tmp[src+ch]
				}
			}
		default: // scramble
			perm := rng.Perm(size / 4)
			for i, j := range perm {
				for _, ch := range channels {
					pix[pos+4*i+ch] = tmp[4*j+ch]
				}
			}
		}
	}
}

// ByteCorrupt corrupts up to min(amount*10%, 5%) of the bytes of pix,
// alpha included. Structured corruption hits 70% of evenly spaced blocks
// with a single mode; otherwise blocks start at random offsets and each
// picks its own mode.
func ByteCorrupt(pix []uint8, amount float64, o ByteCorruptOptions, rng *rand.Rand) {
	n := int(float64(len(pix)) * min(amount*0.1, 0.05))
	if n <= 0 {
		return
	}
	block := max(o.BlockSize, 1)
	pickMode := func() int {
		if o.Mode != nil {
			return *o.Mode
		}
		return rng.Intn(4)
	}
	corrupt := func(start, mode int) {
		for p := start; p < min(start+block, len(pix)); p++ {
			switch mode {
			case 1:
				pix[p] ^= 1 << rng.Intn(8)
			case 2:
				pix[p] = 0
			case 3:
				pix[p] = 255
			default:
				pix[p] = uint8(rng.Intn(256))
			}
		}
	}

	if o.Structured {
		stride := max(len(pix)/n, 1)
		mode := pickMode()
		for i := range n {
			if rng.Float64() < 0.7 {
				corrupt((i*stride)%len(pix), mode)
			}
		}
		return
	}
	for range n {
		pos := rng.Intn(len(pix))
		corrupt(pos, pickMode())
	}
}

// ChunkSwap swaps int(amount*10) pairs of pixel-aligned byte chunks.
func ChunkSwap(pix []uint8, width int, amount float64, o ChunkSwapOptions, rng *rand.Rand) {
	if width <= 0 {
		return
	}
	height := len(pix) / 4 / width
	factor := 0.5
	if o.ChunkSize != nil {
		factor = *o.ChunkSize
	}
	size := int(float64(width*height/20) * factor)
	size = min(max(size, 16), len(pix)/8)

	for range int(amount * 10) {
		maxStart := len(pix) - 2*size
		if maxStart < 4 {
			continue
		}
		p1 := rng.Intn(maxStart)
		p1 -= p1 % 4
		p2 := rng.Intn(maxStart)
		p2 -= p2 % 4
		for i := range size {
			if o.PreserveAlpha && i%4 == 3 {
				continue
			}
			pix[p1+i], pix[p2+i] = pix[p2+i], pix[p1+i]
		}
	}
}

// BinaryXor XORs pix with a pattern scaled by strength. Mode 0 covers every
// byte; band and block modes leave alpha alone.
func BinaryXor(pix []uint8, width int, o BinaryXorOptions, rng *rand.Rand) {
	if width <= 0 {
		return
	}
	pattern := o.Pattern
	if len(pattern) == 0 {
		pattern = make([]byte, int(8*o.Strength)+1)
		for i := range pattern {
			pattern[i] = byte(rng.Intn(256))
		}
	}
	s := uint16(o.Strength * 255)
	xv := func(k int) uint8 { return uint8(uint16(pattern[k%len(pattern)]) * s / 255) }
	height := len(pix) / 4 / width

	rgb := func(off int, v uint8) {
		pix[off] ^= v
		pix[off+1] ^= v
		pix[off+2] ^= v
	}
	switch o.Mode {
	case 0:
		for i := range pix {
			pix[i] ^= xv(i)
		}
	case 1:
		band := max(height/len(pattern), 1)
		for y := range height {
			v := xv(y / band)
			for x := range width {
				rgb(4*(y*width+x), v)
			}
		}
	case 2:
		band := max(width/len(pattern), 1)
		for y := range height {
			for x := range width {
				rgb(4*(y*width+x), xv(x/band))
			}
		}
	case 3:
		bw, bh := max(width/8, 1), max(height/8, 1)
		for y := range height {
			for x := range width {
				rgb(4*(y*width+x), xv((y/bh)*8+x/bw))
			}
		}
	}
}

// Blend combines the colour channels of pix with src, which is tiled with
// the given offset, and mixes the result over the original by o.Amount.
// Alpha is kept.
func Blend(pix []uint8, width int, src anim.Surface, o BlendOptions) {
	sw, sh := src.Width(), src.Height()
	spix := src.Pix()
	if width <= 0 || sw <= 0 || sh <= 0 || len(spix) < 4*sw*sh {
		return
	}
	height := len(pix) / 4 / width
	amt := o.Amount
	mix := func(blended, orig uint8) uint8 {
		return uint8(float64(blended)*amt + float64(orig)*(1-amt))
	}
	op := blendFunc(o.Mode)
	if op == nil {
		return
	}

	parallel.Default().Rows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			sy := ((y+o.OffsetY)%sh + sh) % sh
			for x := range width {
				sx := ((x+o.OffsetX)%sw + sw) % sw
				d := pix[4*(y*width+x):]
				s := spix[4*(sy*sw+sx):]
				for c := range 3 {
					d[c] = mix(op(d[c], s[c]), d[c])
				}
			}
		}
	})
}

func blendFunc(m BlendMode) func(p, s uint8) uint8 {
	switch m {
	case BlendMix:
		return func(_, s uint8) uint8 { return s }
	case BlendDifference:
		return func(p, s uint8) uint8 {
			if p > s {
				return p - s
			}
			return s - p
		}
	case BlendMultiply:
		return func(p, s uint8) uint8 { return uint8(float64(p) * float64(s) / 255) }
	case BlendScreen:
		return func(p, s uint8) uint8 {
			return 255 - uint8((255-uint16(p))*(255-uint16(s))/255)
		}
	case BlendOverlay:
		return func(p, s uint8) uint8 {
			if p < 128 {
				return uint8(2 * uint16(p) * uint16(s) / 255)
			}
			return uint8(255 - 2*(255-uint16(p))*(255-uint16(s))/255)
		}
	}
	return nil
}
