// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package effect provides glitch transforms for anim surfaces: pixel
// sorting, data bending, channel shift, noise, channel inversion,
// posterization, byte corruption, chunk swapping, XOR patterns, blending
// with a secondary image and hue rotation.
//
// Effects are configured with Options, which decode from YAML, and applied
// in a fixed order by a Chain.
package effect

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/anim"
	"github.com/gogpu/anim/internal/parallel"
)

// ErrInvalidOptions is wrapped by every option validation error.
var ErrInvalidOptions = errors.New("effect: invalid options")

// ChannelShiftOptions configures a horizontal shift of colour channels.
type ChannelShiftOptions struct {
	// Amount in [0,1]; 1 shifts by 30 pixels.
	Amount float64 `yaml:"amount"`
	// Channels to shift (0=R, 1=G, 2=B). Empty means all three.
	Channels []int `yaml:"channels"`
	// Direction is 1 or -1; 0 picks one at random per frame.
	Direction int `yaml:"direction"`
}

// Options selects the effects of a Chain. Zero values disable an effect.
type Options struct {
	PixelSort    *PixelSortOptions    `yaml:"pixelSort"`
	DataBend     *DataBendOptions     `yaml:"dataBend"`
	ChannelShift *ChannelShiftOptions `yaml:"channelShift"`
	// Noise in [0,1] adds up to Noise*255 of random offset per channel.
	Noise float64 `yaml:"noise"`
	// Invert lists channels to invert (0=R, 1=G, 2=B, 3=A).
	Invert []int `yaml:"invert"`
	// Quantize reduces each colour channel to this many levels (>= 2).
	Quantize int `yaml:"quantize"`
	ByteCorrupt *ByteCorruptOptions `yaml:"byteCorrupt"`
	ChunkSwap   *ChunkSwapOptions   `yaml:"chunkSwap"`
	BinaryXor   *BinaryXorOptions   `yaml:"binaryXor"`
	Blend       *BlendOptions       `yaml:"blend"`
	// Hue rotates hue by this many degrees in HCL space.
	Hue float64 `yaml:"hue"`
	// Envelope names the easing curve used by Sequence.
	Envelope string `yaml:"envelope"`
	// Seed makes noise and random directions reproducible. 0 uses 1.
	Seed int64 `yaml:"seed"`
}

// envelopes maps names to easing curves.
var envelopes = map[string]func(float64) float64{
	"":           func(float64) float64 { return 1 },
	"constant":   func(float64) float64 { return 1 },
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inOutSine":  ease.InOutSine,
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v not in [0,1]", ErrInvalidOptions, name, v)
	}
	return nil
}

func checkChoice(name string, v *int, n int) error {
	if v != nil && (*v < 0 || *v >= n) {
		return fmt.Errorf("%w: %s %d", ErrInvalidOptions, name, *v)
	}
	return nil
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if s := o.PixelSort; s != nil {
		if err := errors.Join(
			checkUnit("pixelSort.intensity", s.Intensity),
			checkUnit("pixelSort.threshold", s.Threshold),
			checkChoice("pixelSort.channel", s.Channel, 3),
		); err != nil {
			return err
		}
	}
	if s := o.DataBend; s != nil {
		if err := checkUnit("dataBend.amount", s.Amount); err != nil {
			return err
		}
		if s.ChunkSize != nil {
			if err := checkUnit("dataBend.chunkSize", *s.ChunkSize); err != nil {
				return err
			}
		}
		if err := errors.Join(
			checkChoice("dataBend.mode", s.Mode, 4),
			checkChoice("dataBend.channel", s.Channel, 4),
		); err != nil {
			return err
		}
	}
	if s := o.ChannelShift; s != nil {
		if err := checkUnit("channelShift.amount", s.Amount); err != nil {
			return err
		}
		for _, ch := range s.Channels {
			if ch < 0 || ch > 2 {
				return fmt.Errorf("%w: channelShift channel %d", ErrInvalidOptions, ch)
			}
		}
		if s.Direction < -1 || s.Direction > 1 {
			return fmt.Errorf("%w: channelShift.direction %d", ErrInvalidOptions, s.Direction)
		}
	}
	if o.Noise < 0 || o.Noise > 1 {
		return fmt.Errorf("%w: noise %v not in [0,1]", ErrInvalidOptions, o.Noise)
	}
	for _, ch := range o.Invert {
		if ch < 0 || ch > 3 {
			return fmt.Errorf("%w: invert channel %d", ErrInvalidOptions, ch)
		}
	}
	if o.Quantize == 1 || o.Quantize < 0 || o.Quantize > 256 {
		return fmt.Errorf("%w: quantize %d", ErrInvalidOptions, o.Quantize)
	}
	if s := o.ByteCorrupt; s != nil {
		if err := checkUnit("byteCorrupt.amount", s.Amount); err != nil {
			return err
		}
		if err := checkChoice("byteCorrupt.mode", s.Mode, 4); err != nil {
			return err
		}
		if s.BlockSize < 0 {
			return fmt.Errorf("%w: byteCorrupt.blockSize %d", ErrInvalidOptions, s.BlockSize)
		}
	}
	if s := o.ChunkSwap; s != nil {
		if err := checkUnit("chunkSwap.amount", s.Amount); err != nil {
			return err
		}
		if s.ChunkSize != nil {
			if err := checkUnit("chunkSwap.chunkSize", *s.ChunkSize); err != nil {
				return err
			}
		}
	}
	if s := o.BinaryXor; s != nil {
		if err := checkUnit("binaryXor.strength", s.Strength); err != nil {
			return err
		}
		if s.Mode < 0 || s.Mode > 3 {
			return fmt.Errorf("%w: binaryXor.mode %d", ErrInvalidOptions, s.Mode)
		}
	}
	if s := o.Blend; s != nil {
		if err := checkUnit("blend.amount", s.Amount); err != nil {
			return err
		}
		if s.Mode < BlendMix || s.Mode > BlendOverlay {
			return fmt.Errorf("%w: blend.mode %d", ErrInvalidOptions, s.Mode)
		}
	}
	if _, ok := envelopes[o.Envelope]; !ok {
		return fmt.Errorf("%w: unknown envelope %q", ErrInvalidOptions, o.Envelope)
	}
	return nil
}

// Chain applies the configured effects in order: pixel sort, data bend,
// channel shift, noise, invert, quantize, byte corruption, chunk swap,
// binary XOR, blend and finally hue. It is safe for concurrent use, though
// concurrent callers interleave the random stream.
type Chain struct {
	opts     Options
	envelope func(float64) float64

	mu  sync.Mutex
	rng *rand.Rand
}

// New validates opts and creates a chain.
func New(opts Options) (*Chain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	return &Chain{
		opts:     opts,
		envelope: envelopes[opts.Envelope],
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // effects, not security
	}, nil
}

// Apply runs the chain on s. strength in [0,1] scales every amount; pixel
// sort, invert and quantize are applied whenever strength is positive.
func (c *Chain) Apply(s anim.Surface, strength float64) {
	if strength <= 0 {
		return
	}
	strength = math.Min(strength, 1)
	pix, w := s.Pix(), s.Width()
	if w <= 0 || len(pix) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if o := c.opts.PixelSort; o != nil {
		PixelSort(pix, w, *o)
	}
	if o := c.opts.DataBend; o != nil && o.Amount > 0 {
		DataBend(pix, o.Amount*strength, *o, c.rng)
	}
	if o := c.opts.ChannelShift; o != nil && o.Amount > 0 {
		dir := o.Direction
		if dir == 0 {
			dir = 1
			if c.rng.Intn(2) == 0 {
				dir = -1
			}
		}
		ChannelShift(pix, int(o.Amount*30*strength)*dir, o.Channels...)
	}
	if c.opts.Noise > 0 {
		Noise(pix, c.opts.Noise*strength, c.rng)
	}
	if len(c.opts.Invert) > 0 || c.opts.Quantize >= 2 {
		byRows(pix, w, func(band []uint8) {
			if len(c.opts.Invert) > 0 {
				Invert(band, c.opts.Invert...)
			}
			if c.opts.Quantize >= 2 {
				Quantize(band, c.opts.Quantize)
			}
		})
	}
	if o := c.opts.ByteCorrupt; o != nil && o.Amount > 0 {
		ByteCorrupt(pix, o.Amount*strength, *o, c.rng)
	}
	if o := c.opts.ChunkSwap; o != nil && o.Amount > 0 {
		ChunkSwap(pix, w, o.Amount*strength, *o, c.rng)
	}
	if o := c.opts.BinaryXor; o != nil && o.Strength > 0 {
		x := *o
		x.Strength *= strength
		BinaryXor(pix, w, x, c.rng)
	}
	if o := c.opts.Blend; o != nil && o.Source != nil && o.Amount > 0 {
		b := *o
		b.Amount *= strength
		Blend(pix, w, o.Source, b)
	}
	if hue := c.opts.Hue * strength; hue != 0 {
		byRows(pix, w, func(band []uint8) { RotateHue(band, hue) })
	}
}

// byRows runs fn over row bands of pix in parallel. fn must treat every
// pixel independently.
func byRows(pix []uint8, width int, fn func(band []uint8)) {
	stride := 4 * width
	parallel.Default().Rows(len(pix)/stride, func(y0, y1 int) {
		fn(pix[y0*stride : y1*stride])
	})
}

// Transform returns the chain at full strength as an anim.Transform.
func (c *Chain) Transform() anim.Transform {
	return func(s anim.Surface) { c.Apply(s, 1) }
}

// Sequence returns a stateful transform for a run over total frames: the
// k-th call applies the chain with strength envelope(k/(total-1)). The
// count wraps after total calls, so one Sequence serves one export.
func (c *Chain) Sequence(total int) anim.Transform {
	var mu sync.Mutex
	k := 0
	return func(s anim.Surface) {
		mu.Lock()
		t := 1.0
		if total > 1 {
			t = float64(k%total) / float64(total-1)
		}
		k++
		mu.Unlock()
		c.Apply(s, c.envelope(t))
	}
}

// ChannelShift rotates the listed channels (all of R, G, B when none are
// given) by shift pixels along the flattened buffer. Alpha is never
// shifted.
func ChannelShift(pix []uint8, shift int, channels ...int) {
	n := len(pix) / 4
	if n == 0 || shift%n == 0 {
		return
	}
	if len(channels) == 0 {
		channels = []int{0, 1, 2}
	}
	tmp := make([]uint8, n)
	for _, ch := range channels {
		if ch < 0 || ch > 2 {
			continue
		}
		for i := range n {
			tmp[i] = pix[4*i+ch]
		}
		for i := range n {
			src := ((i+shift)%n + n) % n
			pix[4*i+ch] = tmp[src]
		}
	}
}

// Noise adds a random offset in (-amount*255, amount*255) to each colour
// channel, saturating at 0 and 255.
func Noise(pix []uint8, amount float64, rng *rand.Rand) {
	limit := int(amount * 255)
	if limit <= 0 {
		return
	}
	for i := 0; i+3 < len(pix); i += 4 {
		for j := range 3 {
			v := int(pix[i+j])
			d := rng.Intn(limit)
			if rng.Intn(2) == 0 {
				v += d
			} else {
				v -= d
			}
			pix[i+j] = clampByte(v)
		}
	}
}

// Invert inverts the listed channels (0=R, 1=G, 2=B, 3=A).
func Invert(pix []uint8, channels ...int) {
	for i := 0; i+3 < len(pix); i += 4 {
		for _, ch := range channels {
			if ch >= 0 && ch < 4 {
				pix[i+ch] = 255 - pix[i+ch]
			}
		}
	}
}

// Quantize reduces each colour channel to levels evenly spaced values. A
// level that falls between integers is truncated, so 100 at three levels
// becomes 127.
func Quantize(pix []uint8, levels int) {
	if levels <= 1 {
		return
	}
	step := 255 / float64(levels-1)
	var lut [256]uint8
	for v := range lut {
		lut[v] = uint8(math.Round(float64(v)/step) * step)
	}
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = lut[pix[i]]
		pix[i+1] = lut[pix[i+1]]
		pix[i+2] = lut[pix[i+2]]
	}
}

// RotateHue rotates every visible pixel's hue by degrees in HCL space,
// keeping chroma and luminance.
func RotateHue(pix []uint8, degrees float64) {
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] == 0 {
			continue
		}
		c := colorful.Color{
			R: float64(pix[i]) / 255,
			G: float64(pix[i+1]) / 255,
			B: float64(pix[i+2]) / 255,
		}
		h, cr, l := c.Hcl()
		h = math.Mod(h+degrees, 360)
		if h < 0 {
			h += 360
		}
		pix[i], pix[i+1], pix[i+2] = colorful.Hcl(h, cr, l).Clamped().RGB255()
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v) //nolint:gosec // clamped above
}
