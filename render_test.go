package anim

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestRenderFrame(t *testing.T) {
	s := colorStore(50*time.Millisecond, red, green, blue)
	target := NewPixmap(2, 2)

	require.True(t, RenderFrame(s, target, 1, nil))
	assert.Equal(t, nrgba(green), target.NRGBAAt(0, 0))
	assert.Equal(t, nrgba(green), target.NRGBAAt(1, 1))
}

func TestRenderFrameResizesTarget(t *testing.T) {
	s := colorStore(50*time.Millisecond, red)
	target := NewPixmap(7, 3)

	require.True(t, RenderFrame(s, target, 0, nil))
	assert.Equal(t, 2, target.Width())
	assert.Equal(t, 2, target.Height())
	assert.Equal(t, nrgba(red), target.NRGBAAt(1, 0))
}

func TestRenderFrameOutOfRange(t *testing.T) {
	s := colorStore(50*time.Millisecond, red, green, blue)
	target := NewPixmap(5, 4)
	target.Clear(blue)

	for _, idx := range []int{999, 3, -1} {
		assert.False(t, RenderFrame(s, target, idx, nil), "index %d", idx)
	}
	assert.Equal(t, 5, target.Width())
	assert.Equal(t, 4, target.Height())
	assert.Equal(t, nrgba(blue), target.NRGBAAt(0, 0), "target left untouched")
}

func TestRenderFrameEmptyStore(t *testing.T) {
	target := NewPixmap(3, 3)
	assert.False(t, RenderFrame(nil, target, 0, nil))
	assert.Equal(t, 3, target.Width())

	assert.ErrorIs(t, renderFrame(nil, target, 0, nil), ErrEmptyStore)
	assert.ErrorIs(t, renderFrame(colorStore(time.Millisecond, red), target, 4, nil), ErrFrameOutOfRange)
}

func TestRenderFrameBadTarget(t *testing.T) {
	s := colorStore(50*time.Millisecond, red)

	assert.False(t, RenderFrame(s, nil, 0, nil))
	assert.ErrorIs(t, renderFrame(s, nil, 0, nil), ErrNilSurface)

	broken := &brokenSurface{w: 1, h: 1}
	assert.False(t, RenderFrame(s, broken, 0, nil))

	var re *RenderError
	require.ErrorAs(t, renderFrame(s, broken, 0, nil), &re)
	assert.Contains(t, re.Error(), "context lost")
}

func TestRenderFrameTransform(t *testing.T) {
	s := colorStore(50*time.Millisecond, red)
	target := NewPixmap(2, 2)

	calls := 0
	ok := RenderFrame(s, target, 0, func(sf Surface) {
		calls++
		pix := sf.Pix()
		for i := 0; i < len(pix); i += 4 {
			pix[i], pix[i+2] = pix[i+2], pix[i]
		}
	})
	require.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Equal(t, nrgba(blue), target.NRGBAAt(0, 0))
	assert.Equal(t, nrgba(red), pixelAt(s, 0, 0, 0), "store is not modified")
}

func TestPlayerRender(t *testing.T) {
	p := playing(colorStore(100*time.Millisecond, red, green))
	defer p.Close()
	target := NewPixmap(1, 1)

	require.True(t, p.Render(target, nil))
	assert.Equal(t, nrgba(red), target.NRGBAAt(0, 0))

	p.Tick(100 * time.Millisecond)
	require.True(t, p.Render(target, nil))
	assert.Equal(t, nrgba(green), target.NRGBAAt(0, 0))

	assert.False(t, NewPlayer().Render(target, nil))
}

func TestRenderScaled(t *testing.T) {
	s := colorStore(50*time.Millisecond, red, green)
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	require.True(t, RenderScaled(s, dst, 1, nil))
	assert.Equal(t, nrgba(green), dst.NRGBAAt(7, 7))

	require.True(t, RenderScaled(s, dst, 0, draw.BiLinear))
	assert.Equal(t, nrgba(red), dst.NRGBAAt(4, 4))

	assert.False(t, RenderScaled(s, dst, 2, nil))
	assert.False(t, RenderScaled(s, nil, 0, nil))
	assert.False(t, RenderScaled(s, image.NewNRGBA(image.Rectangle{}), 0, nil))
}
