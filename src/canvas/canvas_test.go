package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-annotate/src/geometry"
)

var red = color.RGBA{R: 255, A: 255}

func opaque(img *image.RGBA, x, y int) bool { return img.RGBAAt(x, y).A > 0 }

func TestFillRectCoversInterior(t *testing.T) {
	f := New(40, 40)
	f.FillRect(geometry.RectFromPoints(geometry.Pt(10, 10), geometry.Pt(30, 30)), red)

	assert.Equal(t, uint8(255), f.Image().RGBAAt(20, 20).R)
	assert.False(t, opaque(f.Image(), 5, 5))
	assert.False(t, opaque(f.Image(), 35, 35))
}

func TestStrokeRectLeavesInteriorEmpty(t *testing.T) {
	f := New(40, 40)
	f.StrokeRect(geometry.RectFromPoints(geometry.Pt(5, 5), geometry.Pt(35, 35)), 2, red)

	assert.True(t, opaque(f.Image(), 5, 20), "left edge should be painted")
	assert.False(t, opaque(f.Image(), 20, 20), "interior should stay transparent")
}

func TestDashedRectLeavesGaps(t *testing.T) {
	f := New(80, 40)
	f.DashedRect(geometry.RectFromPoints(geometry.Pt(10, 10), geometry.Pt(70, 30)), 2, 4, red)

	var on, off int
	for x := 14; x < 66; x++ {
		if opaque(f.Image(), x, 10) {
			on++
		} else {
			off++
		}
	}
	assert.Positive(t, on, "dashes should be painted")
	assert.Positive(t, off, "gaps should stay transparent")
	assert.False(t, opaque(f.Image(), 40, 20), "interior should stay transparent")
}

func TestPolylineNeedsTwoPoints(t *testing.T) {
	f := New(20, 20)
	f.Polyline([]geometry.Point{geometry.Pt(10, 10)}, 4, red)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			require.False(t, opaque(f.Image(), x, y), "pixel (%d,%d) painted", x, y)
		}
	}

	f.Polyline([]geometry.Point{geometry.Pt(2, 10), geometry.Pt(18, 10)}, 4, red)
	assert.True(t, opaque(f.Image(), 10, 10))
}

func TestClearAndBlit(t *testing.T) {
	f := New(10, 10)
	f.FillRect(geometry.RectFromPoints(geometry.Pt(0, 0), geometry.Pt(10, 10)), red)
	f.Clear()
	assert.False(t, opaque(f.Image(), 5, 5))

	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(3, 4, red)
	f.Blit(src)
	assert.Equal(t, red, f.Image().RGBAAt(3, 4))
}

func TestTextDrawsGlyphs(t *testing.T) {
	f := New(120, 40)
	require.NoError(t, f.Text(geometry.Pt(2, 2), "Hello", 20, red))

	painted := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if f.Image().RGBAAt(x, y).A > 0 {
				painted++
			}
		}
	}
	assert.Positive(t, painted)
	assert.Positive(t, MeasureLabel("Hello"))
}

func TestCacheRendersOnlyWhenDirty(t *testing.T) {
	c := NewCache()
	renders := 0
	render := func(f *Frame) {
		renders++
		f.FillRect(geometry.RectFromPoints(geometry.Pt(0, 0), geometry.Pt(4, 4)), red)
	}

	require.True(t, c.Dirty())
	img := c.Draw(8, 8, render)
	assert.Equal(t, 1, renders)
	assert.False(t, c.Dirty())
	assert.True(t, opaque(img, 1, 1))

	c.Draw(8, 8, render)
	assert.Equal(t, 1, renders, "clean cache must not re-render")

	c.Clear()
	c.Draw(8, 8, render)
	assert.Equal(t, 2, renders)

	img = c.Draw(16, 8, render)
	assert.Equal(t, 3, renders, "size change forces a render")
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestCacheRenderStartsTransparent(t *testing.T) {
	c := NewCache()
	c.Draw(8, 8, func(f *Frame) {
		f.FillRect(geometry.RectFromPoints(geometry.Pt(0, 0), geometry.Pt(8, 8)), red)
	})
	c.Clear()
	img := c.Draw(8, 8, func(*Frame) {})
	assert.False(t, opaque(img, 4, 4), "previous layer must be wiped")
}
