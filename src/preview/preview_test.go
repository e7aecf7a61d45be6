package preview

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-annotate/src/canvas"
	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/shape"
)

var gray = color.RGBA{R: 100, G: 100, B: 100, A: 255}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func newSession(t *testing.T, w, h int) *session.Session {
	t.Helper()
	s, err := session.New(screenshot.NewStaticProvider(grayImage(w, h), 1), session.Options{})
	require.NoError(t, err)
	return s
}

func drag(s *session.Session, from, to geometry.Point) {
	s.Apply(messages.PointerMoved{Position: from})
	s.Apply(messages.PointerPressed{})
	s.Apply(messages.PointerMoved{Position: to})
	s.Apply(messages.PointerReleased{})
}

func TestFullScreenFrameShowsBackground(t *testing.T) {
	s := newSession(t, 200, 200)
	img := Draw(s)
	require.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())
	assert.Equal(t, gray, img.RGBAAt(100, 100))
}

func TestAreaShadesOutside(t *testing.T) {
	s := newSession(t, 200, 200)
	drag(s, geometry.Pt(50, 50), geometry.Pt(150, 150))
	img := Draw(s)

	assert.Equal(t, gray, img.RGBAAt(100, 100), "inside the selection is untouched")
	out := img.RGBAAt(10, 190)
	assert.Less(t, out.R, gray.R, "outside the selection is darkened")
	assert.Equal(t, uint8(255), out.A)
}

func TestSelectionOutlineIsDashed(t *testing.T) {
	s := newSession(t, 200, 200)
	drag(s, geometry.Pt(50, 50), geometry.Pt(150, 150))
	img := Draw(s)

	var lit, plain int
	for x := 75; x < 125; x++ {
		switch c := img.RGBAAt(x, 50); {
		case c.R > gray.R:
			lit++
		case c == gray:
			plain++
		}
	}
	assert.Positive(t, lit, "dashes brighten the top edge")
	assert.Positive(t, plain, "gaps leave the background visible")
}

func TestCommittedShapesUseCache(t *testing.T) {
	s := newSession(t, 100, 100)
	s.Apply(messages.ChangeTool{Tool: shape.NewRectangle(true, true)})
	drag(s, geometry.Pt(10, 10), geometry.Pt(50, 40))
	require.True(t, s.Cache().Dirty())

	img := Draw(s)
	assert.False(t, s.Cache().Dirty(), "Draw rebuilds the cache")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(30, 25))
	assert.Equal(t, gray, img.RGBAAt(80, 80))

	s.Apply(messages.Undo{})
	img = Draw(s)
	assert.Equal(t, gray, img.RGBAAt(30, 25), "undone shape must disappear immediately")
}

func TestInProgressShapeIsDrawn(t *testing.T) {
	s := newSession(t, 100, 100)
	s.Apply(messages.ChangeTool{Tool: shape.NewRectangle(true, true)})
	s.Apply(messages.PointerMoved{Position: geometry.Pt(10, 10)})
	s.Apply(messages.PointerPressed{})
	s.Apply(messages.PointerMoved{Position: geometry.Pt(60, 60)})

	img := Draw(s)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(30, 30))
	assert.Empty(t, s.Shapes())
}

func TestDrawShapeTranslucentHighlighter(t *testing.T) {
	f := canvas.New(20, 20)
	tool, ok := shape.ToolByName("highlighter")
	require.True(t, ok)
	tool.Initiate(geometry.Pt(0, 0))
	tool.Update(geometry.Pt(0, 0), geometry.Pt(20, 20))

	require.NoError(t, DrawShape(f, shape.Shape{Tool: tool, Color: shape.Yellow, Size: 1}))
	px := f.Image().RGBAAt(10, 10)
	assert.InDelta(t, 77, int(px.A), 2)
}

func TestDrawShapeText(t *testing.T) {
	f := canvas.New(200, 60)
	tool := shape.NewText()
	tool.Initiate(geometry.Pt(5, 30))
	tool.SetText("Hello")
	require.NoError(t, DrawShape(f, shape.Shape{Tool: tool, Color: shape.Black, Size: 2}))

	painted := 0
	img := f.Image()
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).A > 0 {
				painted++
				assert.GreaterOrEqual(t, y, 6, "glyphs start at anchor.y - fontSize/2")
			}
		}
	}
	assert.Positive(t, painted)
}

func TestTextTopLeft(t *testing.T) {
	sh := shape.Shape{Tool: shape.NewText(), Size: 3}
	sh.Tool.Initiate(geometry.Pt(40, 50))
	assert.Equal(t, geometry.Pt(40, 32), TextTopLeft(sh))
}

func TestSegment(t *testing.T) {
	assert.Equal(t, 20.0, segment(200))
	assert.Equal(t, 10.0, segment(40))
	assert.Equal(t, 20.0, segment(81))
}
