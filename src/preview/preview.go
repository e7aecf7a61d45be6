// Package preview renders the interactive view of a session in logical
// pixels. It is an approximation of the final composite, tuned for redraw.
package preview

import (
	"image"
	"image/color"
	"log"
	"math"

	"screen-annotate/src/canvas"
	"screen-annotate/src/geometry"
	"screen-annotate/src/selection"
	"screen-annotate/src/session"
	"screen-annotate/src/shape"
)

var (
	shade = color.NRGBA{A: 128}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	outlineWidth = 1.0
	outlineDash  = 4.0
	cornerWidth  = 4.0
	cornerLength = 20.0
	labelPadding = 4.0
)

// Draw renders one frame: the captured background, the cached layer of
// committed shapes, then the uncached overlay for the current mode.
func Draw(s *session.Session) *image.RGBA {
	size := s.LogicalSize()
	f := canvas.New(size.X, size.Y)
	f.Blit(s.PreviewBase())

	committed := s.Cache().Draw(size.X, size.Y, func(layer *canvas.Frame) {
		for _, sh := range s.Shapes() {
			if err := DrawShape(layer, sh); err != nil {
				log.Printf("Preview: %v", err)
			}
		}
	})
	f.Blit(committed)

	m := s.Mode()
	if m.IsCrop() {
		drawCrop(f, m.Crop, s.Description())
		return f.Image()
	}
	if s.AllowsDrawing() {
		if err := DrawShape(f, m.Draw.Element); err != nil {
			log.Printf("Preview: %v", err)
		}
	}
	if m.Draw.State.WaitingForText() {
		drawTextGuide(f, m.Draw.Element)
	}
	return f.Image()
}

// DrawShape paints one annotation. Geometry is taken as-is; callers working
// in physical pixels scale the shape first.
func DrawShape(f *canvas.Frame, sh shape.Shape) error {
	t := sh.Tool
	c := sh.Color.RGBA()
	width := sh.StrokeWidth()
	switch t.Kind {
	case shape.KindRectangle:
		r := geometry.Rect{Min: t.Rectangle.TopLeft, Max: t.Rectangle.BottomRight}
		switch {
		case !t.Rectangle.Filled:
			f.StrokeRect(r, width, c)
		case t.Rectangle.Opaque:
			f.FillRect(r, c)
		default:
			f.FillRect(r, sh.Color.Translucent())
		}
	case shape.KindEllipse:
		radii := geometry.Vector{X: math.Abs(t.Ellipse.Radii.X), Y: math.Abs(t.Ellipse.Radii.Y)}
		if t.Ellipse.Filled {
			f.FillEllipse(t.Ellipse.Center, radii, c)
		} else {
			f.StrokeEllipse(t.Ellipse.Center, radii, width, c)
		}
	case shape.KindFreeHand:
		f.Polyline(t.FreeHand.Points, width, c)
	case shape.KindLine:
		f.Polyline([]geometry.Point{t.Line.Start, t.Line.End}, width, c)
	case shape.KindArrow:
		f.Polyline([]geometry.Point{t.Arrow.Start, t.Arrow.End}, width, c)
		f.Polyline([]geometry.Point{t.Arrow.Right, t.Arrow.End, t.Arrow.Left}, width, c)
	case shape.KindText:
		if t.Text.Text == "" {
			return nil
		}
		return f.Text(TextTopLeft(sh), t.Text.Text, sh.FontSize(), c)
	}
	return nil
}

// TextTopLeft is where a text shape's glyph box starts: the anchor shifted up
// by half the font size.
func TextTopLeft(sh shape.Shape) geometry.Point {
	a := sh.Tool.Text.Anchor
	return geometry.Pt(a.X, a.Y-sh.FontSize()/2)
}

func drawTextGuide(f *canvas.Frame, el shape.Shape) {
	tl := TextTopLeft(el)
	fs := el.FontSize()
	w := float64(f.Bounds().Dx()) - tl.X
	if w <= 0 {
		return
	}
	f.StrokeRect(geometry.Rect{Min: tl, Max: geometry.Pt(tl.X+w, tl.Y+fs)}, outlineWidth, white)
}

func drawCrop(f *canvas.Frame, c selection.Crop, caption string) {
	full := f.Bounds()
	fw, fh := float64(full.Dx()), float64(full.Dy())
	if c.State.Kind == selection.CropNone {
		f.FillRect(geometry.Rect{Max: geometry.Pt(fw, fh)}, shade)
		return
	}

	box := c.Box()
	// Shade the four bands around the selection.
	for _, band := range []geometry.Rect{
		{Min: geometry.Pt(0, 0), Max: geometry.Pt(fw, box.Min.Y)},
		{Min: geometry.Pt(0, box.Max.Y), Max: geometry.Pt(fw, fh)},
		{Min: geometry.Pt(0, box.Min.Y), Max: geometry.Pt(box.Min.X, box.Max.Y)},
		{Min: geometry.Pt(box.Max.X, box.Min.Y), Max: geometry.Pt(fw, box.Max.Y)},
	} {
		if band.Max.X > band.Min.X && band.Max.Y > band.Min.Y {
			f.FillRect(band, shade)
		}
	}

	if c.Size.IsEmpty() {
		return
	}
	f.DashedRect(box, outlineWidth, outlineDash, white)
	for _, corner := range cornerPaths(box) {
		f.Polyline(corner, cornerWidth, white)
	}
	drawCaption(f, box, caption)
}

// cornerPaths returns the four L-shaped corner marks of box.
func cornerPaths(box geometry.Rect) [][]geometry.Point {
	sx := segment(box.Max.X - box.Min.X)
	sy := segment(box.Max.Y - box.Min.Y)
	x0, y0, x1, y1 := box.Min.X, box.Min.Y, box.Max.X, box.Max.Y
	return [][]geometry.Point{
		{geometry.Pt(x0, y0+sy), geometry.Pt(x0, y0), geometry.Pt(x0+sx, y0)},
		{geometry.Pt(x1-sx, y0), geometry.Pt(x1, y0), geometry.Pt(x1, y0+sy)},
		{geometry.Pt(x1, y1-sy), geometry.Pt(x1, y1), geometry.Pt(x1-sx, y1)},
		{geometry.Pt(x0+sx, y1), geometry.Pt(x0, y1), geometry.Pt(x0, y1-sy)},
	}
}

// segment is the length of a corner mark along a side of length dim.
func segment(dim float64) float64 {
	if dim > 4*cornerLength {
		return cornerLength
	}
	return dim / 4
}

func drawCaption(f *canvas.Frame, box geometry.Rect, caption string) {
	const lineHeight = 13
	w := canvas.MeasureLabel(caption) + 2*labelPadding
	h := lineHeight + 2*labelPadding
	y := box.Min.Y - h - labelPadding
	if y < 0 {
		y = box.Min.Y + labelPadding
	}
	x := math.Min(box.Min.X, math.Max(float64(f.Bounds().Dx())-w, 0))
	f.FillRect(geometry.Rect{Min: geometry.Pt(x, y), Max: geometry.Pt(x+w, y+h)}, shade)
	f.Label(geometry.Pt(x+labelPadding, y+labelPadding), caption, white)
}
