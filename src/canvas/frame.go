// Package canvas wraps an RGBA buffer with the vector primitives the preview
// renderer needs, and the render cache for committed shapes.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"screen-annotate/src/fonts"
	"screen-annotate/src/geometry"
)

// Frame draws onto an RGBA image with anti-aliased fills and strokes.
type Frame struct {
	img    *image.RGBA
	dasher *rasterx.Dasher
}

func NewFrame(img *image.RGBA) *Frame {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &Frame{img: img, dasher: rasterx.NewDasher(w, h, scanner)}
}

// New allocates a transparent frame of w x h pixels.
func New(w, h int) *Frame {
	return NewFrame(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func (f *Frame) Image() *image.RGBA { return f.img }

func (f *Frame) Bounds() image.Rectangle { return f.img.Bounds() }

// Clear resets every pixel to transparent.
func (f *Frame) Clear() {
	draw.Draw(f.img, f.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Blit draws src over the frame at its origin.
func (f *Frame) Blit(src image.Image) {
	draw.Draw(f.img, f.img.Bounds(), src, src.Bounds().Min, draw.Over)
}

func (f *Frame) fill(c color.Color, path func(rasterx.Adder)) {
	filler := &f.dasher.Filler
	filler.Clear()
	filler.SetColor(c)
	path(filler)
	filler.Draw()
	filler.Clear()
}

func (f *Frame) stroke(c color.Color, width float64, dashes []float64, path func(rasterx.Adder)) {
	f.dasher.Clear()
	f.dasher.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, dashes, 0)
	f.dasher.SetColor(c)
	path(f.dasher)
	f.dasher.Draw()
	f.dasher.Clear()
}

func (f *Frame) FillRect(r geometry.Rect, c color.Color) {
	f.fill(c, func(p rasterx.Adder) {
		rasterx.AddRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, 0, p)
	})
}

func (f *Frame) FillEllipse(center geometry.Point, radii geometry.Vector, c color.Color) {
	f.fill(c, func(p rasterx.Adder) {
		rasterx.AddEllipse(center.X, center.Y, radii.X, radii.Y, 0, p)
	})
}

func (f *Frame) StrokeRect(r geometry.Rect, width float64, c color.Color) {
	f.stroke(c, width, nil, func(p rasterx.Adder) {
		rasterx.AddRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, 0, p)
	})
}

// DashedRect strokes r with alternating on/off runs of dash pixels.
func (f *Frame) DashedRect(r geometry.Rect, width, dash float64, c color.Color) {
	f.stroke(c, width, []float64{dash, dash}, func(p rasterx.Adder) {
		rasterx.AddRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, 0, p)
	})
}

func (f *Frame) StrokeEllipse(center geometry.Point, radii geometry.Vector, width float64, c color.Color) {
	f.stroke(c, width, nil, func(p rasterx.Adder) {
		rasterx.AddEllipse(center.X, center.Y, radii.X, radii.Y, 0, p)
	})
}

// Polyline strokes an open path through points. Fewer than two points draw nothing.
func (f *Frame) Polyline(points []geometry.Point, width float64, c color.Color) {
	if len(points) < 2 {
		return
	}
	f.stroke(c, width, nil, func(p rasterx.Adder) {
		p.Start(rasterx.ToFixedP(points[0].X, points[0].Y))
		for _, pt := range points[1:] {
			p.Line(rasterx.ToFixedP(pt.X, pt.Y))
		}
		p.Stop(false)
	})
}

// Text draws s with its top-left corner at topLeft.
func (f *Frame) Text(topLeft geometry.Point, s string, size float64, c color.Color) error {
	face, err := fonts.Face(size)
	if err != nil {
		return err
	}
	f.drawString(face, topLeft, s, c)
	return nil
}

// Label draws s in the fixed UI face with its top-left corner at topLeft.
func (f *Frame) Label(topLeft geometry.Point, s string, c color.Color) {
	f.drawString(fonts.Label(), topLeft, s, c)
}

func (f *Frame) drawString(face font.Face, topLeft geometry.Point, s string, c color.Color) {
	d := font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(topLeft.X * 64),
			Y: fixed.Int26_6(topLeft.Y*64) + fonts.Ascent(face),
		},
	}
	d.DrawString(s)
}

// MeasureLabel returns the width of s in the label face.
func MeasureLabel(s string) float64 {
	return float64(font.MeasureString(fonts.Label(), s)) / 64
}
