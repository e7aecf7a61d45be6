// Package geometry holds the small amount of planar math shared by the shape
// model, the selection state machine and the renderers.
package geometry

import (
	"image"
	"math"
)

const (
	// ArrowHeadAngle is the angle between the shaft and each wing.
	ArrowHeadAngle = math.Pi / 5
	// MaxArrowHead caps the wing length for long arrows.
	MaxArrowHead = 30.0
)

type Point struct {
	X float64
	Y float64
}

type Vector struct {
	X float64
	Y float64
}

type Size struct {
	Width  float64
	Height float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Sub(q Point) Vector { return Vector{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Add(v Vector) Point { return Point{X: p.X + v.X, Y: p.Y + v.Y} }

func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

func (p Point) Distance(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func (v Vector) Scale(k float64) Vector { return Vector{X: v.X * k, Y: v.Y * k} }

func (v Vector) Length() float64 { return math.Hypot(v.X, v.Y) }

func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

func (s Size) Scale(k float64) Size { return Size{Width: s.Width * k, Height: s.Height * k} }

// IsEmpty reports whether the size covers no area.
func (s Size) IsEmpty() bool { return s.Width == 0 || s.Height == 0 }

// Normalize orders two corners so that topLeft is component-wise <= bottomRight.
func Normalize(a, b Point) (topLeft, bottomRight Point) {
	topLeft = Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
	bottomRight = Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
	return topLeft, bottomRight
}

func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// ArrowWings derives the two wing tips of an arrow head at end. The reverse
// direction vector is rotated by ±ArrowHeadAngle and scaled to
// min(length/2, MaxArrowHead).
func ArrowWings(start, end Point) (right, left Point) {
	line := end.Sub(start)
	size := math.Min(line.Length()/2, MaxArrowHead)
	rad := math.Atan2(line.Y, line.X)

	right = Point{
		X: end.X - size*math.Cos(rad-ArrowHeadAngle),
		Y: end.Y - size*math.Sin(rad-ArrowHeadAngle),
	}
	left = Point{
		X: end.X - size*math.Cos(rad+ArrowHeadAngle),
		Y: end.Y - size*math.Sin(rad+ArrowHeadAngle),
	}
	return right, left
}

// Rect is an axis-aligned box. Min <= Max is maintained by RectFromPoints.
type Rect struct {
	Min Point
	Max Point
}

func RectFromPoints(a, b Point) Rect {
	tl, br := Normalize(a, b)
	return Rect{Min: tl, Max: br}
}

func (r Rect) Size() Size {
	return Size{Width: r.Max.X - r.Min.X, Height: r.Max.Y - r.Min.Y}
}

// Contains is inclusive on every edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Scale(k float64) Rect {
	return Rect{Min: r.Min.Scale(k), Max: r.Max.Scale(k)}
}

// Image rounds the rectangle to whole pixels.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.Min.X)), int(math.Round(r.Min.Y)),
		int(math.Round(r.Max.X)), int(math.Round(r.Max.Y)),
	)
}
