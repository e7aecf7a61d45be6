package shape

import (
	"screen-annotate/src/geometry"
)

// Kind discriminates the Tool union.
type Kind int

const (
	KindRectangle Kind = iota
	KindEllipse
	KindFreeHand
	KindLine
	KindArrow
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindEllipse:
		return "ellipse"
	case KindFreeHand:
		return "freehand"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

type Rectangle struct {
	TopLeft     geometry.Point
	BottomRight geometry.Point
	Size        geometry.Size
	Filled      bool
	Opaque      bool
}

type Ellipse struct {
	Center geometry.Point
	Radii  geometry.Vector
	Filled bool
}

type FreeHand struct {
	Points []geometry.Point
}

type Line struct {
	Start geometry.Point
	End   geometry.Point
}

// Arrow wing points are derived from Start and End by Update; they are never
// set independently.
type Arrow struct {
	Start geometry.Point
	End   geometry.Point
	Right geometry.Point
	Left  geometry.Point
}

type Text struct {
	Anchor geometry.Point
	Text   string
}

// Tool is a closed tagged union: Kind selects which payload is live, the
// others stay zero. Build values with the New* constructors or the catalogue.
type Tool struct {
	Kind      Kind
	Rectangle Rectangle
	Ellipse   Ellipse
	FreeHand  FreeHand
	Line      Line
	Arrow     Arrow
	Text      Text
}

func NewRectangle(filled, opaque bool) Tool {
	return Tool{Kind: KindRectangle, Rectangle: Rectangle{Filled: filled, Opaque: opaque}}
}

func NewEllipse(filled bool) Tool {
	return Tool{Kind: KindEllipse, Ellipse: Ellipse{Filled: filled}}
}

func NewFreeHand() Tool { return Tool{Kind: KindFreeHand} }

func NewLine() Tool { return Tool{Kind: KindLine} }

func NewArrow() Tool { return Tool{Kind: KindArrow} }

func NewText() Tool { return Tool{Kind: KindText} }

// Clone returns a copy that shares no memory with t.
func (t Tool) Clone() Tool {
	c := t
	if t.FreeHand.Points != nil {
		c.FreeHand.Points = append([]geometry.Point(nil), t.FreeHand.Points...)
	}
	return c
}

// SameKind compares the tool kind and its style flags, ignoring geometry.
func (t Tool) SameKind(o Tool) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindRectangle:
		return t.Rectangle.Filled == o.Rectangle.Filled && t.Rectangle.Opaque == o.Rectangle.Opaque
	case KindEllipse:
		return t.Ellipse.Filled == o.Ellipse.Filled
	default:
		return true
	}
}

func (t Tool) IsText() bool { return t.Kind == KindText }

// Reset returns the tool to its zero geometry, keeping the kind and style flags.
func (t *Tool) Reset() {
	switch t.Kind {
	case KindRectangle:
		*t = NewRectangle(t.Rectangle.Filled, t.Rectangle.Opaque)
	case KindEllipse:
		*t = NewEllipse(t.Ellipse.Filled)
	case KindFreeHand:
		*t = NewFreeHand()
	case KindLine:
		*t = NewLine()
	case KindArrow:
		*t = NewArrow()
	case KindText:
		*t = NewText()
	}
}

// Initiate anchors the tool at the point where a drag starts.
func (t *Tool) Initiate(p geometry.Point) {
	switch t.Kind {
	case KindRectangle:
		t.Rectangle.TopLeft = p
		t.Rectangle.BottomRight = p
		t.Rectangle.Size = geometry.Size{}
	case KindEllipse:
		t.Ellipse.Center = p
		t.Ellipse.Radii = geometry.Vector{}
	case KindFreeHand:
		t.FreeHand.Points = []geometry.Point{p}
	case KindLine:
		t.Line.Start = p
		t.Line.End = p
	case KindArrow:
		t.Arrow = Arrow{Start: p, End: p, Right: p, Left: p}
	case KindText:
		t.Text.Anchor = p
	}
}

// Update recomputes the tool from a drag running from initial to current.
// FreeHand only appends current; Text ignores drags.
func (t *Tool) Update(initial, current geometry.Point) {
	switch t.Kind {
	case KindRectangle:
		tl, br := geometry.Normalize(initial, current)
		t.Rectangle.TopLeft = tl
		t.Rectangle.BottomRight = br
		t.Rectangle.Size = geometry.Size{Width: br.X - tl.X, Height: br.Y - tl.Y}
	case KindEllipse:
		t.Ellipse.Center = geometry.Midpoint(initial, current)
		t.Ellipse.Radii = current.Sub(initial).Scale(0.5)
	case KindFreeHand:
		t.FreeHand.Points = append(t.FreeHand.Points, current)
	case KindLine:
		t.Line.End = current
	case KindArrow:
		t.Arrow.End = current
		t.Arrow.Right, t.Arrow.Left = geometry.ArrowWings(t.Arrow.Start, current)
	case KindText:
	}
}

// Scale multiplies every point and length by k.
func (t *Tool) Scale(k float64) {
	switch t.Kind {
	case KindRectangle:
		t.Rectangle.TopLeft = t.Rectangle.TopLeft.Scale(k)
		t.Rectangle.BottomRight = t.Rectangle.BottomRight.Scale(k)
		t.Rectangle.Size = t.Rectangle.Size.Scale(k)
	case KindEllipse:
		t.Ellipse.Center = t.Ellipse.Center.Scale(k)
		t.Ellipse.Radii = t.Ellipse.Radii.Scale(k)
	case KindFreeHand:
		scaled := make([]geometry.Point, len(t.FreeHand.Points))
		for i, p := range t.FreeHand.Points {
			scaled[i] = p.Scale(k)
		}
		t.FreeHand.Points = scaled
	case KindLine:
		t.Line.Start = t.Line.Start.Scale(k)
		t.Line.End = t.Line.End.Scale(k)
	case KindArrow:
		t.Arrow.Start = t.Arrow.Start.Scale(k)
		t.Arrow.End = t.Arrow.End.Scale(k)
		t.Arrow.Right = t.Arrow.Right.Scale(k)
		t.Arrow.Left = t.Arrow.Left.Scale(k)
	case KindText:
		t.Text.Anchor = t.Text.Anchor.Scale(k)
	}
}

// SetText replaces the content of a text tool. Other kinds are left alone.
func (t *Tool) SetText(s string) {
	if t.Kind == KindText {
		t.Text.Text = s
	}
}

// IsValid reports whether the tool is worth committing.
func (t Tool) IsValid() bool {
	switch t.Kind {
	case KindRectangle:
		return !t.Rectangle.Size.IsEmpty()
	case KindEllipse:
		return t.Ellipse.Radii.X != 0 && t.Ellipse.Radii.Y != 0
	case KindFreeHand:
		return len(t.FreeHand.Points) >= 2
	case KindLine:
		return t.Line.Start != t.Line.End
	case KindArrow:
		return t.Arrow.Start != t.Arrow.End
	case KindText:
		return t.Text.Text != ""
	default:
		return false
	}
}

// NeedSize reports whether the stroke-width selector applies to the tool.
func (t Tool) NeedSize() bool {
	switch t.Kind {
	case KindRectangle:
		return !t.Rectangle.Filled
	case KindEllipse:
		return !t.Ellipse.Filled
	case KindLine, KindFreeHand, KindText:
		return true
	default:
		return false
	}
}
