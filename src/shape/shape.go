// Package shape is the annotation model: a Tool union plus the colour and
// size selected when it was drawn.
package shape

const (
	StrokeWidthFactor = 2
	FontSizeFactor    = 12

	MinSize     = 1
	MaxSize     = 5
	DefaultSize = 3
)

// Shape is a value type. Once committed to a session it is never mutated.
type Shape struct {
	Tool  Tool
	Color Color
	Size  int
}

// Default is a filled opaque red rectangle at the default size.
func Default() Shape {
	return Shape{Tool: NewRectangle(true, true), Color: Red, Size: DefaultSize}
}

func (s Shape) Clone() Shape {
	s.Tool = s.Tool.Clone()
	return s
}

// StrokeWidth is in the same pixel space as the tool geometry before scaling.
func (s Shape) StrokeWidth() float64 { return float64(s.Size * StrokeWidthFactor) }

func (s Shape) FontSize() float64 { return float64(s.Size * FontSizeFactor) }

// ClampSize keeps a size selector inside [MinSize, MaxSize].
func ClampSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}
