package selection

import (
	"image"
	"math"

	"screen-annotate/src/geometry"
)

// LogicalBounds maps a window's physical box to logical pixels. Negative
// origins are clamped to the monitor edge.
func LogicalBounds(physical image.Rectangle, scale float64) geometry.Rect {
	return geometry.Rect{
		Min: geometry.Pt(math.Max(float64(physical.Min.X), 0)/scale, math.Max(float64(physical.Min.Y), 0)/scale),
		Max: geometry.Pt(float64(physical.Max.X)/scale, float64(physical.Max.Y)/scale),
	}
}

// HitTest returns the index of the first window whose logical box contains
// cursor, or -1. Windows are tested in list order; no z-order is tracked, so
// overlapping windows resolve to whichever was enumerated first.
func HitTest(cursor geometry.Point, windows []image.Rectangle, scale float64) int {
	for i, w := range windows {
		if LogicalBounds(w, scale).Contains(cursor) {
			return i
		}
	}
	return -1
}

// SelectBelowCursor re-runs the hit-test for Crop mode and sets the box to the
// matching window, or to the whole screen. screen is the physical size of the
// monitor bitmap. It does nothing in Draw mode.
func (m *Mode) SelectBelowCursor(cursor geometry.Point, windows []image.Rectangle, scale float64, screen image.Point) {
	if m.Kind != ModeCrop {
		return
	}
	c := &m.Crop
	if i := HitTest(cursor, windows, scale); i >= 0 {
		box := LogicalBounds(windows[i], scale)
		c.TopLeft, c.BottomRight = box.Min, box.Max
		c.Size = box.Size()
		c.State = CropState{Kind: CropWindow, Window: i}
		return
	}
	c.TopLeft = geometry.Point{}
	c.BottomRight = geometry.Pt(float64(screen.X)/scale, float64(screen.Y)/scale)
	c.Size = geometry.Size{Width: c.BottomRight.X, Height: c.BottomRight.Y}
	c.State = CropState{Kind: CropFullScreen}
}
