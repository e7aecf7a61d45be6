// Package selection holds the capture state machine: whether gestures annotate
// (Draw) or select the capture area (Crop), and the sub-state of each.
package selection

import (
	"screen-annotate/src/geometry"
	"screen-annotate/src/shape"
)

type CropKind int

const (
	CropFullScreen CropKind = iota
	CropWindow
	CropInProgress
	CropArea
	CropNone
)

func (k CropKind) String() string {
	switch k {
	case CropFullScreen:
		return "fullscreen"
	case CropWindow:
		return "window"
	case CropInProgress:
		return "in-progress"
	case CropArea:
		return "area"
	case CropNone:
		return "none"
	default:
		return "unknown"
	}
}

// CropState is the crop sub-state. Window is an index into the session's
// window list and is only meaningful for CropWindow; Start/End only for
// CropInProgress.
type CropState struct {
	Kind   CropKind
	Window int
	Start  geometry.Point
	End    geometry.Point
}

// Idle reports whether no drag is running.
func (s CropState) Idle() bool { return s.Kind != CropInProgress }

type DrawKind int

const (
	DrawIdle DrawKind = iota
	DrawInProgress
	DrawWaitingForText
)

type DrawState struct {
	Kind    DrawKind
	Initial geometry.Point
	Final   geometry.Point
}

func (s DrawState) Idle() bool { return s.Kind != DrawInProgress }

func (s DrawState) WaitingForText() bool { return s.Kind == DrawWaitingForText }

// Crop mode payload. TopLeft/BottomRight are kept normalised.
type Crop struct {
	TopLeft     geometry.Point
	BottomRight geometry.Point
	Size        geometry.Size
	State       CropState
}

// Draw mode payload: the shape being drawn and the drag sub-state.
type Draw struct {
	Element shape.Shape
	State   DrawState
}

type ModeKind int

const (
	ModeCrop ModeKind = iota
	ModeDraw
)

// Mode is exactly one of Crop or Draw; the inactive payload is kept zero.
type Mode struct {
	Kind ModeKind
	Crop Crop
	Draw Draw
}

// Default is Crop{FullScreen} with an empty box; callers run the hit-test to
// fill in the box.
func Default() Mode {
	return Mode{Kind: ModeCrop}
}

func (m Mode) IsDraw() bool { return m.Kind == ModeDraw }

func (m Mode) IsCrop() bool { return m.Kind == ModeCrop }

// EnterDraw switches to Draw mode with an idle sub-state.
func (m *Mode) EnterDraw(element shape.Shape) {
	*m = Mode{Kind: ModeDraw, Draw: Draw{Element: element}}
}

// EnterCrop switches to the default Crop mode.
func (m *Mode) EnterCrop() {
	*m = Default()
}

// StartDrag begins a manual crop drag at p.
func (c *Crop) StartDrag(p geometry.Point) {
	c.TopLeft = p
	c.BottomRight = p
	c.Size = geometry.Size{}
	c.State = CropState{Kind: CropInProgress, Start: p, End: p}
}

// Track moves the end of a running crop drag and renormalises the box.
func (c *Crop) Track(p geometry.Point) {
	if c.State.Kind != CropInProgress {
		return
	}
	c.State.End = p
	c.TopLeft, c.BottomRight = geometry.Normalize(c.State.Start, p)
	c.Size = geometry.Size{Width: c.BottomRight.X - c.TopLeft.X, Height: c.BottomRight.Y - c.TopLeft.Y}
}

// Box returns the current selection rectangle in logical pixels.
func (c Crop) Box() geometry.Rect {
	return geometry.Rect{Min: c.TopLeft, Max: c.BottomRight}
}

// AllowsDrawing reports whether the in-progress shape should be shown: it
// is valid, or it is a text tool waiting for input.
func (m Mode) AllowsDrawing() bool {
	if m.Kind != ModeDraw {
		return false
	}
	tool := m.Draw.Element.Tool
	return tool.IsValid() || (tool.IsText() && m.Draw.State.WaitingForText())
}
