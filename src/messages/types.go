package messages

import (
	"screen-annotate/src/geometry"
	"screen-annotate/src/shape"
)

// Message is the base interface for all input events delivered to a session.
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypePointerMoved    = "PointerMoved"
	TypePointerPressed  = "PointerPressed"
	TypePointerReleased = "PointerReleased"
	TypeDone            = "Done"
	TypeCancel          = "Cancel"
	TypeUndo            = "Undo"
	TypeChangeTool      = "ChangeTool"
	TypeChangeSize      = "ChangeSize"
	TypeChangeColor     = "ChangeColor"
	TypeUpdateText      = "UpdateText"
	TypeAppendText      = "AppendText"
	TypeEraseText       = "EraseText"
	TypeToggleToolbar   = "ToggleToolbar"
)

// PointerMoved - cursor moved to Position (logical pixels)
type PointerMoved struct {
	Position geometry.Point
}

func (m PointerMoved) Type() string { return TypePointerMoved }

// PointerPressed - primary button went down at the last known cursor position
type PointerPressed struct{}

func (m PointerPressed) Type() string { return TypePointerPressed }

// PointerReleased - primary button went up
type PointerReleased struct{}

func (m PointerReleased) Type() string { return TypePointerReleased }

// Done - confirm the current mode (leave draw mode, or finish the capture)
type Done struct{}

func (m Done) Type() string { return TypeDone }

// Cancel - discard annotations in draw mode, abort the capture in crop mode
type Cancel struct{}

func (m Cancel) Type() string { return TypeCancel }

// Undo - drop the last committed shape
type Undo struct{}

func (m Undo) Type() string { return TypeUndo }

// ChangeTool - switch to Tool, entering draw mode if needed
type ChangeTool struct {
	Tool shape.Tool
}

func (m ChangeTool) Type() string { return TypeChangeTool }

// ChangeSize - stroke width / font size selector (1-5)
type ChangeSize struct {
	Size int
}

func (m ChangeSize) Type() string { return TypeChangeSize }

// ChangeColor - swatch selector
type ChangeColor struct {
	Color shape.Color
}

func (m ChangeColor) Type() string { return TypeChangeColor }

// UpdateText - replaces the content of the active text tool
type UpdateText struct {
	Text string
}

func (m UpdateText) Type() string { return TypeUpdateText }

// AppendText - typed characters for the active text tool
type AppendText struct {
	Text string
}

func (m AppendText) Type() string { return TypeAppendText }

// EraseText - backspace on the active text tool
type EraseText struct{}

func (m EraseText) Type() string { return TypeEraseText }

// ToggleToolbar - move the host toolbar between the top and bottom edge
type ToggleToolbar struct{}

func (m ToggleToolbar) Type() string { return TypeToggleToolbar }
