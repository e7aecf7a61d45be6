package session

import (
	"log"

	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/selection"
	"screen-annotate/src/shape"
)

// Request is what the host should do after an event has been applied.
type Request int

const (
	RequestNone Request = iota
	// RequestClose asks the host to tear down the capture surface.
	RequestClose
	// RequestFocusText asks the host to route keystrokes to the text tool.
	RequestFocusText
)

func (r Request) String() string {
	switch r {
	case RequestClose:
		return "close"
	case RequestFocusText:
		return "focus-text"
	default:
		return "none"
	}
}

// Apply feeds one input event into the session. Every event is accepted in
// every state; events that make no sense in the current mode are ignored.
func (s *Session) Apply(msg messages.Message) Request {
	if s.finalized || msg == nil {
		return RequestNone
	}
	if s.mode.IsCrop() && s.mode.Crop.State.Kind == selection.CropNone {
		return RequestNone
	}

	switch m := msg.(type) {
	case messages.PointerMoved:
		s.pointerMoved(m.Position)
	case messages.PointerPressed:
		s.pointerPressed()
	case messages.PointerReleased:
		return s.pointerReleased()
	case messages.Done:
		return s.done()
	case messages.Cancel:
		return s.cancel()
	case messages.Undo:
		s.undo()
	case messages.ChangeTool:
		s.changeTool(m.Tool)
	case messages.ChangeSize:
		if s.mode.IsDraw() {
			s.flush()
			s.size = shape.ClampSize(m.Size)
			s.mode.Draw.Element.Size = s.size
		}
	case messages.ChangeColor:
		if s.mode.IsDraw() {
			s.flush()
			s.color = m.Color
			s.mode.Draw.Element.Color = s.color
		}
	case messages.UpdateText:
		if t := s.textTool(); t != nil {
			t.SetText(m.Text)
		}
	case messages.AppendText:
		if t := s.textTool(); t != nil {
			t.SetText(t.Text.Text + m.Text)
		}
	case messages.EraseText:
		if t := s.textTool(); t != nil {
			r := []rune(t.Text.Text)
			if len(r) > 0 {
				t.SetText(string(r[:len(r)-1]))
			}
		}
	case messages.ToggleToolbar:
		s.toolbarAtTop = !s.toolbarAtTop
	default:
		log.Printf("Session %s: ignoring unknown event %s", s.ID, msg.Type())
	}
	return RequestNone
}

func (s *Session) pointerMoved(p geometry.Point) {
	s.cursor = p
	if s.mode.IsDraw() {
		d := &s.mode.Draw
		if d.State.Kind == selection.DrawInProgress && !d.Element.Tool.IsText() {
			d.Element.Tool.Update(d.State.Initial, p)
			d.State.Final = p
		}
		return
	}
	switch s.mode.Crop.State.Kind {
	case selection.CropInProgress:
		s.mode.Crop.Track(p)
	case selection.CropFullScreen, selection.CropWindow:
		s.hitTest()
	}
}

func (s *Session) pointerPressed() {
	if s.mode.IsCrop() {
		if s.mode.Crop.State.Kind != selection.CropInProgress {
			s.mode.Crop.StartDrag(s.cursor)
		}
		return
	}
	d := &s.mode.Draw
	if d.Element.Tool.IsText() && d.Element.Tool.IsValid() {
		s.commit()
	}
	d.Element.Tool.Initiate(s.cursor)
	d.State = selection.DrawState{Kind: selection.DrawInProgress, Initial: s.cursor, Final: s.cursor}
}

func (s *Session) pointerReleased() Request {
	if s.mode.IsCrop() {
		c := &s.mode.Crop
		if c.State.Kind != selection.CropInProgress {
			return RequestNone
		}
		if c.State.Start == c.State.End {
			c.State = selection.CropState{Kind: selection.CropFullScreen}
			s.hitTest()
			return RequestNone
		}
		c.State = selection.CropState{Kind: selection.CropArea}
		log.Printf("Session %s: area selected %s", s.ID, s.Description())
		return RequestNone
	}

	d := &s.mode.Draw
	if d.State.Kind != selection.DrawInProgress {
		return RequestNone
	}
	if d.Element.Tool.IsText() {
		d.State = selection.DrawState{Kind: selection.DrawWaitingForText}
		return RequestFocusText
	}
	if d.Element.Tool.IsValid() {
		s.commit()
	} else {
		d.Element.Tool.Reset()
	}
	d.State = selection.DrawState{}
	return RequestNone
}

func (s *Session) done() Request {
	if s.mode.IsCrop() {
		return RequestClose
	}
	s.leaveDraw(true)
	return RequestNone
}

func (s *Session) cancel() Request {
	if s.mode.IsCrop() {
		s.mode.Crop.State = selection.CropState{Kind: selection.CropNone}
		log.Printf("Session %s: cancelled", s.ID)
		return RequestClose
	}
	s.shapes = nil
	s.cache.Clear()
	s.leaveDraw(false)
	return RequestNone
}

func (s *Session) undo() {
	if !s.mode.IsDraw() || len(s.shapes) == 0 {
		return
	}
	s.shapes = s.shapes[:len(s.shapes)-1]
	s.cache.Clear()
}

func (s *Session) changeTool(t shape.Tool) {
	if s.mode.IsDraw() {
		s.flush()
	}
	t = t.Clone()
	t.Reset()
	s.mode.EnterDraw(shape.Shape{Tool: t, Color: s.color, Size: s.size})
}

// leaveDraw returns to crop mode at the current cursor. keepText commits a
// non-empty text tool first.
func (s *Session) leaveDraw(keepText bool) {
	if keepText {
		if el := s.mode.Draw.Element; el.Tool.IsText() && el.Tool.IsValid() {
			s.commit()
		}
	}
	s.mode.EnterCrop()
	s.hitTest()
}

// flush commits the in-progress shape if it is valid, then resets the tool
// and goes idle.
func (s *Session) flush() {
	d := &s.mode.Draw
	if d.Element.Tool.IsValid() {
		s.commit()
	} else {
		d.Element.Tool.Reset()
	}
	d.State = selection.DrawState{}
}

// commit pushes the current element and resets the tool. The preview cache is
// invalidated in the same step.
func (s *Session) commit() {
	d := &s.mode.Draw
	s.shapes = append(s.shapes, d.Element.Clone())
	s.cache.Clear()
	d.Element.Tool.Reset()
}

func (s *Session) textTool() *shape.Tool {
	if !s.mode.IsDraw() || !s.mode.Draw.Element.Tool.IsText() {
		return nil
	}
	return &s.mode.Draw.Element.Tool
}
