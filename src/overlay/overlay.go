// Package overlay hosts a session on screen: it shows the preview, turns OS
// input into session messages and returns once the session asks to close.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"unicode"

	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/session"
	"screen-annotate/src/shape"
)

// ErrUnsupported is returned by Run on platforms without a host window.
var ErrUnsupported = errors.New("interactive capture not implemented for this platform")

// Surface is owned by the event loop. Run blocks and must only be called
// from one goroutine at a time.
type Surface interface {
	Run(ctx context.Context, s *session.Session) error
}

// Options places the surface over one monitor, in physical virtual-screen
// pixels. Space enters draw mode with DefaultTool.
type Options struct {
	Bounds      image.Rectangle
	DefaultTool shape.Tool
}

// New returns the platform implementation.
func New(opts Options) Surface {
	return newSurface(opts)
}

// Virtual-key codes understood by TranslateKey. They match the Win32 values.
const (
	vkBack     = 0x08
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkEscape   = 0x1B
	vkSpace    = 0x20
	vk1        = 0x31
	vk9        = 0x39
	vkC        = 0x43
	vkZ        = 0x5A
	vkAdd      = 0x6B
	vkSubtract = 0x6D
	vkOemPlus  = 0xBB
	vkOemMinus = 0xBD
)

// KeyState is what TranslateKey needs to know about the session and the
// modifier keys when a key goes down.
type KeyState struct {
	Ctrl        bool
	Drawing     bool
	TextFocus   bool
	Color       shape.Color
	Size        int
	DefaultTool shape.Tool
}

// StateOf reads the key-relevant part of a session.
func StateOf(s *session.Session, ctrl bool) KeyState {
	m := s.Mode()
	return KeyState{
		Ctrl:      ctrl,
		Drawing:   m.IsDraw(),
		TextFocus: m.IsDraw() && m.Draw.Element.Tool.IsText() && m.Draw.State.WaitingForText(),
		Color:     s.Color(),
		Size:      s.Size(),
	}
}

// TranslateKey maps a key-down to a message, or nil when the key does nothing.
// While text has focus only Escape, Enter and Backspace are handled here;
// printable input arrives through TranslateChar.
func TranslateKey(vk uint32, ks KeyState) messages.Message {
	switch vk {
	case vkEscape:
		return messages.Cancel{}
	case vkReturn:
		return messages.Done{}
	}
	if ks.TextFocus {
		if vk == vkBack {
			return messages.EraseText{}
		}
		return nil
	}

	switch {
	case vk == vkZ && ks.Ctrl:
		return messages.Undo{}
	case vk == vkTab:
		return messages.ToggleToolbar{}
	case vk == vkSpace && !ks.Drawing:
		return messages.ChangeTool{Tool: ks.DefaultTool}
	case vk >= vk1 && vk <= vk9:
		presets := shape.Presets()
		i := int(vk - vk1)
		if i >= len(presets) {
			return nil
		}
		return messages.ChangeTool{Tool: presets[i].Tool}
	case vk == vkOemPlus || vk == vkAdd:
		return messages.ChangeSize{Size: shape.ClampSize(ks.Size + 1)}
	case vk == vkOemMinus || vk == vkSubtract:
		return messages.ChangeSize{Size: shape.ClampSize(ks.Size - 1)}
	case vk == vkC:
		return messages.ChangeColor{Color: nextColor(ks.Color)}
	}
	return nil
}

// TranslateChar maps a typed character to AppendText when text has focus.
func TranslateChar(r rune, ks KeyState) messages.Message {
	if !ks.TextFocus || !unicode.IsPrint(r) {
		return nil
	}
	return messages.AppendText{Text: string(r)}
}

func nextColor(c shape.Color) shape.Color {
	colors := shape.Colors()
	for i, candidate := range colors {
		if candidate == c {
			return colors[(i+1)%len(colors)]
		}
	}
	return colors[0]
}

// escapeFilter turns Escape key-downs and async key polls into at most one
// Cancel per physical press. A second Cancel would close the session after
// the first one left Draw mode.
type escapeFilter struct {
	wasDown bool
	// handled is set when a key-down Escape was dispatched since the last poll.
	handled bool
}

// keyDown reports whether a WM_KEYDOWN for Escape should cancel. Auto-repeat
// key-downs never do.
func (f *escapeFilter) keyDown(repeat bool) bool {
	if repeat {
		return false
	}
	f.handled = true
	return true
}

// poll reports whether an async Escape state seen on a timer tick should
// cancel. Polling only covers the case where the surface lacks keyboard
// focus; a press already delivered as a key-down is never repeated.
func (f *escapeFilter) poll(down, pressedSinceLast, foreground bool) bool {
	fire := !foreground && !f.handled && !f.wasDown && (down || pressedSinceLast)
	f.wasDown = down
	f.handled = false
	return fire
}

// isRepeat reads the previous-key-state bit of a WM_KEYDOWN lParam.
func isRepeat(lParam uintptr) bool { return lParam&(1<<30) != 0 }

// Logical converts a client-area position in physical pixels to session space.
func Logical(x, y int32, scale float64) geometry.Point {
	if scale <= 0 {
		scale = 1
	}
	return geometry.Pt(float64(x)/scale, float64(y)/scale)
}

// Hints are the help lines painted over the preview.
func Hints(s *session.Session) []string {
	m := s.Mode()
	first := s.Description()
	switch {
	case m.IsCrop():
		return []string{first, "Click a window or drag an area   SPACE or 1-9 draw   ENTER save   ESC cancel"}
	case StateOf(s, false).TextFocus:
		return []string{first, "Type text   BACKSPACE erase   ENTER done   ESC discard"}
	default:
		return []string{
			fmt.Sprintf("%s   %s, size %d", first, s.Color(), s.Size()),
			"1-9 tool   +/- size   C colour   CTRL+Z undo   TAB move hints   ENTER done   ESC discard",
		}
	}
}
