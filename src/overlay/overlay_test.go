package overlay

import (
	"context"
	"errors"
	"image"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/shape"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	s, err := session.New(screenshot.NewStaticProvider(img, 1), session.Options{})
	require.NoError(t, err)
	return s
}

func TestTranslateKey(t *testing.T) {
	ks := KeyState{Color: shape.Red, Size: 3}
	presets := shape.Presets()

	tests := []struct {
		name string
		vk   uint32
		ks   KeyState
		want messages.Message
	}{
		{"escape", vkEscape, ks, messages.Cancel{}},
		{"enter", vkReturn, ks, messages.Done{}},
		{"ctrl z", vkZ, KeyState{Ctrl: true, Size: 3}, messages.Undo{}},
		{"plain z", vkZ, ks, nil},
		{"tab", vkTab, ks, messages.ToggleToolbar{}},
		{"space enters draw", vkSpace, KeyState{DefaultTool: shape.NewArrow()}, messages.ChangeTool{Tool: shape.NewArrow()}},
		{"space while drawing", vkSpace, KeyState{Drawing: true, DefaultTool: shape.NewArrow()}, nil},
		{"first preset", vk1, ks, messages.ChangeTool{Tool: presets[0].Tool}},
		{"last preset", vk9, ks, messages.ChangeTool{Tool: presets[8].Tool}},
		{"bigger", vkOemPlus, ks, messages.ChangeSize{Size: 4}},
		{"bigger numpad", vkAdd, ks, messages.ChangeSize{Size: 4}},
		{"smaller", vkOemMinus, ks, messages.ChangeSize{Size: 2}},
		{"bigger at max", vkOemPlus, KeyState{Size: shape.MaxSize}, messages.ChangeSize{Size: shape.MaxSize}},
		{"smaller at min", vkSubtract, KeyState{Size: shape.MinSize}, messages.ChangeSize{Size: shape.MinSize}},
		{"colour", vkC, ks, messages.ChangeColor{Color: shape.Green}},
		{"colour wraps", vkC, KeyState{Color: shape.White, Size: 3}, messages.ChangeColor{Color: shape.Red}},
		{"backspace outside text", vkBack, ks, nil},
		{"text backspace", vkBack, KeyState{TextFocus: true}, messages.EraseText{}},
		{"text escape", vkEscape, KeyState{TextFocus: true}, messages.Cancel{}},
		{"text enter", vkReturn, KeyState{TextFocus: true}, messages.Done{}},
		{"text digit goes to WM_CHAR", vk1, KeyState{TextFocus: true}, nil},
		{"text ctrl z", vkZ, KeyState{TextFocus: true, Ctrl: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateKey(tt.vk, tt.ks))
		})
	}
}

func TestTranslateChar(t *testing.T) {
	focus := KeyState{TextFocus: true}
	assert.Equal(t, messages.AppendText{Text: "a"}, TranslateChar('a', focus))
	assert.Equal(t, messages.AppendText{Text: "é"}, TranslateChar('é', focus))
	assert.Nil(t, TranslateChar('\b', focus))
	assert.Nil(t, TranslateChar('\r', focus))
	assert.Nil(t, TranslateChar('a', KeyState{}))
}

func TestLogical(t *testing.T) {
	assert.Equal(t, geometry.Pt(50, 25), Logical(100, 50, 2))
	assert.Equal(t, geometry.Pt(100, 50), Logical(100, 50, 1))
	assert.Equal(t, geometry.Pt(100, 50), Logical(100, 50, 0))
}

func TestStateOfTracksTextFocus(t *testing.T) {
	s := newSession(t)
	assert.False(t, StateOf(s, false).TextFocus)
	assert.False(t, StateOf(s, false).Drawing)

	s.Apply(messages.ChangeTool{Tool: shape.NewText()})
	s.Apply(messages.PointerMoved{Position: geometry.Pt(10, 10)})
	s.Apply(messages.PointerPressed{})
	req := s.Apply(messages.PointerReleased{})
	require.Equal(t, session.RequestFocusText, req)

	ks := StateOf(s, true)
	assert.True(t, ks.TextFocus)
	assert.True(t, ks.Ctrl)
	assert.Equal(t, s.Size(), ks.Size)

	s.Apply(messages.Done{})
	assert.False(t, StateOf(s, false).TextFocus)
}

func TestHints(t *testing.T) {
	s := newSession(t)
	lines := Hints(s)
	require.Len(t, lines, 2)
	assert.Equal(t, "Fullscreen", lines[0])
	assert.Contains(t, lines[1], "ESC cancel")

	s.Apply(messages.ChangeTool{Tool: shape.NewArrow()})
	lines = Hints(s)
	assert.True(t, strings.HasPrefix(lines[0], "arrow"), lines[0])
	assert.Contains(t, lines[0], "red, size 3")
	assert.Contains(t, lines[1], "CTRL+Z undo")
}

func TestRunUnsupportedOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a desktop session on Windows")
	}
	err := New(Options{}).Run(context.Background(), newSession(t))
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestEscapeFilterIgnoresAutoRepeat(t *testing.T) {
	var f escapeFilter
	assert.True(t, f.keyDown(false))
	assert.False(t, f.keyDown(true))
	assert.False(t, f.keyDown(true))

	assert.True(t, isRepeat(1<<30|1))
	assert.False(t, isRepeat(1))
}

func TestEscapeFilterPollAfterKeyDown(t *testing.T) {
	var f escapeFilter
	require.True(t, f.keyDown(false))
	// Key already released, but the async state still reports the press.
	assert.False(t, f.poll(false, true, true), "focused surface must not cancel twice")

	f = escapeFilter{}
	require.True(t, f.keyDown(false))
	assert.False(t, f.poll(false, true, false), "a delivered key-down is never repeated by the poll")
	assert.False(t, f.poll(false, false, false))
}

func TestEscapeFilterPollWithoutFocus(t *testing.T) {
	var f escapeFilter
	assert.True(t, f.poll(true, true, false))
	assert.False(t, f.poll(true, false, false), "held key cancels once")
	assert.False(t, f.poll(false, false, false))
	assert.True(t, f.poll(false, true, false), "a quick tap between ticks still counts")
	assert.False(t, f.poll(true, true, true), "foreground surface relies on key-downs")
}

// One Escape press in draw mode must only leave draw mode, not close the
// session, even when both the key-down and the poll observe it.
func TestSingleEscapeInDrawModeKeepsSession(t *testing.T) {
	s := newSession(t)
	s.Apply(messages.ChangeTool{Tool: shape.NewArrow()})
	require.True(t, s.Mode().IsDraw())

	var f escapeFilter
	deliver := func(fire bool) session.Request {
		if !fire {
			return session.RequestNone
		}
		return s.Apply(TranslateKey(vkEscape, StateOf(s, false)))
	}

	assert.Equal(t, session.RequestNone, deliver(f.keyDown(false)))
	assert.Equal(t, session.RequestNone, deliver(f.keyDown(true)))
	assert.Equal(t, session.RequestNone, deliver(f.poll(false, true, true)))
	assert.Equal(t, session.RequestNone, deliver(f.poll(false, false, false)))
	assert.True(t, s.Mode().IsCrop())
	assert.NotEqual(t, "Exiting", s.Description())
}
