package shape

import "strings"

// Preset is one entry of the tool palette offered to the user.
type Preset struct {
	Name string
	Tool Tool
}

var presets = []Preset{
	{Name: "rectangle", Tool: NewRectangle(true, true)},
	{Name: "hollow-rectangle", Tool: NewRectangle(false, true)},
	{Name: "ellipse", Tool: NewEllipse(true)},
	{Name: "hollow-ellipse", Tool: NewEllipse(false)},
	{Name: "freehand", Tool: NewFreeHand()},
	{Name: "line", Tool: NewLine()},
	{Name: "arrow", Tool: NewArrow()},
	{Name: "highlighter", Tool: NewRectangle(true, false)},
	{Name: "text", Tool: NewText()},
}

// Presets returns the palette in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ToolByName looks a preset up by name, case-insensitively.
func ToolByName(name string) (Tool, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == name {
			return p.Tool, true
		}
	}
	return Tool{}, false
}

// Name returns the palette name for t. Hollow rectangles ignore the opaque flag.
func (t Tool) Name() string {
	if t.Kind == KindRectangle && !t.Rectangle.Filled {
		return "hollow-rectangle"
	}
	for _, p := range presets {
		if p.Tool.SameKind(t) {
			return p.Name
		}
	}
	return t.Kind.String()
}
