package shape

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is one of the six fixed swatches.
type Color int

const (
	Red Color = iota
	Green
	Blue
	Yellow
	Black
	White
)

// TranslucentAlpha is the fill opacity of non-opaque rectangles.
const TranslucentAlpha = 0.3

var allColors = []Color{Red, Green, Blue, Yellow, Black, White}

func Colors() []Color {
	out := make([]Color, len(allColors))
	copy(out, allColors)
	return out
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

func (c Color) RGBA() color.RGBA {
	switch c {
	case Green:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case Blue:
		return color.RGBA{R: 0, G: 0, B: 255, A: 255}
	case Yellow:
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	case Black:
		return color.RGBA{R: 0, G: 0, B: 0, A: 255}
	case White:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	default:
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	}
}

// Translucent returns the swatch with TranslucentAlpha applied.
func (c Color) Translucent() color.NRGBA {
	rgba := c.RGBA()
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: uint8(TranslucentAlpha*255 + 0.5)}
}

// Hex renders the swatch as #RRGGBB.
func (c Color) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
}

func ColorByName(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range allColors {
		if c.String() == name {
			return c, true
		}
	}
	return Red, false
}
