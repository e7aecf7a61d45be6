// Package fonts hands out font faces for annotation text and UI labels.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	parseOnce sync.Once
	parsed    *opentype.Font
	parseErr  error

	mu    sync.Mutex
	faces = map[float64]font.Face{}
)

func regular() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Face returns the annotation face at size pixels. Faces are cached per size
// and are not safe for concurrent drawing.
func Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	mu.Lock()
	defer mu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	otf, err := regular()
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	faces[size] = face
	return face, nil
}

// Label is the fixed bitmap face used for dimension readouts.
func Label() font.Face { return basicfont.Face7x13 }

// Ascent is the distance from the top of the line to the baseline.
func Ascent(face font.Face) fixed.Int26_6 {
	return face.Metrics().Ascent
}
