package clipboard

import (
	"image"
	"testing"
)

func TestWriteImage(t *testing.T) {
	// Needs a clipboard; only check it does not panic.
	err := WriteImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Logf("Failed to write image to clipboard: %v", err)
	}
}

func TestWrite(t *testing.T) {
	err := Write("/tmp/Capture.png")
	if err != nil {
		t.Logf("Failed to write to clipboard: %v", err)
	}
}
