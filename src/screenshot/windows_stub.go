//go:build !windows

package screenshot

import "image"

// Window enumeration needs the native window manager; elsewhere only the
// full monitor is offered.
func enumerateWindows(image.Rectangle) ([]Window, error) {
	return nil, nil
}

func systemScaleFactor() (float64, error) { return 1, nil }

// CursorPosition is unavailable outside Windows.
func CursorPosition() (image.Point, bool) { return image.Point{}, false }
