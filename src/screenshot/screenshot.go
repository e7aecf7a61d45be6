package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"
)

// Window describes a top-level window found on a monitor. Bounds are physical
// pixels relative to the monitor's top-left corner.
type Window struct {
	Name   string
	Bounds image.Rectangle
	// Handle is the native window handle, zero when unknown.
	Handle uintptr
}

// Provider captures monitors and windows of the local desktop.
type Provider struct {
	// ScaleOverride replaces the detected monitor scale factor when > 0.
	ScaleOverride float64
}

func NewProvider() *Provider { return &Provider{} }

func (p *Provider) NumMonitors() int { return screenshot.NumActiveDisplays() }

// MonitorBounds returns the bounds of monitor i in virtual-screen coordinates.
func (p *Provider) MonitorBounds(i int) (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	if i < 0 || i >= n {
		return image.Rectangle{}, fmt.Errorf("monitor %d out of range (%d active)", i, n)
	}
	return screenshot.GetDisplayBounds(i), nil
}

// MonitorAt returns the index of the monitor containing pt, or 0.
func (p *Provider) MonitorAt(pt image.Point) int {
	n := screenshot.NumActiveDisplays()
	for i := 0; i < n; i++ {
		if pt.In(screenshot.GetDisplayBounds(i)) {
			return i
		}
	}
	return 0
}

// CaptureMonitor grabs the whole of monitor i.
func (p *Provider) CaptureMonitor(i int) (*image.RGBA, error) {
	bounds, err := p.MonitorBounds(i)
	if err != nil {
		return nil, err
	}
	return CaptureRegion(bounds)
}

// EnumerateWindows lists visible, titled, non-minimised windows that
// intersect monitor i.
func (p *Provider) EnumerateWindows(i int) ([]Window, error) {
	bounds, err := p.MonitorBounds(i)
	if err != nil {
		return nil, err
	}
	return enumerateWindows(bounds)
}

// CaptureWindow grabs the on-screen pixels of w, which must come from
// EnumerateWindows for the same monitor. The copy is of the screen
// rectangle, so any part of w covered by another window shows that window.
func (p *Provider) CaptureWindow(i int, w Window) (*image.RGBA, error) {
	bounds, err := p.MonitorBounds(i)
	if err != nil {
		return nil, err
	}
	img, err := CaptureRegion(w.Bounds.Add(bounds.Min))
	if err != nil {
		return nil, fmt.Errorf("failed to capture window %q: %w", w.Name, err)
	}
	return img, nil
}

// ScaleFactor returns the physical-to-logical pixel ratio of monitor i.
func (p *Provider) ScaleFactor(i int) (float64, error) {
	if p.ScaleOverride > 0 {
		return p.ScaleOverride, nil
	}
	if _, err := p.MonitorBounds(i); err != nil {
		return 0, err
	}
	return systemScaleFactor()
}

// CaptureRegion captures a rectangle of the virtual screen. The result is
// rebased so that its bounds start at (0,0).
func CaptureRegion(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Dx(), r.Dy())
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	img.Rect = img.Rect.Sub(img.Rect.Min)
	return img, nil
}

// EncodePNG converts an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG reads a PNG into an RGBA buffer rooted at (0,0).
func DecodePNG(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return ToRGBA(img), nil
}
