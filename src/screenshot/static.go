package screenshot

import (
	"fmt"
	"image"
	"image/draw"
)

// StaticProvider serves a fixed bitmap as monitor 0. The headless CLI and
// tests use it in place of a real desktop.
type StaticProvider struct {
	Image   *image.RGBA
	Scale   float64
	Windows []Window
}

func NewStaticProvider(img image.Image, scale float64) *StaticProvider {
	return &StaticProvider{Image: ToRGBA(img), Scale: scale}
}

func (p *StaticProvider) NumMonitors() int {
	if p.Image == nil {
		return 0
	}
	return 1
}

func (p *StaticProvider) MonitorBounds(i int) (image.Rectangle, error) {
	if i != 0 || p.Image == nil {
		return image.Rectangle{}, fmt.Errorf("monitor %d not available", i)
	}
	return p.Image.Bounds(), nil
}

func (p *StaticProvider) MonitorAt(image.Point) int { return 0 }

func (p *StaticProvider) CaptureMonitor(i int) (*image.RGBA, error) {
	if i != 0 || p.Image == nil {
		return nil, fmt.Errorf("monitor %d not available", i)
	}
	return p.Image, nil
}

func (p *StaticProvider) EnumerateWindows(i int) ([]Window, error) {
	if i != 0 {
		return nil, fmt.Errorf("monitor %d not available", i)
	}
	return p.Windows, nil
}

// CaptureWindow cuts the window's rectangle out of the static bitmap.
func (p *StaticProvider) CaptureWindow(i int, w Window) (*image.RGBA, error) {
	if i != 0 || p.Image == nil {
		return nil, fmt.Errorf("monitor %d not available", i)
	}
	out := image.NewRGBA(image.Rect(0, 0, w.Bounds.Dx(), w.Bounds.Dy()))
	draw.Draw(out, out.Bounds(), p.Image, w.Bounds.Min, draw.Src)
	return out, nil
}

func (p *StaticProvider) ScaleFactor(int) (float64, error) {
	if p.Scale <= 0 {
		return 1, nil
	}
	return p.Scale, nil
}

// ToRGBA returns img as an *image.RGBA rooted at (0,0), copying if needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
