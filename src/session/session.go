// Package session owns the state of one capture-and-annotate interaction:
// the captured bitmaps, the selection mode, the committed shapes and the
// preview cache. Input events are applied serially through Apply.
package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"screen-annotate/src/canvas"
	"screen-annotate/src/geometry"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/selection"
	"screen-annotate/src/shape"
)

var (
	ErrNoMonitor   = errors.New("monitor not available")
	ErrScaleFactor = errors.New("scale factor unavailable")
	ErrCapture     = errors.New("capture failed")
	ErrFinalized   = errors.New("session already finalized")
)

// Provider supplies the bitmaps a session is built from. It is queried only
// inside New.
type Provider interface {
	NumMonitors() int
	CaptureMonitor(monitor int) (*image.RGBA, error)
	EnumerateWindows(monitor int) ([]screenshot.Window, error)
	CaptureWindow(monitor int, w screenshot.Window) (*image.RGBA, error)
	ScaleFactor(monitor int) (float64, error)
}

// Window is a detected window with the bitmap captured for it. Bounds are
// physical pixels relative to the monitor origin.
type Window struct {
	Name   string
	Bounds image.Rectangle
	Image  *image.RGBA
}

type Options struct {
	Monitor int
	// ScaleFactor overrides the provider's value when > 0.
	ScaleFactor float64
	// Cursor is the initial pointer position in logical pixels.
	Cursor geometry.Point
	// Color and Size seed the style of shapes drawn in this session.
	Color shape.Color
	Size  int
}

type Session struct {
	ID string

	base        *image.RGBA
	previewBase *image.RGBA
	windows     []Window
	scale       float64

	cursor geometry.Point
	mode   selection.Mode
	shapes []shape.Shape
	cache  *canvas.Cache

	color        shape.Color
	size         int
	toolbarAtTop bool
	finalized    bool
}

// New captures monitor opts.Monitor and the windows on it. Any failure aborts
// creation; no partial session is returned.
func New(p Provider, opts Options) (*Session, error) {
	if opts.Monitor < 0 || opts.Monitor >= p.NumMonitors() {
		return nil, fmt.Errorf("%w: index %d", ErrNoMonitor, opts.Monitor)
	}

	scale := opts.ScaleFactor
	if scale <= 0 {
		var err error
		scale, err = p.ScaleFactor(opts.Monitor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScaleFactor, err)
		}
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: %v", ErrScaleFactor, scale)
	}

	base, err := p.CaptureMonitor(opts.Monitor)
	if err != nil {
		return nil, fmt.Errorf("%w: monitor %d: %v", ErrCapture, opts.Monitor, err)
	}
	if base == nil || base.Bounds().Empty() {
		return nil, fmt.Errorf("%w: monitor %d returned an empty bitmap", ErrCapture, opts.Monitor)
	}

	found, err := p.EnumerateWindows(opts.Monitor)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate windows: %v", ErrCapture, err)
	}
	var windows []Window
	for _, w := range found {
		if w.Name == "" || w.Bounds.Empty() {
			continue
		}
		img, err := p.CaptureWindow(opts.Monitor, w)
		if err != nil {
			return nil, fmt.Errorf("%w: window %q: %v", ErrCapture, w.Name, err)
		}
		windows = append(windows, Window{Name: w.Name, Bounds: w.Bounds, Image: img})
	}

	s := newSession(base, windows, scale, opts)
	log.Printf("Session %s: created on monitor %d (%dx%d, scale %.2f, %d windows)",
		s.ID, opts.Monitor, base.Bounds().Dx(), base.Bounds().Dy(), scale, len(windows))
	return s, nil
}

func newSession(base *image.RGBA, windows []Window, scale float64, opts Options) *Session {
	size := opts.Size
	if size == 0 {
		size = shape.DefaultSize
	}
	s := &Session{
		ID:          uuid.NewString(),
		base:        base,
		previewBase: logicalCopy(base, scale),
		windows:     windows,
		scale:       scale,
		cursor:      opts.Cursor,
		mode:        selection.Default(),
		cache:       canvas.NewCache(),
		color:       opts.Color,
		size:        shape.ClampSize(size),
	}
	s.hitTest()
	return s
}

// logicalCopy resamples base to logical pixels for the preview background.
func logicalCopy(base *image.RGBA, scale float64) *image.RGBA {
	if scale == 1 {
		return base
	}
	w := int(math.Round(float64(base.Bounds().Dx()) / scale))
	h := int(math.Round(float64(base.Bounds().Dy()) / scale))
	out := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return out
}

func (s *Session) hitTest() {
	bounds := make([]image.Rectangle, len(s.windows))
	for i, w := range s.windows {
		bounds[i] = w.Bounds
	}
	s.mode.SelectBelowCursor(s.cursor, bounds, s.scale, s.base.Bounds().Size())
}

// Base is the monitor bitmap in physical pixels.
func (s *Session) Base() *image.RGBA { return s.base }

// PreviewBase is the monitor bitmap resampled to logical pixels.
func (s *Session) PreviewBase() *image.RGBA { return s.previewBase }

// LogicalSize is the size of the capture surface in logical pixels.
func (s *Session) LogicalSize() image.Point { return s.previewBase.Bounds().Size() }

func (s *Session) Windows() []Window { return s.windows }

func (s *Session) ScaleFactor() float64 { return s.scale }

func (s *Session) Cursor() geometry.Point { return s.cursor }

// Mode returns a copy of the current mode.
func (s *Session) Mode() selection.Mode { return s.mode }

// Shapes returns the committed shapes in paint order. Callers must not
// modify them.
func (s *Session) Shapes() []shape.Shape { return s.shapes }

// Cache is the committed-shapes layer used by the preview renderer.
func (s *Session) Cache() *canvas.Cache { return s.cache }

func (s *Session) Color() shape.Color { return s.color }

func (s *Session) Size() int { return s.size }

func (s *Session) ToolbarAtTop() bool { return s.toolbarAtTop }

func (s *Session) Finalized() bool { return s.finalized }

// AllowsDrawing reports whether the in-progress shape should be rendered.
func (s *Session) AllowsDrawing() bool { return s.mode.AllowsDrawing() }

// Description is the short caption for the current selection.
func (s *Session) Description() string {
	if s.mode.IsDraw() {
		return s.mode.Draw.Element.Tool.Name()
	}
	c := s.mode.Crop
	switch c.State.Kind {
	case selection.CropFullScreen:
		return "Fullscreen"
	case selection.CropWindow:
		if c.State.Window >= 0 && c.State.Window < len(s.windows) {
			return s.windows[c.State.Window].Name
		}
		return "Window"
	case selection.CropNone:
		return "Exiting"
	default:
		return fmt.Sprintf("%d x %d",
			int(math.Round(c.Size.Width*s.scale)), int(math.Round(c.Size.Height*s.scale)))
	}
}

// Final is the state handed to the compositor when the session ends.
type Final struct {
	ID          string
	Base        *image.RGBA
	Windows     []Window
	ScaleFactor float64
	Shapes      []shape.Shape
	Crop        selection.Crop
}

// Finish closes the session and returns what the compositor needs. A session
// still in Draw mode is first confirmed as if Done had been sent. Finish can
// be called once.
func (s *Session) Finish() (Final, error) {
	if s.finalized {
		return Final{}, ErrFinalized
	}
	if s.mode.IsDraw() {
		s.leaveDraw(true)
	}
	s.finalized = true
	log.Printf("Session %s: finished (%s, %d shapes)", s.ID, s.mode.Crop.State.Kind, len(s.shapes))
	return Final{
		ID:          s.ID,
		Base:        s.base,
		Windows:     s.windows,
		ScaleFactor: s.scale,
		Shapes:      s.shapes,
		Crop:        s.mode.Crop,
	}, nil
}
