// Package compositor flattens a finished session into the final image and
// hands it to the save sink.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"

	"screen-annotate/src/markup"
	"screen-annotate/src/selection"
	"screen-annotate/src/session"
)

var (
	// ErrCancelled means the user abandoned the capture. It is an outcome, not
	// a failure.
	ErrCancelled = errors.New("screenshot cancelled")
	// ErrEmptySelection means the final crop has no area. Hosts treat it as a
	// cancellation.
	ErrEmptySelection = errors.New("selection has zero area")
)

// IsCancellation reports whether err means "no image was produced on
// purpose" rather than a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrEmptySelection)
}

// Sink receives the flattened image exactly once per completed session.
type Sink interface {
	Save(img *image.RGBA) (string, error)
}

// Complete finishes s, composites it and saves the result. The sink is not
// called for cancelled or empty selections.
func Complete(s *session.Session, sink Sink) (string, error) {
	final, err := s.Finish()
	if err != nil {
		return "", err
	}
	img, err := Composite(final)
	if err != nil {
		if IsCancellation(err) {
			log.Printf("Compositor: session %s produced no image: %v", final.ID, err)
		}
		return "", err
	}
	path, err := sink.Save(img)
	if err != nil {
		return path, fmt.Errorf("failed to save capture: %w", err)
	}
	log.Printf("Compositor: session %s saved %dx%d image to %s", final.ID, img.Bounds().Dx(), img.Bounds().Dy(), path)
	return path, nil
}

// Composite builds the output bitmap for a finished session.
func Composite(f session.Final) (*image.RGBA, error) {
	state := f.Crop.State
	if state.Kind == selection.CropNone {
		return nil, ErrCancelled
	}

	size := f.Base.Bounds().Size()
	doc := markup.Build(f.Shapes, size, f.ScaleFactor)
	var layer *image.RGBA
	if len(doc.Elements) > 0 {
		var err error
		layer, err = markup.Rasterize(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize annotations: %w", err)
		}
	}

	switch state.Kind {
	case selection.CropFullScreen:
		return overlay(clone(f.Base), layer), nil

	case selection.CropWindow:
		if state.Window < 0 || state.Window >= len(f.Windows) {
			return nil, fmt.Errorf("selected window %d out of range (%d windows)", state.Window, len(f.Windows))
		}
		w := f.Windows[state.Window]
		blank := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
		draw.Draw(blank, w.Bounds, w.Image, w.Image.Bounds().Min, draw.Src)
		return crop(overlay(blank, layer), w.Bounds)

	case selection.CropArea, selection.CropInProgress:
		out := overlay(clone(f.Base), layer)
		return crop(out, f.Crop.Box().Scale(f.ScaleFactor).Image())

	default:
		return nil, fmt.Errorf("unknown crop state %v", state.Kind)
	}
}

func clone(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

func overlay(dst, layer *image.RGBA) *image.RGBA {
	if layer != nil {
		draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
	}
	return dst
}

// crop cuts r out of src, clamped to src's bounds, into a new image rooted
// at (0,0).
func crop(src *image.RGBA, r image.Rectangle) (*image.RGBA, error) {
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil, ErrEmptySelection
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out, nil
}
