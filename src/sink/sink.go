// Package sink saves finished captures: a timestamped PNG in the target
// directory and a copy on the clipboard.
package sink

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen-annotate/src/clipboard"
	"screen-annotate/src/screenshot"
)

const (
	filePrefix = "Capture_"
	timeLayout = "2006-01-02-15-04-05"
	maxSuffix  = 1000
)

type Options struct {
	Dir             string
	CopyToClipboard bool
	// Now and Clipboard replace the clock and the clipboard writer; nil uses
	// the real ones.
	Now       func() time.Time
	Clipboard func(image.Image) error
}

type Sink struct {
	dir       string
	copy      bool
	now       func() time.Time
	clipboard func(image.Image) error
}

func New(opts Options) *Sink {
	s := &Sink{
		dir:       opts.Dir,
		copy:      opts.CopyToClipboard,
		now:       opts.Now,
		clipboard: opts.Clipboard,
	}
	if s.dir == "" {
		s.dir = "."
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.clipboard == nil {
		s.clipboard = clipboard.WriteImage
	}
	return s
}

func (s *Sink) Dir() string { return s.dir }

// Save writes img to disk and, if enabled, to the clipboard. Both are
// attempted even if the other fails; the returned error joins every failure.
// The path is set whenever the file was written.
func (s *Sink) Save(img *image.RGBA) (string, error) {
	var errs []error

	path, err := s.writeFile(img)
	if err != nil {
		errs = append(errs, fmt.Errorf("file: %w", err))
	}

	if s.copy {
		if err := s.clipboard(img); err != nil {
			errs = append(errs, fmt.Errorf("clipboard: %w", err))
		} else {
			log.Printf("Sink: copied %dx%d image to clipboard", img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
	return path, errors.Join(errs...)
}

func (s *Sink) writeFile(img *image.RGBA) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	stamp := s.now().Format(timeLayout)
	for i := 0; i < maxSuffix; i++ {
		path := filepath.Join(s.dir, FileName(stamp, i))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, err)
		}
		log.Printf("Sink: wrote %s (%d bytes)", path, len(data))
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s%s", filePrefix, stamp)
}

// FileName is Capture_<stamp>.png, with _<n> appended for n > 0.
func FileName(stamp string, n int) string {
	if n == 0 {
		return filePrefix + stamp + ".png"
	}
	return fmt.Sprintf("%s%s_%d.png", filePrefix, stamp, n)
}
