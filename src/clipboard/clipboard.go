package clipboard

import (
	"fmt"
	"image"
	"sync"

	"golang.design/x/clipboard"

	"screen-annotate/src/screenshot"
)

var (
	writeMu  sync.Mutex
	initOnce sync.Once
	initErr  error
)

// Init prepares the system clipboard. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// WriteImage places img on the clipboard as PNG. Writes are serialised so
// that parallel callers cannot interleave.
func WriteImage(img image.Image) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// Write places text on the clipboard.
func Write(text string) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
