package canvas

import (
	"image"
	"image/draw"
)

// Cache is the committed-shapes layer: an owned buffer plus a dirty flag.
// Every mutation of the committed list must call Clear before the next Draw.
type Cache struct {
	buf   *image.RGBA
	dirty bool
}

func NewCache() *Cache { return &Cache{dirty: true} }

// Clear invalidates the cached layer.
func (c *Cache) Clear() { c.dirty = true }

func (c *Cache) Dirty() bool { return c.dirty || c.buf == nil }

// Draw returns the cached layer, rebuilding it with render when it is dirty or
// the requested size changed.
func (c *Cache) Draw(w, h int, render func(*Frame)) *image.RGBA {
	if c.buf == nil || c.buf.Bounds().Dx() != w || c.buf.Bounds().Dy() != h {
		c.buf = image.NewRGBA(image.Rect(0, 0, w, h))
		c.dirty = true
	}
	if c.dirty {
		draw.Draw(c.buf, c.buf.Bounds(), image.Transparent, image.Point{}, draw.Src)
		render(NewFrame(c.buf))
		c.dirty = false
	}
	return c.buf
}
