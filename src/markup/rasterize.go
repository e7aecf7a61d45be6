package markup

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"screen-annotate/src/fonts"
)

// Rasterize paints the document onto a transparent layer of its size.
// Consecutive vector elements are rendered as one SVG batch; text runs are
// drawn between batches so that paint order is kept.
func Rasterize(d Document) (*image.RGBA, error) {
	layer := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	if d.Width <= 0 || d.Height <= 0 {
		return layer, nil
	}

	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := drawSVG(layer, d.Width, d.Height, batch)
		batch = batch[:0]
		return err
	}

	for _, el := range d.Elements {
		if el.Text == nil {
			batch = append(batch, el.Markup)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		if err := drawText(layer, el.Text); err != nil {
			return nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return layer, nil
}

func drawSVG(dst *image.RGBA, w, h int, elements []string) error {
	src := header(w, h) + strings.Join(elements, "") + "</svg>"
	icon, err := oksvg.ReadIconStream(strings.NewReader(src), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("failed to parse annotation markup: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return nil
}

func drawText(dst *image.RGBA, run *TextRun) error {
	face, err := fonts.Face(run.Size)
	if err != nil {
		return fmt.Errorf("failed to load font for text run: %w", err)
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(run.Color),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(run.TopLeft.X * 64),
			Y: fixed.Int26_6(run.TopLeft.Y*64) + fonts.Ascent(face),
		},
	}
	d.DrawString(run.Text)
	return nil
}
