// Package markup turns committed shapes into an SVG document and rasterizes
// it. The final composite goes through this path so that its anti-aliasing
// and stroke joins never depend on how the preview drew the same shapes.
package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"screen-annotate/src/geometry"
	"screen-annotate/src/shape"
)

// TextRun is a text shape resolved to pixel space. The rasterizer cannot draw
// SVG text, so runs are painted with a font face instead.
type TextRun struct {
	TopLeft geometry.Point
	Text    string
	Size    float64
	Color   color.RGBA
}

// Element is one shape in paint order.
type Element struct {
	Kind shape.Kind
	// Markup is the SVG element for the shape.
	Markup string
	// Text is set for text shapes only.
	Text *TextRun
}

type Document struct {
	Width    int
	Height   int
	Elements []Element
}

// Build converts logical-pixel shapes into a document of size pixels,
// scaling geometry, stroke widths and font sizes by scale.
func Build(shapes []shape.Shape, size image.Point, scale float64) Document {
	doc := Document{Width: size.X, Height: size.Y}
	for _, sh := range shapes {
		if el, ok := element(sh, scale); ok {
			doc.Elements = append(doc.Elements, el)
		}
	}
	return doc
}

func element(sh shape.Shape, scale float64) (Element, bool) {
	if !sh.Tool.IsValid() {
		return Element{}, false
	}
	t := sh.Tool.Clone()
	t.Scale(scale)
	width := sh.StrokeWidth() * scale
	hex := sh.Color.Hex()

	var b strings.Builder
	switch t.Kind {
	case shape.KindRectangle:
		r := t.Rectangle
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" %s/>`,
			num(r.TopLeft.X), num(r.TopLeft.Y), num(r.Size.Width), num(r.Size.Height),
			paint(hex, r.Filled, r.Opaque, width))
	case shape.KindEllipse:
		e := t.Ellipse
		fmt.Fprintf(&b, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`,
			num(e.Center.X), num(e.Center.Y), num(math.Abs(e.Radii.X)), num(math.Abs(e.Radii.Y)),
			paint(hex, e.Filled, true, width))
	case shape.KindFreeHand:
		fmt.Fprintf(&b, `<polyline points="%s" %s/>`, points(t.FreeHand.Points), paint(hex, false, true, width))
	case shape.KindLine:
		l := t.Line
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" %s/>`,
			num(l.Start.X), num(l.Start.Y), num(l.End.X), num(l.End.Y), paint(hex, false, true, width))
	case shape.KindArrow:
		a := t.Arrow
		fmt.Fprintf(&b, `<path d="M%s %s L%s %s M%s %s L%s %s L%s %s" %s/>`,
			num(a.Start.X), num(a.Start.Y), num(a.End.X), num(a.End.Y),
			num(a.Right.X), num(a.Right.Y), num(a.End.X), num(a.End.Y), num(a.Left.X), num(a.Left.Y),
			paint(hex, false, true, width))
	case shape.KindText:
		fs := sh.FontSize() * scale
		run := &TextRun{
			TopLeft: geometry.Pt(t.Text.Anchor.X, t.Text.Anchor.Y-fs/2),
			Text:    t.Text.Text,
			Size:    fs,
			Color:   sh.Color.RGBA(),
		}
		fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="Go" font-size="%s" dominant-baseline="text-before-edge" fill="%s">%s</text>`,
			num(run.TopLeft.X), num(run.TopLeft.Y), num(fs), hex, escape(run.Text))
		return Element{Kind: t.Kind, Markup: b.String(), Text: run}, true
	default:
		return Element{}, false
	}
	return Element{Kind: t.Kind, Markup: b.String()}, true
}

func paint(hex string, filled, opaque bool, width float64) string {
	if filled {
		if opaque {
			return fmt.Sprintf(`fill="%s" stroke="none"`, hex)
		}
		return fmt.Sprintf(`fill="%s" fill-opacity="%s" stroke="none"`, hex, num(shape.TranslucentAlpha))
	}
	return fmt.Sprintf(`fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"`,
		hex, num(width))
}

func points(ps []geometry.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func header(w, h int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, w, h, w, h)
}

// SVG renders the whole document, text elements included.
func (d Document) SVG() string {
	var b strings.Builder
	_, _ = d.WriteTo(&b)
	return b.String()
}

func (d Document) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(header(d.Width, d.Height))
	b.WriteByte('\n')
	for _, el := range d.Elements {
		b.WriteString("  ")
		b.WriteString(el.Markup)
		b.WriteByte('\n')
	}
	b.WriteString("</svg>\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
