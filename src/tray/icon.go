package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"runtime"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const iconSize = 32

// iconSVG is a dashed capture frame with a pen crossing its corner.
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2.5" width="10" height="8" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1"/>
  <path d="M13.5 5.5 L7 12 L6 14 L8 13 L14.5 6.5 Z" fill="#ff3b30" stroke="#333333" stroke-width="0.6"/>
</svg>`

// IconImage rasterizes the tray icon.
func IconImage(size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(iconSVG), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse tray icon: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	icon.SetTarget(0, 0, float64(size), float64(size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}

// Icon returns the icon bytes systray expects: ICO on Windows, PNG elsewhere.
func Icon() ([]byte, error) {
	img, err := IconImage(iconSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode tray icon: %w", err)
	}
	if runtime.GOOS != "windows" {
		return buf.Bytes(), nil
	}
	return wrapICO(buf.Bytes(), iconSize), nil
}

// wrapICO embeds one PNG image in an ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var out bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	header := struct {
		Reserved, Type, Count uint16
	}{0, 1, 1}
	entry := struct {
		Width, Height, Colors, Reserved byte
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim, dim, 0, 0, 1, 32, uint32(len(pngData)), 6 + 16}
	_ = binary.Write(&out, binary.LittleEndian, header)
	_ = binary.Write(&out, binary.LittleEndian, entry)
	out.Write(pngData)
	return out.Bytes()
}
