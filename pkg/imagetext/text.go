// Package imagetext draws single lines of text onto RGBA canvases
// using the bundled Go regular font.
package imagetext

import (
	"image"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var (
	parseOnce  sync.Once
	parsedFont *truetype.Font
	parseErr   error
)

func regularFont() (*truetype.Font, error) {
	parseOnce.Do(func() {
		parsedFont, parseErr = freetype.ParseFont(goregular.TTF)
	})
	return parsedFont, parseErr
}

// Draw writes text onto canvas with its top edge near y.
func Draw(canvas *image.RGBA, fg image.Image, x, y int, size float64, text string) error {
	fontFace, err := regularFont()
	if err != nil {
		return xerror.Errorf("unable to parse label font: %w", err)
	}

	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: fg,
		Face: truetype.NewFace(fontFace, &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		}),
	}
	textBounds, _ := fontDrawer.BoundString(text)
	textHeight := textBounds.Max.Y - textBounds.Min.Y
	fontDrawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y + textHeight.Ceil()),
	}
	fontDrawer.DrawString(text)
	return nil
}

// Measure returns the pixel width and height text would occupy at size.
func Measure(size float64, text string) (int, int, error) {
	fontFace, err := regularFont()
	if err != nil {
		return 0, 0, xerror.Errorf("unable to parse label font: %w", err)
	}
	d := &font.Drawer{Face: truetype.NewFace(fontFace, &truetype.Options{Size: size})}
	b, _ := d.BoundString(text)
	return (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil(), nil
}
