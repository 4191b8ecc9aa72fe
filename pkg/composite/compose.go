package composite

import (
	"image"
	"image/color"

	"github.com/tauraamui/duocam/pkg/imagetext"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/draw"
)

func dimensionsOf(img image.Image) videoframe.Dimensions {
	if img == nil {
		return videoframe.Dimensions{}
	}
	b := img.Bounds()
	return videoframe.Dimensions{W: b.Dx(), H: b.Dy()}
}

// Compose draws both frames unscaled onto a new transparent canvas
// laid out for the given orientation.
func Compose(o Orientation, front, back image.Image) (*image.RGBA, error) {
	layout, err := Plan(o, dimensionsOf(front), dimensionsOf(back))
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rectangle{Max: layout.Size.Point()})
	paint(canvas, front, layout.Front)
	paint(canvas, back, layout.Back)
	return canvas, nil
}

func paint(dst *image.RGBA, src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Src)
}

var (
	labelBackground = image.NewUniform(color.RGBA{A: 160})
	labelPadding    = 6
)

// DrawLabel writes text in the bottom left corner over a dark band.
func DrawLabel(canvas *image.RGBA, text string) error {
	if len(text) == 0 {
		return nil
	}

	bounds := canvas.Bounds()
	size := labelSize(bounds.Dy())
	w, h, err := imagetext.Measure(size, text)
	if err != nil {
		return xerror.Errorf("unable to measure composite label: %w", err)
	}

	band := image.Rect(
		bounds.Min.X,
		bounds.Max.Y-h-labelPadding*2,
		bounds.Min.X+w+labelPadding*2,
		bounds.Max.Y,
	).Intersect(bounds)
	draw.Draw(canvas, band, labelBackground, image.Point{}, draw.Over)

	if err := imagetext.Draw(canvas, image.White, band.Min.X+labelPadding, band.Min.Y+labelPadding, size, text); err != nil {
		return xerror.Errorf("unable to draw composite label: %w", err)
	}
	return nil
}

func labelSize(height int) float64 {
	size := float64(height) / 24
	if size < 10 {
		return 10
	}
	return size
}
