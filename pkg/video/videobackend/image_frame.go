package videobackend

import (
	"image"

	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/draw"
)

// imageFrame holds decoded pixels for backends which hand
// over Go images rather than OpenCV matrices.
type imageFrame struct {
	img *image.RGBA
}

func (frame *imageFrame) DataRef() interface{} {
	return frame.img
}

func (frame *imageFrame) Dimensions() videoframe.Dimensions {
	if frame.img == nil {
		return videoframe.Dimensions{}
	}
	size := frame.img.Bounds().Size()
	return videoframe.Dimensions{W: size.X, H: size.Y}
}

func (frame *imageFrame) ToImage() (image.Image, error) {
	if frame.img == nil {
		return nil, xerror.New("frame holds no image data")
	}
	return frame.img, nil
}

func (frame *imageFrame) Close() {
	frame.img = nil
}

// copyFrom replaces the frame's pixels with a copy of src, reusing
// the existing buffer when the size has not changed.
func (frame *imageFrame) copyFrom(src image.Image) {
	b := src.Bounds()
	if frame.img == nil || frame.img.Bounds().Size() != b.Size() {
		frame.img = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(frame.img, frame.img.Bounds(), src, b.Min, draw.Src)
}
