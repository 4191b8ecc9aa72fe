package display

import (
	"image"

	"github.com/tauraamui/duocam/pkg/composite"
)

// PreviewImage is what the live window shows: both feeds laid out the
// way a capture would be, or whichever feed is ready on its own.
func PreviewImage(o composite.Orientation, front, back image.Image) image.Image {
	switch {
	case front != nil && back != nil:
		img, err := composite.Compose(o, front, back)
		if err != nil {
			return nil
		}
		return img
	case front != nil:
		return front
	case back != nil:
		return back
	default:
		return nil
	}
}
