package composite

import (
	"image"

	"github.com/tauraamui/duocam/pkg/surface"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type Layout struct {
	Size  videoframe.Dimensions
	Front image.Point
	Back  image.Point
}

// Plan sizes the composite and places each frame. Portrait stacks the
// back frame under the front one, landscape places it to the right.
func Plan(o Orientation, front, back videoframe.Dimensions) (Layout, error) {
	if front.IsZero() {
		return Layout{}, xerror.Errorf("%w: front frame is %dx%d", surface.ErrNotReady, front.W, front.H)
	}
	if back.IsZero() {
		return Layout{}, xerror.Errorf("%w: back frame is %dx%d", surface.ErrNotReady, back.W, back.H)
	}

	if o == Portrait {
		return Layout{
			Size:  videoframe.Dimensions{W: max(front.W, back.W), H: front.H + back.H},
			Front: image.Pt(0, 0),
			Back:  image.Pt(0, front.H),
		}, nil
	}

	return Layout{
		Size:  videoframe.Dimensions{W: front.W + back.W, H: max(front.H, back.H)},
		Front: image.Pt(0, 0),
		Back:  image.Pt(front.W, 0),
	}, nil
}
