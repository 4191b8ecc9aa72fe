package composite

import (
	"github.com/tauraamui/duocam/pkg/configdef"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
)

type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

func (o Orientation) String() string {
	if o == Portrait {
		return configdef.OrientationPortrait
	}
	return configdef.OrientationLandscape
}

// OrientationOf is portrait only when the viewport is strictly
// taller than it is wide. A square viewport is landscape.
func OrientationOf(viewport videoframe.Dimensions) Orientation {
	if viewport.H > viewport.W {
		return Portrait
	}
	return Landscape
}

// Viewport reports the current size of whatever the feeds are shown in.
type Viewport interface {
	Dimensions() (videoframe.Dimensions, error)
}

type FixedViewport videoframe.Dimensions

func (v FixedViewport) Dimensions() (videoframe.Dimensions, error) {
	return videoframe.Dimensions(v), nil
}

// OrientationResolver decides the layout at composite time. A forced
// orientation wins, otherwise the live viewport is measured, falling
// back to a fixed size when the viewport cannot report one.
type OrientationResolver struct {
	Force    string
	Viewport Viewport
	Fallback videoframe.Dimensions
}

func (r OrientationResolver) Resolve() Orientation {
	switch r.Force {
	case configdef.OrientationPortrait:
		return Portrait
	case configdef.OrientationLandscape:
		return Landscape
	}

	if r.Viewport != nil {
		if d, err := r.Viewport.Dimensions(); err == nil && !d.IsZero() {
			return OrientationOf(d)
		}
	}
	return OrientationOf(r.Fallback)
}
