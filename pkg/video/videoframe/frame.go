package videoframe

import (
	"image"
)

type Dimensions struct {
	W, H int
}

// IsZero reports whether either side has no pixels, which
// is what a surface looks like before a stream is bound.
func (d Dimensions) IsZero() bool {
	return d.W <= 0 || d.H <= 0
}

func (d Dimensions) Point() image.Point {
	return image.Pt(d.W, d.H)
}

type Frame interface {
	DataRef() interface{}
	Dimensions() Dimensions
	ToImage() (image.Image, error)
	Close()
}
