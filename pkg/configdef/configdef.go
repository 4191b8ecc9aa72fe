package configdef

import (
	"fmt"

	"github.com/tauraamui/xerror"
	"gopkg.in/dealancer/validate.v2"
)

const (
	OrientationAuto      = "auto"
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

type Viewport struct {
	Width  int `json:"width" validate:"gte=0"`
	Height int `json:"height" validate:"gte=0"`
}

type Values struct {
	Debug              bool     `json:"debug"`
	Backend            string   `json:"backend" validate:"one_of=opencv,mediadevices,mock"`
	CaptureDirectory   string   `json:"capture_directory" validate:"empty=false"`
	CapturePrefix      string   `json:"capture_prefix" validate:"empty=false"`
	Orientation        string   `json:"orientation" validate:"one_of=auto,portrait,landscape"`
	Viewport           Viewport `json:"viewport"`
	Fullscreen         bool     `json:"fullscreen"`
	BindTimeoutSeconds int      `json:"bind_timeout_seconds" validate:"gte=0 & lte=120"`
	FPS                int      `json:"fps" validate:"gte=1 & lte=60"`
	DateTimeLabel      bool     `json:"date_time_label"`
	DateTimeFormat     string   `json:"date_time_format"`
	ReleaseOnRebind    bool     `json:"release_on_rebind"`
}

func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if viewportPartiallyDefined(v.Viewport) {
		return fmt.Errorf(validationErrorHeader, xerror.New("viewport must define both width and height"))
	}
	return nil
}

func viewportPartiallyDefined(vp Viewport) bool {
	return (vp.Width == 0) != (vp.Height == 0)
}
