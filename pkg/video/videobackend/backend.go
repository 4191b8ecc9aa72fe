package videobackend

import (
	"context"

	"github.com/spf13/afero"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
)

var fs = afero.NewOsFs()

type Connection interface {
	UUID() string
	Read(videoframe.Frame) error
	IsOpen() bool
	Close() error
}

// Backend is the platform capability surface for cameras: unlocking
// access, listing devices, and opening a stream for one device ID.
type Backend interface {
	RequestAccess(context.Context) error
	Devices(context.Context) ([]DeviceInfo, error)
	Connect(context.Context, string) (Connection, error)
	NewFrame() videoframe.Frame
}

const (
	OpenCVName       = "opencv"
	MediaDevicesName = "mediadevices"
	MockName         = "mock"
)

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func MediaDevices() Backend {
	return &mediaDevicesBackend{}
}

func Mock() Backend {
	return &mockVideoBackend{devices: defaultMockDevices()}
}

func Resolve(t string) Backend {
	switch t {
	case MockName:
		return Mock()
	case MediaDevicesName:
		return MediaDevices()
	default:
		return Default()
	}
}
