package videobackend_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
)

func TestVideoBackendDefaultBackend(t *testing.T) {
	is := is.New(t)
	is.True(videobackend.Default() != nil)
}

func TestResolveBackendByName(t *testing.T) {
	is := is.New(t)
	is.Equal(videobackend.Resolve("mock"), videobackend.Mock())
	is.Equal(videobackend.Resolve("mediadevices"), videobackend.MediaDevices())
	is.Equal(videobackend.Resolve("opencv"), videobackend.OpenCV())
	is.Equal(videobackend.Resolve(""), videobackend.Default())
}

func TestKindStrings(t *testing.T) {
	is := is.New(t)
	is.Equal(videobackend.KindVideoInput.String(), "video input")
	is.Equal(videobackend.KindAudioInput.String(), "audio input")
	is.Equal(videobackend.KindUnknown.String(), "unknown")
}
