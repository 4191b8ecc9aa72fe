package videobackend

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/io/video"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"

	// registers the camera driver with mediadevices
	_ "github.com/pion/mediadevices/pkg/driver/camera"
)

type mediaDevicesBackend struct{}

var getUserMedia = func(constraints mediadevices.MediaStreamConstraints) (mediadevices.MediaStream, error) {
	return mediadevices.GetUserMedia(constraints)
}

var enumerateDevices = func() []mediadevices.MediaDeviceInfo {
	return mediadevices.EnumerateDevices()
}

// RequestAccess opens and immediately releases an unconstrained
// video stream, the same probe a browser uses to unlock labels.
func (b *mediaDevicesBackend) RequestAccess(ctx context.Context) error {
	stream, err := getUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {},
	})
	if err != nil {
		return xerror.Errorf("unable to access any camera: %w", err)
	}
	for _, track := range stream.GetTracks() {
		track.Close()
	}
	return nil
}

func (b *mediaDevicesBackend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	infos := enumerateDevices()
	devices := make([]DeviceInfo, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, DeviceInfo{
			ID:    info.DeviceID,
			Label: info.Label,
			Kind:  kindFromMediaDeviceType(info.Kind),
		})
	}
	return devices, nil
}

func kindFromMediaDeviceType(t mediadevices.MediaDeviceType) Kind {
	switch t {
	case mediadevices.VideoInput:
		return KindVideoInput
	case mediadevices.AudioInput:
		return KindAudioInput
	default:
		return KindUnknown
	}
}

func (b *mediaDevicesBackend) Connect(cancel context.Context, deviceID string) (Connection, error) {
	conn := mediaDevicesConnection{uuid: uuid.NewString()}
	if err := conn.connect(cancel, deviceID); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (b *mediaDevicesBackend) NewFrame() videoframe.Frame {
	return &imageFrame{}
}

type mediaDevicesConnection struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	track  mediadevices.Track
	reader video.Reader
}

type openTrackResult struct {
	track mediadevices.Track
	err   error
}

func (c *mediaDevicesConnection) connect(cancel context.Context, deviceID string) error {
	trackAndError := make(chan openTrackResult, 1)
	go openDeviceTrack(deviceID, trackAndError)
	select {
	case r := <-trackAndError:
		if r.err != nil {
			return r.err
		}
		videoTrack, ok := r.track.(*mediadevices.VideoTrack)
		if !ok {
			r.track.Close()
			return xerror.Errorf("device %s did not produce a video track", deviceID)
		}
		c.track = r.track
		c.reader = videoTrack.NewReader(false)
		c.isOpen = true
		return nil
	case <-cancel.Done():
		go func() {
			if r := <-trackAndError; r.err == nil {
				r.track.Close()
			}
		}()
		return xerror.New("connection cancelled")
	}
}

func openDeviceTrack(deviceID string, d chan openTrackResult) {
	stream, err := getUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {
			c.DeviceID = prop.String(deviceID)
		},
	})
	if err != nil {
		d <- openTrackResult{err: err}
		return
	}

	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		d <- openTrackResult{err: xerror.Errorf("device %s returned no video tracks", deviceID)}
		return
	}
	for _, extra := range tracks[1:] {
		extra.Close()
	}
	d <- openTrackResult{track: tracks[0]}
}

func (c *mediaDevicesConnection) UUID() string {
	return c.uuid
}

func (c *mediaDevicesConnection) Read(frame videoframe.Frame) error {
	dst, ok := frame.(*imageFrame)
	if !ok {
		return xerror.New("must pass image frame to mediadevices connection read")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return xerror.New("unable to read from closed video connection")
	}

	img, release, err := c.reader.Read()
	if err != nil {
		return xerror.Errorf("unable to read from video connection: %w", err)
	}
	if release != nil {
		defer release()
	}
	dst.copyFrom(img)
	return nil
}

func (c *mediaDevicesConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

func (c *mediaDevicesConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return nil
	}
	c.isOpen = false
	return c.track.Close()
}
