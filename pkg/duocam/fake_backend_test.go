package duocam_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
)

type fakeDevice struct {
	info       videobackend.DeviceInfo
	size       image.Point
	fill       color.RGBA
	connectErr error
	hang       bool
}

type fakeBackend struct {
	accessErr error
	devices   []fakeDevice

	mu       sync.Mutex
	connects []string
	conns    []*fakeConn
}

func (b *fakeBackend) RequestAccess(context.Context) error { return b.accessErr }

func (b *fakeBackend) Devices(context.Context) ([]videobackend.DeviceInfo, error) {
	infos := []videobackend.DeviceInfo{}
	for _, d := range b.devices {
		infos = append(infos, d.info)
	}
	return infos, nil
}

func (b *fakeBackend) Connect(ctx context.Context, id string) (videobackend.Connection, error) {
	b.mu.Lock()
	b.connects = append(b.connects, id)
	b.mu.Unlock()

	for _, d := range b.devices {
		if d.info.ID != id {
			continue
		}
		if d.hang {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		if d.connectErr != nil {
			return nil, d.connectErr
		}
		conn := &fakeConn{id: id, size: d.size, fill: d.fill, open: true}
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.mu.Unlock()
		return conn, nil
	}
	return nil, errors.New("no such device")
}

func (b *fakeBackend) NewFrame() videoframe.Frame { return &fakeFrame{} }

func (b *fakeBackend) connectCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.connects)
}

func (b *fakeBackend) connFor(id string) *fakeConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.conns {
		if c.id == id {
			return c
		}
	}
	return nil
}

type fakeFrame struct {
	img *image.RGBA
}

func (f *fakeFrame) DataRef() interface{} { return f.img }

func (f *fakeFrame) Dimensions() videoframe.Dimensions {
	if f.img == nil {
		return videoframe.Dimensions{}
	}
	return videoframe.Dimensions{W: f.img.Bounds().Dx(), H: f.img.Bounds().Dy()}
}

func (f *fakeFrame) ToImage() (image.Image, error) {
	if f.img == nil {
		return nil, errors.New("frame holds no image data")
	}
	return f.img, nil
}

func (f *fakeFrame) Close() {}

type fakeConn struct {
	id   string
	size image.Point
	fill color.RGBA

	mu   sync.Mutex
	open bool
}

func (c *fakeConn) UUID() string { return c.id }

func (c *fakeConn) Read(frame videoframe.Frame) error {
	time.Sleep(time.Millisecond)
	img := image.NewRGBA(image.Rectangle{Max: c.size})
	for x := 0; x < c.size.X; x++ {
		for y := 0; y < c.size.Y; y++ {
			img.SetRGBA(x, y, c.fill)
		}
	}
	frame.(*fakeFrame).img = img
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

type recordingAlerter struct {
	messages []string
}

func (a *recordingAlerter) Alert(message string) {
	a.messages = append(a.messages, message)
}

type countingFullscreen struct {
	entered int
}

func (f *countingFullscreen) Enter() { f.entered++ }
