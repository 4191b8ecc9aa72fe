package videobackend

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/duocam/pkg/imagetext"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/draw"
)

// MockDevice describes one synthetic camera served by the mock backend.
type MockDevice struct {
	DeviceInfo
	Width, Height int
}

func defaultMockDevices() []MockDevice {
	return []MockDevice{
		{DeviceInfo: DeviceInfo{ID: "mock://back", Label: "Mock Back Camera", Kind: KindVideoInput}, Width: 640, Height: 480},
		{DeviceInfo: DeviceInfo{ID: "mock://front", Label: "Mock Front Camera", Kind: KindVideoInput}, Width: 320, Height: 240},
	}
}

// MockWithDevices returns a synthetic backend listing exactly the given devices.
func MockWithDevices(devices ...MockDevice) Backend {
	return &mockVideoBackend{devices: devices}
}

var mockFrameInterval = 33 * time.Millisecond

type mockVideoBackend struct {
	devices []MockDevice
}

func (b *mockVideoBackend) RequestAccess(ctx context.Context) error {
	return nil
}

func (b *mockVideoBackend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	devices := make([]DeviceInfo, 0, len(b.devices))
	for _, d := range b.devices {
		devices = append(devices, d.DeviceInfo)
	}
	return devices, nil
}

func (b *mockVideoBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	select {
	case <-cancel.Done():
		return nil, xerror.New("connection cancelled")
	default:
	}

	for _, d := range b.devices {
		if d.ID == addr {
			return &mockVideoConnection{uuid: uuid.NewString(), device: d, isOpen: true}, nil
		}
	}
	return nil, xerror.Errorf("no mock camera with ID %s", addr)
}

func (b *mockVideoBackend) NewFrame() videoframe.Frame {
	return &imageFrame{}
}

type mockVideoConnection struct {
	uuid                    string
	device                  MockDevice
	mu                      sync.Mutex
	isOpen                  bool
	renderedBaseFrameCanvas bool
	baseFrameCanvas         image.Image
}

func (mvc *mockVideoConnection) UUID() string {
	return mvc.uuid
}

func (mvc *mockVideoConnection) Read(frame videoframe.Frame) error {
	dst, ok := frame.(*imageFrame)
	if !ok {
		return xerror.New("must pass image frame to mock video connection read")
	}

	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	if !mvc.isOpen {
		return xerror.New("unable to read from closed video connection")
	}

	if !mvc.renderedBaseFrameCanvas {
		mvc.baseFrameCanvas = renderBaseFrameCanvas(mvc.device.Width, mvc.device.Height)
		mvc.renderedBaseFrameCanvas = true
	}

	img, err := drawTextLayerOntoBaseFrameClone(mvc.baseFrameCanvas, mvc.device.Label)
	if err != nil {
		return err
	}

	time.Sleep(mockFrameInterval)
	dst.copyFrom(img)
	return nil
}

func (mvc *mockVideoConnection) IsOpen() bool {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	return mvc.isOpen
}

func (mvc *mockVideoConnection) Close() error {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	mvc.isOpen = false
	mvc.renderedBaseFrameCanvas = false
	mvc.baseFrameCanvas = nil
	return nil
}

func drawTextLayerOntoBaseFrameClone(base image.Image, title string) (image.Image, error) {
	baseClone := cloneImage(base)
	size := labelSizeFor(baseClone.Bounds().Dy())
	lineHeight := int(size * 1.4)

	if err := imagetext.Draw(baseClone, image.White, 5, 5, size, "DUOCAM_MOCK_STREAM"); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err)
	}
	if err := imagetext.Draw(baseClone, image.White, 5, 5+lineHeight, size, title); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err)
	}
	if err := imagetext.Draw(baseClone, image.White, 5, 5+lineHeight*2, size, time.Now().Format("2006-01-02 15:04:05.999")); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err)
	}
	return baseClone, nil
}

func labelSizeFor(height int) float64 {
	return math.Max(10, float64(height)/16)
}

func renderBaseFrameCanvas(w, h int) image.Image {
	var hw, hh float64 = float64(w / 2), float64(h / 2)
	r := math.Min(hw, hh) / 2
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), r * 1.5}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), r * 1.5}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), r * 1.5}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{
				cr.Brightness(float64(x), float64(y)),
				cg.Brightness(float64(x), float64(y)),
				cb.Brightness(float64(x), float64(y)),
				255,
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func cloneImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}
