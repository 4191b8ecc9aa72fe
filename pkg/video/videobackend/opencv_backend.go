package videobackend

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

const (
	sysfsVideo4Linux = "/sys/class/video4linux"
	maxProbeIndex    = 4
)

var goos = runtime.GOOS

type openCVFrame struct {
	isClosed bool
	mat      gocv.Mat
}

func (frame *openCVFrame) DataRef() interface{} {
	return &frame.mat
}

func (frame *openCVFrame) Dimensions() videoframe.Dimensions {
	if frame.isClosed {
		return videoframe.Dimensions{}
	}
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}

func (frame *openCVFrame) ToImage() (image.Image, error) {
	if frame.isClosed || frame.mat.Empty() {
		return nil, xerror.New("frame holds no image data")
	}
	return frame.mat.ToImage()
}

func (frame *openCVFrame) Close() {
	if !frame.isClosed {
		frame.mat.Close()
		frame.isClosed = true
	}
}

type openCVBackend struct{}

// RequestAccess opens the first video device node for reading, which is
// where a missing group membership or udev permission shows up.
func (b *openCVBackend) RequestAccess(ctx context.Context) error {
	if goos != "linux" {
		return nil
	}

	devices, err := listSysfsDevices()
	if err != nil {
		return err
	}

	for _, d := range devices {
		if d.Kind != KindVideoInput {
			continue
		}
		f, err := fs.OpenFile(d.ID, os.O_RDONLY, 0)
		if err != nil {
			return xerror.Errorf("unable to access camera %s: %w", d.ID, err)
		}
		return f.Close()
	}
	return nil
}

func (b *openCVBackend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	if goos != "linux" {
		return probeDevices(ctx), nil
	}
	return listSysfsDevices()
}

func listSysfsDevices() ([]DeviceInfo, error) {
	entries, err := afero.ReadDir(fs, sysfsVideo4Linux)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, xerror.Errorf("unable to list video devices: %w", err)
	}

	nodes := []string{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "video") {
			nodes = append(nodes, e.Name())
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodeNumber(nodes[i]) < nodeNumber(nodes[j])
	})

	devices := make([]DeviceInfo, 0, len(nodes))
	for _, node := range nodes {
		label := readSysfsAttr(node, "name")
		if len(label) == 0 {
			label = node
		}
		kind := KindVideoInput
		// secondary nodes of the same camera carry metadata, not frames
		if index := readSysfsAttr(node, "index"); len(index) > 0 && index != "0" {
			kind = KindUnknown
		}
		devices = append(devices, DeviceInfo{
			ID:    filepath.Join("/dev", node),
			Label: label,
			Kind:  kind,
		})
	}
	return devices, nil
}

func nodeNumber(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(node, "video"))
	if err != nil {
		return -1
	}
	return n
}

func readSysfsAttr(node, attr string) string {
	data, err := afero.ReadFile(fs, filepath.Join(sysfsVideo4Linux, node, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// probeDevices is used where there is no sysfs to read, OpenCV has
// no enumeration API so each index is opened in turn.
func probeDevices(ctx context.Context) []DeviceInfo {
	devices := []DeviceInfo{}
	for i := 0; i < maxProbeIndex; i++ {
		select {
		case <-ctx.Done():
			return devices
		default:
		}
		id := strconv.Itoa(i)
		vc, err := openVideoCapture(id)
		if err != nil {
			log.Debug("No camera found at index %d: %v", i, err)
			continue
		}
		opened := vc.IsOpened()
		vc.Close()
		if !opened {
			continue
		}
		devices = append(devices, DeviceInfo{ID: id, Label: "Camera " + id, Kind: KindVideoInput})
	}
	return devices
}

func (b *openCVBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	conn := openCVConnection{uuid: uuid.NewString()}
	err := conn.connect(cancel, addr)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (b *openCVBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

type openCVConnection struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
}

func (c *openCVConnection) connect(cancel context.Context, addr string) error {
	connAndError := make(chan openVideoStreamResult, 1)
	go openVideoStream(addr, connAndError)
	select {
	case r := <-connAndError:
		if r.err != nil {
			return r.err
		}
		if !r.vc.IsOpened() {
			r.vc.Close()
			return xerror.Errorf("unable to open video device %s", addr)
		}
		c.vc = r.vc
		c.isOpen = true
		return nil
	case <-cancel.Done():
		go releaseLateStream(connAndError)
		return xerror.New("connection cancelled")
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(addr string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(addr)
	result := openVideoStreamResult{vc: vc, err: err}
	d <- result
}

// releaseLateStream closes a capture which finished opening after
// its caller stopped waiting for it.
func releaseLateStream(d chan openVideoStreamResult) {
	r := <-d
	if r.err == nil && r.vc != nil {
		r.vc.Close()
	}
}

var openVideoCapture = func(addr string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(addr)
}

var readFromVideoConnection = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func (c *openCVConnection) UUID() string {
	return c.uuid
}

func (c *openCVConnection) Read(frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV connection read")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return xerror.New("unable to read from closed video connection")
	}
	ok = readFromVideoConnection(c.vc, mat)
	if !ok {
		return xerror.New("unable to read from video connection")
	}
	return nil
}

func (c *openCVConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return nil
	}
	c.isOpen = false
	return c.vc.Close()
}
