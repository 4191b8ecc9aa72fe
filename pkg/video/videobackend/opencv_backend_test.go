package videobackend

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

func overloadOpenVidCap(overload func(addr string) (*gocv.VideoCapture, error)) func() {
	openVidCapRef := openVideoCapture
	openVideoCapture = overload
	return func() { openVideoCapture = openVidCapRef }
}

func overloadGOOS(value string) func() {
	goosRef := goos
	goos = value
	return func() { goos = goosRef }
}

type OpenCVDevicesTestSuite struct {
	suite.Suite
	resetGOOS func()
}

func (suite *OpenCVDevicesTestSuite) SetupTest() {
	fs = afero.NewMemMapFs()
	suite.resetGOOS = overloadGOOS("linux")
}

func (suite *OpenCVDevicesTestSuite) TearDownTest() {
	fs = afero.NewOsFs()
	suite.resetGOOS()
}

func (suite *OpenCVDevicesTestSuite) addNode(node, name, index string) {
	dir := sysfsVideo4Linux + "/" + node
	require.NoError(suite.T(), fs.MkdirAll(dir, os.ModeDir|os.ModePerm))
	require.NoError(suite.T(), afero.WriteFile(fs, dir+"/name", []byte(name+"\n"), 0644))
	if len(index) > 0 {
		require.NoError(suite.T(), afero.WriteFile(fs, dir+"/index", []byte(index+"\n"), 0644))
	}
}

func (suite *OpenCVDevicesTestSuite) TestDevicesListedInNodeOrderWithLabels() {
	suite.addNode("video10", "USB Rear Camera", "0")
	suite.addNode("video2", "Integrated Camera", "0")
	suite.addNode("video3", "Integrated Camera", "1")

	devices, err := OpenCV().Devices(context.Background())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), devices, 3)

	assert.Equal(suite.T(), DeviceInfo{ID: "/dev/video2", Label: "Integrated Camera", Kind: KindVideoInput}, devices[0])
	assert.Equal(suite.T(), DeviceInfo{ID: "/dev/video3", Label: "Integrated Camera", Kind: KindUnknown}, devices[1])
	assert.Equal(suite.T(), DeviceInfo{ID: "/dev/video10", Label: "USB Rear Camera", Kind: KindVideoInput}, devices[2])
}

func (suite *OpenCVDevicesTestSuite) TestDevicesWithoutSysfsReturnsNothing() {
	devices, err := OpenCV().Devices(context.Background())
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), devices)
}

func (suite *OpenCVDevicesTestSuite) TestRequestAccessFailsWhenDeviceNodeCannotBeOpened() {
	suite.addNode("video0", "Integrated Camera", "0")

	err := OpenCV().RequestAccess(context.Background())
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "unable to access camera /dev/video0")
}

func (suite *OpenCVDevicesTestSuite) TestRequestAccessOpensFirstDeviceNode() {
	suite.addNode("video0", "Integrated Camera", "0")
	require.NoError(suite.T(), afero.WriteFile(fs, "/dev/video0", []byte{}, 0644))

	assert.NoError(suite.T(), OpenCV().RequestAccess(context.Background()))
}

func (suite *OpenCVDevicesTestSuite) TestProbeDevicesOffLinuxSkipsFailedIndexes() {
	defer overloadGOOS("darwin")()
	defer overloadOpenVidCap(func(addr string) (*gocv.VideoCapture, error) {
		return nil, xerror.Errorf("no camera at %s", addr)
	})()

	devices, err := OpenCV().Devices(context.Background())
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), devices)
}

func TestOpenCVDevicesTestSuite(t *testing.T) {
	suite.Run(t, &OpenCVDevicesTestSuite{})
}

func TestOpenVideoStreamInvokesOpenVideoCapture(t *testing.T) {
	is := is.New(t)
	resetOpenVidCap := overloadOpenVidCap(
		func(addr string) (*gocv.VideoCapture, error) {
			return nil, xerror.New("test connect error")
		},
	)
	defer resetOpenVidCap()

	conn, err := OpenCV().Connect(context.Background(), "/dev/video0")
	is.True(conn == nil)
	is.Equal(err.Error(), "test connect error")
}

func TestConnectWithImmediateCancelInvoke(t *testing.T) {
	is := is.New(t)
	block := make(chan struct{})
	defer close(block)
	resetOpenVidCap := overloadOpenVidCap(
		func(addr string) (*gocv.VideoCapture, error) {
			<-block
			return nil, xerror.New("never opened")
		},
	)
	defer resetOpenVidCap()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := openCVConnection{}
	is.Equal(conn.connect(ctx, "/dev/video0").Error(), "connection cancelled")
}

func TestReadWithIncorrectFrameDataReturnsError(t *testing.T) {
	is := is.New(t)
	conn := openCVConnection{isOpen: true}
	is.Equal(conn.Read(&imageFrame{}).Error(), "must pass OpenCV frame to OpenCV connection read")
}

func TestReadFromClosedConnectionReturnsError(t *testing.T) {
	is := is.New(t)
	conn := openCVConnection{}
	frame := OpenCV().NewFrame()
	defer frame.Close()
	is.Equal(conn.Read(frame).Error(), "unable to read from closed video connection")
}

func TestClosedOpenCVFrameReportsZeroDimensions(t *testing.T) {
	is := is.New(t)
	frame := OpenCV().NewFrame()
	frame.Close()
	is.True(frame.Dimensions().IsZero())
	_, err := frame.ToImage()
	is.Equal(err.Error(), "frame holds no image data")
}
