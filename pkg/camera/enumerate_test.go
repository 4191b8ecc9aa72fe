package camera_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/duocam/pkg/camera"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
)

type stubBackend struct {
	accessErr    error
	devices      []videobackend.DeviceInfo
	devicesErr   error
	devicesCalls int
}

func (b *stubBackend) RequestAccess(context.Context) error { return b.accessErr }

func (b *stubBackend) Devices(context.Context) ([]videobackend.DeviceInfo, error) {
	b.devicesCalls++
	return b.devices, b.devicesErr
}

func (b *stubBackend) Connect(context.Context, string) (videobackend.Connection, error) {
	return nil, errors.New("stub backend cannot connect")
}

func (b *stubBackend) NewFrame() videoframe.Frame { return nil }

func TestEnumerateRolesReportsPermissionDeniedWithoutListing(t *testing.T) {
	backend := &stubBackend{accessErr: errors.New("NotAllowedError")}

	_, err := camera.NewEnumerator(backend).EnumerateRoles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, camera.ErrPermissionDenied))
	assert.Zero(t, backend.devicesCalls)
}

func TestEnumerateRolesFiltersNonVideoDevices(t *testing.T) {
	backend := &stubBackend{devices: []videobackend.DeviceInfo{
		{ID: "mic", Label: "Rear Microphone", Kind: videobackend.KindAudioInput},
		{ID: "cam-1", Label: "Front Camera", Kind: videobackend.KindVideoInput},
		{ID: "cam-2", Label: "Back Camera", Kind: videobackend.KindVideoInput},
	}}

	assignment, err := camera.NewEnumerator(backend).EnumerateRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cam-1", assignment.Front.ID)
	assert.Equal(t, "cam-2", assignment.Back.ID)
}

func TestEnumerateRolesWithSingleCameraIsInsufficient(t *testing.T) {
	backend := &stubBackend{devices: []videobackend.DeviceInfo{
		{ID: "cam-1", Label: "Integrated Camera", Kind: videobackend.KindVideoInput},
		{ID: "mic", Label: "Microphone", Kind: videobackend.KindAudioInput},
	}}

	_, err := camera.NewEnumerator(backend).EnumerateRoles(context.Background())
	assert.True(t, errors.Is(err, camera.ErrInsufficientDevices))
}

func TestEnumerateRolesPropagatesListingFailure(t *testing.T) {
	backend := &stubBackend{devicesErr: errors.New("sysfs unreadable")}

	_, err := camera.NewEnumerator(backend).EnumerateRoles(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, camera.ErrPermissionDenied))
	assert.Contains(t, err.Error(), "unable to list cameras")
}

func TestEnumerateRolesAgainstMockBackend(t *testing.T) {
	assignment, err := camera.NewEnumerator(videobackend.Mock()).EnumerateRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock://front", assignment.Front.ID)
	assert.Equal(t, "mock://back", assignment.Back.ID)
}
