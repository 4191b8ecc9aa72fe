package camera

import (
	"context"

	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
)

type Enumerator struct {
	backend videobackend.Backend
}

func NewEnumerator(backend videobackend.Backend) *Enumerator {
	return &Enumerator{backend: backend}
}

// VideoDevices asks for camera access once and then lists
// every video input device in platform order.
func (e *Enumerator) VideoDevices(ctx context.Context) ([]Device, error) {
	if err := e.backend.RequestAccess(ctx); err != nil {
		return nil, xerror.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	infos, err := e.backend.Devices(ctx)
	if err != nil {
		return nil, xerror.Errorf("unable to list cameras: %w", err)
	}

	return videoInputs(infos), nil
}

func (e *Enumerator) EnumerateRoles(ctx context.Context) (RoleAssignment, error) {
	devices, err := e.VideoDevices(ctx)
	if err != nil {
		return RoleAssignment{}, err
	}

	log.Debug("Found %d video input devices", len(devices))
	assignment, err := AssignRoles(devices)
	if err != nil {
		return RoleAssignment{}, err
	}

	log.Info("Assigned front camera: [%s], back camera: [%s]", assignment.Front.Label, assignment.Back.Label)
	return assignment, nil
}

func videoInputs(infos []videobackend.DeviceInfo) []Device {
	devices := []Device{}
	for _, info := range infos {
		if info.Kind != videobackend.KindVideoInput {
			continue
		}
		devices = append(devices, Device{ID: info.ID, Label: info.Label, Kind: info.Kind})
	}
	return devices
}
