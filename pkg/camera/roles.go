package camera

import (
	"strings"

	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
)

type Role int

const (
	RoleFront Role = iota
	RoleBack
)

func (r Role) String() string {
	if r == RoleBack {
		return "back"
	}
	return "front"
}

// Roles lists both roles in the order they are bound and reported.
var Roles = []Role{RoleFront, RoleBack}

type Device struct {
	ID    string
	Label string
	Kind  videobackend.Kind
}

type RoleAssignment struct {
	Front Device
	Back  Device
}

func (a RoleAssignment) Device(r Role) Device {
	if r == RoleBack {
		return a.Back
	}
	return a.Front
}

var backLabelHints = []string{"back", "rear"}

// AssignRoles pairs the first two devices to front and back. Only the
// first device's label is inspected: if it reads as a back or rear
// camera the pair is swapped, otherwise enumeration order is kept.
func AssignRoles(devices []Device) (RoleAssignment, error) {
	if len(devices) < 2 {
		return RoleAssignment{}, xerror.Errorf("%w: found %d", ErrInsufficientDevices, len(devices))
	}

	first, second := devices[0], devices[1]
	if first.ID == second.ID {
		return RoleAssignment{}, xerror.Errorf("%w: both entries refer to device %s", ErrInsufficientDevices, first.ID)
	}

	if labelHintsBack(first.Label) {
		return RoleAssignment{Front: second, Back: first}, nil
	}
	return RoleAssignment{Front: first, Back: second}, nil
}

func labelHintsBack(label string) bool {
	l := strings.ToLower(label)
	for _, hint := range backLabelHints {
		if strings.Contains(l, hint) {
			return true
		}
	}
	return false
}
