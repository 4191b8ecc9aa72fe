package camera

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied    = errors.New("camera permission denied")
	ErrInsufficientDevices = errors.New("fewer than two cameras available")
	ErrBind                = errors.New("unable to bind camera stream")
)

// Messages shown to the user when a session cannot start.
const (
	InsufficientDevicesMessage = "Please make sure you have both front and back cameras available on your device. " +
		"If you do, try rotating your device to landscape mode or restarting the browser."
	BindFailedMessage = "Error accessing cameras. Please make sure you have granted camera permissions and try again."
)

// BindError names which side's stream could not be opened.
type BindError struct {
	Role Role
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("unable to bind %s camera stream: %v", e.Role, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func (e *BindError) Is(target error) bool {
	return target == ErrBind
}
