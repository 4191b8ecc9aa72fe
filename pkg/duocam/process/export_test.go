package process

import "time"

func OverloadReadFailureBackoff(overload time.Duration) func() {
	backoffRef := readFailureBackoff
	readFailureBackoff = overload
	return func() { readFailureBackoff = backoffRef }
}
