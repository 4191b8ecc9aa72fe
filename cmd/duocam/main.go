package main

import (
	"os"
	"runtime"

	"github.com/tauraamui/duocam/pkg/log"
)

const (
	name        = "duocam"
	description = "Capture both front and back cameras at once and save them as one picture"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// HighGUI windows must only be touched from the thread that made them.
	runtime.LockOSThread()
	log.SetLevel(os.Getenv("DUOCAM_LOGGING_LEVEL"))
}
