package main

import (
	"testing"

	"github.com/matryer/is"
)

func TestBackendNameOverride(t *testing.T) {
	is := is.New(t)

	is.Equal(backendName("opencv", ""), "opencv")
	is.Equal(backendName("opencv", "  MOCK "), "mock")
	is.Equal(backendName("mediadevices", "opencv"), "opencv")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	is := is.New(t)

	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "devices", "capture", "setup", "remove-setup"} {
		is.True(names[want])
	}
	is.True(root.Flags().Lookup("headless") != nil)
}
