package duocam

import (
	"context"
	"errors"
	"image"

	"github.com/tauraamui/duocam/pkg/display"
	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/surface"
)

const defaultPreviewFPS = 30

// Screen is the live preview sink, normally a display.Window.
type Screen interface {
	Show(image.Image) error
	WaitKey(delay int) int
}

// FullscreenWatch is polled once per preview tick.
type FullscreenWatch struct {
	Notifier *display.PollingNotifier
	Keeper   *display.Keeper
}

func (f FullscreenWatch) tick() {
	if f.Notifier == nil || f.Keeper == nil {
		return
	}
	f.Notifier.Poll()
	f.Keeper.Service()
}

// Capture runs one capture, logging rather than returning failures.
func (s *Session) Capture() (string, bool) {
	path, err := s.CaptureAndExport()
	if err != nil {
		if errors.Is(err, surface.ErrNotReady) {
			log.Warn("Nothing to capture yet: %v", err)
			return "", false
		}
		log.Error("Capture failed: %v", err)
		return "", false
	}
	if s.onCapture != nil {
		s.onCapture(path)
	}
	return path, true
}

// RunWindowed shows the preview on screen and handles key presses
// until quit or ctx is done. It must run on the goroutine that owns
// the screen.
func RunWindowed(ctx context.Context, s *Session, screen Screen, watch FullscreenWatch, fps int) error {
	if fps <= 0 {
		fps = defaultPreviewFPS
	}
	delay := 1000 / fps
	if delay < 1 {
		delay = 1
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if img := s.Preview(); img != nil {
			if err := screen.Show(img); err != nil {
				log.Error("Unable to show preview: %v", err)
			}
		}
		watch.tick()

		switch display.ActionForKey(screen.WaitKey(delay)) {
		case display.ActionCapture:
			s.Capture()
		case display.ActionQuit:
			log.Info("Quit requested")
			return nil
		}
	}
}

// RunHeadless captures on every action until quit, the action source
// closes or ctx is done.
func RunHeadless(ctx context.Context, s *Session, actions <-chan display.Action) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case action, ok := <-actions:
			if !ok {
				return nil
			}
			switch action {
			case display.ActionCapture:
				s.Capture()
			case display.ActionQuit:
				log.Info("Quit requested")
				return nil
			}
		}
	}
}
