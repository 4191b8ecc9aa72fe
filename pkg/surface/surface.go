package surface

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/draw"
)

var ErrNotReady = errors.New("surface has no frame to capture")

type Settings struct {
	Name            string
	ReleaseOnRebind bool
}

// Surface is the live sink for one camera stream. It holds at most
// one bound connection and a copy of the latest frame that stream
// produced; rebinding discards both.
type Surface struct {
	name            string
	releaseOnRebind bool

	mu     sync.RWMutex
	conn   videobackend.Connection
	latest *image.RGBA
	ready  chan struct{}
}

func New(settings Settings) *Surface {
	return &Surface{
		name:            settings.Name,
		releaseOnRebind: settings.ReleaseOnRebind,
		ready:           make(chan struct{}),
	}
}

func (s *Surface) Name() string {
	return s.name
}

// Bind replaces the surface's stream. The previous connection, if
// any, is closed when the surface is configured to release on rebind.
func (s *Surface) Bind(conn videobackend.Connection) {
	s.mu.Lock()
	previous := s.conn
	s.conn = conn
	s.latest = nil
	s.ready = make(chan struct{})
	s.mu.Unlock()

	if previous == nil || previous == conn {
		return
	}

	if !s.releaseOnRebind {
		log.Debug("Leaving previous stream [%s] open on surface [%s]", previous.UUID(), s.name)
		return
	}

	log.Debug("Releasing previous stream [%s] from surface [%s]", previous.UUID(), s.name)
	if err := previous.Close(); err != nil {
		log.Warn("Unable to release previous stream on surface [%s]: %v", s.name, err)
	}
}

func (s *Surface) Connection() videobackend.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// Present stores img as the latest frame for conn. Frames from a
// connection that is no longer bound are dropped.
func (s *Surface) Present(conn videobackend.Connection, img image.Image) bool {
	if img == nil || img.Bounds().Empty() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.conn != conn {
		return false
	}

	s.latest = copyAtOrigin(s.latest, img)
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
	return true
}

func (s *Surface) Dimensions() videoframe.Dimensions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return videoframe.Dimensions{}
	}
	b := s.latest.Bounds()
	return videoframe.Dimensions{W: b.Dx(), H: b.Dy()}
}

// Snapshot paints the latest frame into a new buffer at the frame's
// native size with its origin at (0,0).
func (s *Surface) Snapshot() (*image.RGBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil || s.latest.Bounds().Empty() {
		return nil, xerror.Errorf("%w: %s", ErrNotReady, s.name)
	}
	return copyAtOrigin(nil, s.latest), nil
}

// WaitReady blocks until the bound stream has produced a frame.
func (s *Surface) WaitReady(ctx context.Context) error {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return xerror.Errorf("waiting for surface [%s] to receive a frame: %w", s.name, ctx.Err())
	}
}

// Release closes and unbinds the current connection.
func (s *Surface) Release() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.latest = nil
	s.ready = make(chan struct{})
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func copyAtOrigin(dst *image.RGBA, src image.Image) *image.RGBA {
	b := src.Bounds()
	if dst == nil || dst.Bounds().Dx() != b.Dx() || dst.Bounds().Dy() != b.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
