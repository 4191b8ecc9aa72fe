package duocam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/tauraamui/duocam/pkg/camera"
	"github.com/tauraamui/duocam/pkg/composite"
	"github.com/tauraamui/duocam/pkg/display"
	"github.com/tauraamui/duocam/pkg/duocam/process"
	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/surface"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
)

// Fullscreen is asked to take over the screen once both streams are bound.
type Fullscreen interface {
	Enter()
}

type Settings struct {
	Backend         videobackend.Backend
	BindTimeout     time.Duration
	ReleaseOnRebind bool
	Exporter        composite.Exporter
	Orientation     composite.OrientationResolver
	DateTimeLabel   bool
	DateTimeFormat  string
	Alerter         display.Alerter
	Fullscreen      Fullscreen
	OnCapture       func(path string)
}

type Session struct {
	backend        videobackend.Backend
	enumerator     *camera.Enumerator
	bindTimeout    time.Duration
	exporter       composite.Exporter
	orientation    composite.OrientationResolver
	dateTimeLabel  bool
	dateTimeFormat string
	alerter        display.Alerter
	fullscreen     Fullscreen
	onCapture      func(path string)

	front *surface.Surface
	back  *surface.Surface

	mu    sync.Mutex
	feeds []process.Process
}

func NewSession(settings Settings) *Session {
	return &Session{
		backend:        settings.Backend,
		enumerator:     camera.NewEnumerator(settings.Backend),
		bindTimeout:    settings.BindTimeout,
		exporter:       settings.Exporter,
		orientation:    settings.Orientation,
		dateTimeLabel:  settings.DateTimeLabel,
		dateTimeFormat: settings.DateTimeFormat,
		alerter:        settings.Alerter,
		fullscreen:     settings.Fullscreen,
		onCapture:      settings.OnCapture,
		front:          surface.New(surface.Settings{Name: camera.RoleFront.String(), ReleaseOnRebind: settings.ReleaseOnRebind}),
		back:           surface.New(surface.Settings{Name: camera.RoleBack.String(), ReleaseOnRebind: settings.ReleaseOnRebind}),
	}
}

func (s *Session) Surface(role camera.Role) *surface.Surface {
	if role == camera.RoleBack {
		return s.back
	}
	return s.front
}

// SetViewport points orientation decisions at the live display.
func (s *Session) SetViewport(viewport composite.Viewport) {
	s.orientation.Viewport = viewport
}

func (s *Session) Orientation() composite.Orientation {
	return s.orientation.Resolve()
}

// Start enumerates the cameras and binds both streams. Failures the
// user can act on are raised through the alerter before being returned.
func (s *Session) Start(ctx context.Context) error {
	assignment, err := s.enumerator.EnumerateRoles(ctx)
	if err != nil {
		if errors.Is(err, camera.ErrInsufficientDevices) {
			s.alert(camera.InsufficientDevicesMessage)
		}
		return err
	}

	if err := s.BindStreams(ctx, assignment); err != nil {
		s.alert(camera.BindFailedMessage)
		return err
	}
	return nil
}

func (s *Session) alert(message string) {
	if s.alerter == nil {
		log.Error(message)
		return
	}
	s.alerter.Alert(message)
}

type bindResult struct {
	role camera.Role
	conn videobackend.Connection
	err  error
}

// BindStreams opens both device-constrained streams concurrently and
// attaches each to its role's surface. Both outcomes are awaited; when
// both sides fail the front failure is returned and the back one logged.
func (s *Session) BindStreams(ctx context.Context, assignment camera.RoleAssignment) error {
	results := make([]bindResult, len(camera.Roles))

	wg := sync.WaitGroup{}
	wg.Add(len(camera.Roles))
	for i, role := range camera.Roles {
		go func(wg *sync.WaitGroup, i int, role camera.Role) {
			defer wg.Done()
			conn, err := s.connect(ctx, assignment.Device(role))
			results[i] = bindResult{role: role, conn: conn, err: err}
		}(&wg, i, role)
	}
	wg.Wait()

	var bindErr error
	for _, r := range results {
		if r.err == nil {
			continue
		}
		err := &camera.BindError{Role: r.role, Err: r.err}
		if bindErr != nil {
			log.Error("Also failed: %v", err)
			continue
		}
		bindErr = err
	}

	for _, r := range results {
		if r.err != nil {
			continue
		}
		if bindErr != nil {
			closeConnection(r.conn)
			continue
		}
		s.attach(r.role, r.conn)
	}

	if bindErr != nil {
		return bindErr
	}

	if s.fullscreen != nil {
		s.fullscreen.Enter()
	}
	return nil
}

func (s *Session) connect(ctx context.Context, device camera.Device) (videobackend.Connection, error) {
	if s.bindTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.bindTimeout)
		defer cancel()
	}

	log.Info("Connecting to camera: [%s]...", device.Label)
	conn, err := s.backend.Connect(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to camera: [%s]", device.Label)
	return conn, nil
}

func closeConnection(conn videobackend.Connection) {
	if err := conn.Close(); err != nil {
		log.Warn("Unable to close unused stream [%s]: %v", conn.UUID(), err)
	}
}

func (s *Session) attach(role camera.Role, conn videobackend.Connection) {
	dst := s.Surface(role)
	dst.Bind(conn)

	feed := process.New(process.Settings{
		WaitForShutdownMsg: fmt.Sprintf("Closing [%s] camera video stream...", role),
		Process:            process.FeedSurfaceProcess(conn, s.backend.NewFrame(), dst),
	})
	feed.Setup().Start()

	s.mu.Lock()
	s.feeds = append(s.feeds, feed)
	s.mu.Unlock()
}

// WaitReady blocks until both surfaces have received a frame.
func (s *Session) WaitReady(ctx context.Context) error {
	if err := s.front.WaitReady(ctx); err != nil {
		return err
	}
	return s.back.WaitReady(ctx)
}

// CaptureAndExport snapshots both surfaces, lays them out for the
// current orientation and saves the result as a PNG.
func (s *Session) CaptureAndExport() (string, error) {
	front, err := s.front.Snapshot()
	if err != nil {
		return "", err
	}
	back, err := s.back.Snapshot()
	if err != nil {
		return "", err
	}

	orientation := s.Orientation()
	canvas, err := composite.Compose(orientation, front, back)
	if err != nil {
		return "", err
	}

	at := composite.Timestamp()
	if s.dateTimeLabel {
		if err := composite.DrawLabel(canvas, at.Format(s.dateTimeFormat)); err != nil {
			log.Warn("Unable to label capture: %v", err)
		}
	}

	log.Debug("Composited %s capture of %dx%d", orientation, canvas.Bounds().Dx(), canvas.Bounds().Dy())
	path, err := s.exporter.Export(canvas, at)
	if err != nil {
		return "", xerror.Errorf("unable to export capture: %w", err)
	}
	return path, nil
}

// Preview is the live view of both surfaces, nil until one has a frame.
func (s *Session) Preview() image.Image {
	var front, back image.Image
	if img, err := s.front.Snapshot(); err == nil {
		front = img
	}
	if img, err := s.back.Snapshot(); err == nil {
		back = img
	}
	return display.PreviewImage(s.Orientation(), front, back)
}

// Shutdown stops every feed and releases both streams.
func (s *Session) Shutdown() {
	s.mu.Lock()
	feeds := s.feeds
	s.feeds = nil
	s.mu.Unlock()

	wg := sync.WaitGroup{}
	wg.Add(len(feeds))
	for _, feed := range feeds {
		go func(wg *sync.WaitGroup, feed process.Process) {
			feed.Stop()
			feed.Wait()
			wg.Done()
		}(&wg, feed)
	}
	wg.Wait()

	for _, role := range camera.Roles {
		if err := s.Surface(role).Release(); err != nil {
			log.Warn("Unable to release [%s] camera stream: %v", role, err)
		}
	}
}
