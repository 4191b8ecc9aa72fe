package duocam_test

import (
	"context"
	"image"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/duocam/pkg/composite"
	"github.com/tauraamui/duocam/pkg/display"
	"github.com/tauraamui/duocam/pkg/duocam"
)

func overloadTimestampSequence(start time.Time) func() {
	mu := sync.Mutex{}
	next := start
	timestampRef := composite.Timestamp
	composite.Timestamp = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at := next
		next = next.Add(time.Millisecond)
		return at
	}
	return func() { composite.Timestamp = timestampRef }
}

type scriptedScreen struct {
	mu     sync.Mutex
	keys   []int
	shown  []image.Rectangle
	onWait func()
}

func (s *scriptedScreen) Show(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, img.Bounds())
	return nil
}

func (s *scriptedScreen) WaitKey(int) int {
	if s.onWait != nil {
		s.onWait()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		return -1
	}
	key := s.keys[0]
	s.keys = s.keys[1:]
	return key
}

type toggledPresenter struct {
	fullscreen bool
	requests   int
}

func (p *toggledPresenter) RequestFullscreen() error {
	p.requests++
	p.fullscreen = true
	return nil
}

func (p *toggledPresenter) IsFullscreen() bool { return p.fullscreen }

func (suite *SessionTestSuite) TestRunWindowedCapturesOnKeyAndQuits() {
	captured := []string{}
	session := duocam.NewSession(duocam.Settings{
		Backend:     &fakeBackend{devices: twoCameras()},
		BindTimeout: time.Second,
		Exporter:    composite.Exporter{Directory: suite.dir, Prefix: "duocam"},
		OnCapture:   func(path string) { captured = append(captured, path) },
	})
	suite.startReady(session)
	defer session.Shutdown()

	presenter := &toggledPresenter{}
	notifier := display.NewPollingNotifier(presenter)
	keeper := display.NewKeeper(presenter, notifier)
	keeper.Enter()

	screen := &scriptedScreen{keys: []int{-1, ' ', -1, 'q'}}
	ticks := 0
	screen.onWait = func() {
		ticks++
		if ticks == 2 {
			presenter.fullscreen = false
		}
	}

	restore := overloadTimestamp(time.UnixMilli(5000))
	defer restore()

	err := duocam.RunWindowed(context.Background(), session, screen, duocam.FullscreenWatch{Notifier: notifier, Keeper: keeper}, 30)
	require.NoError(suite.T(), err)

	assert.Len(suite.T(), captured, 1)
	assert.Len(suite.T(), screen.shown, 4)
	assert.Equal(suite.T(), image.Rect(0, 0, 960, 480), screen.shown[0])
	assert.Equal(suite.T(), 2, presenter.requests)
}

func (suite *SessionTestSuite) TestRunWindowedStopsWithContext() {
	session := suite.newSession(&fakeBackend{devices: twoCameras()}, "auto")

	ctx, cancel := context.WithCancel(context.Background())
	screen := &scriptedScreen{onWait: cancel}

	require.NoError(suite.T(), duocam.RunWindowed(ctx, session, screen, duocam.FullscreenWatch{}, 0))
	assert.Empty(suite.T(), screen.shown)
}

func (suite *SessionTestSuite) TestRunHeadlessCapturesPerAction() {
	captured := []string{}
	defer overloadTimestampSequence(time.UnixMilli(6000))()
	session := duocam.NewSession(duocam.Settings{
		Backend:     &fakeBackend{devices: twoCameras()},
		BindTimeout: time.Second,
		Exporter:    composite.Exporter{Directory: suite.dir, Prefix: "duocam"},
		OnCapture:   func(path string) { captured = append(captured, path) },
	})
	suite.startReady(session)
	defer session.Shutdown()

	actions := make(chan display.Action)
	done := make(chan error)
	go func() { done <- duocam.RunHeadless(context.Background(), session, actions) }()

	actions <- display.ActionCapture
	actions <- display.ActionCapture
	actions <- display.ActionQuit
	require.NoError(suite.T(), <-done)

	assert.Len(suite.T(), captured, 2)
	entries, err := os.ReadDir(suite.dir)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 2)
}

func (suite *SessionTestSuite) TestRunHeadlessEndsWhenActionsClose() {
	session := suite.newSession(&fakeBackend{devices: twoCameras()}, "auto")

	actions := make(chan display.Action)
	close(actions)
	require.NoError(suite.T(), duocam.RunHeadless(context.Background(), session, actions))
}
