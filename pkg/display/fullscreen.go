package display

import (
	"github.com/tauraamui/duocam/pkg/log"
)

// Presenter is whatever the live feeds are shown in that can be
// asked to take over the whole screen.
type Presenter interface {
	RequestFullscreen() error
	IsFullscreen() bool
}

// ExitNotifier signals each time the presenter leaves fullscreen,
// however the platform reports it.
type ExitNotifier interface {
	Exits() <-chan struct{}
}

// PollingNotifier derives exit events from sampled fullscreen state,
// for platforms that offer no exit callback. Poll must be called from
// the goroutine that owns the presenter.
type PollingNotifier struct {
	presenter Presenter
	was       bool
	exits     chan struct{}
}

func NewPollingNotifier(presenter Presenter) *PollingNotifier {
	return &PollingNotifier{presenter: presenter, exits: make(chan struct{}, 1)}
}

func (n *PollingNotifier) Poll() {
	now := n.presenter.IsFullscreen()
	if n.was && !now {
		select {
		case n.exits <- struct{}{}:
		default:
		}
	}
	n.was = now
}

func (n *PollingNotifier) Exits() <-chan struct{} {
	return n.exits
}

// Keeper holds the presenter in fullscreen: it asks once on entry and
// again after every exit. Refusals are logged and otherwise ignored.
type Keeper struct {
	presenter Presenter
	notifier  ExitNotifier
}

func NewKeeper(presenter Presenter, notifier ExitNotifier) *Keeper {
	return &Keeper{presenter: presenter, notifier: notifier}
}

func (k *Keeper) Enter() {
	if err := k.presenter.RequestFullscreen(); err != nil {
		log.Debug("Fullscreen request was not honoured: %v", err)
	}
}

// Service re-enters fullscreen if an exit has been signalled since
// the last call. It never blocks.
func (k *Keeper) Service() bool {
	select {
	case <-k.notifier.Exits():
		log.Debug("Left fullscreen, requesting it again")
		k.Enter()
		return true
	default:
		return false
	}
}
