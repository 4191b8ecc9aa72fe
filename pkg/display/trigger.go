package display

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/xerror"
	"golang.org/x/term"
)

type Action int

const (
	ActionNone Action = iota
	ActionCapture
	ActionQuit
)

const (
	keyCtrlC  = 3
	keyEscape = 27
)

// ActionForKey maps a key code from either a HighGUI window or a raw
// terminal to what the user asked for.
func ActionForKey(key int) Action {
	switch key {
	case ' ', '\r', '\n', 'c', 'C':
		return ActionCapture
	case 'q', 'Q', keyEscape, keyCtrlC:
		return ActionQuit
	default:
		return ActionNone
	}
}

var (
	isTerminal      = term.IsTerminal
	makeRaw         = term.MakeRaw
	restoreTerminal = term.Restore
)

// TerminalTrigger turns key presses on a terminal into actions.
type TerminalTrigger struct {
	in io.Reader
}

func NewTerminalTrigger(in io.Reader) *TerminalTrigger {
	return &TerminalTrigger{in: in}
}

// Listen switches the terminal into raw mode, when the input is one,
// so single key presses arrive unbuffered. The returned func restores
// the terminal and must be called once listening is no longer needed.
func (t *TerminalTrigger) Listen(ctx context.Context) (<-chan Action, func(), error) {
	restore := func() {}
	if f, ok := t.in.(*os.File); ok && isTerminal(int(f.Fd())) {
		state, err := makeRaw(int(f.Fd()))
		if err != nil {
			return nil, restore, xerror.Errorf("unable to put terminal into raw mode: %w", err)
		}
		restore = func() {
			if err := restoreTerminal(int(f.Fd()), state); err != nil {
				log.Warn("Unable to restore terminal state: %v", err)
			}
		}
	}

	actions := make(chan Action)
	go func() {
		defer close(actions)
		reader := bufio.NewReader(t.in)
		for {
			b, err := reader.ReadByte()
			if err != nil {
				if err != io.EOF {
					log.Error("Unable to read key press: %v", err)
				}
				return
			}

			action := ActionForKey(int(b))
			if action == ActionNone {
				continue
			}

			select {
			case actions <- action:
			case <-ctx.Done():
				return
			}
			if action == ActionQuit {
				return
			}
		}
	}()

	return actions, restore, nil
}
