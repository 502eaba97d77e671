// Package input turns key presses into control changes.
package input

import (
	"context"
	"fmt"

	"github.com/eiannone/keyboard"
	"github.com/sirupsen/logrus"

	"pipelined.dev/hush"
	"pipelined.dev/hush/log"
)

// Source delivers key events. The channel is closed when the source is
// released.
type Source interface {
	Keys() <-chan keyboard.KeyEvent
}

// Action is a control change bound to a key.
type Action uint8

const (
	// None is returned for unbound keys.
	None Action = iota
	// VolumeUp doubles the loudness.
	VolumeUp
	// VolumeDown halves the loudness.
	VolumeDown
	// Quit requests shutdown.
	Quit
)

var actionNames = [...]string{
	None:       "none",
	VolumeUp:   "volume up",
	VolumeDown: "volume down",
	Quit:       "quit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Translate returns the action bound to the key event.
func Translate(ev keyboard.KeyEvent) Action {
	switch ev.Key {
	case keyboard.KeyArrowUp:
		return VolumeUp
	case keyboard.KeyArrowDown:
		return VolumeDown
	case keyboard.KeySpace, keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Quit
	}
	return None
}

// readFailed reports whether the event carries a failure of the terminal
// read. Events with a key and an error are malformed escape sequences.
func readFailed(ev keyboard.KeyEvent) bool {
	return ev.Err != nil && ev.Key == 0 && ev.Rune == 0
}

type (
	// Dispatcher applies key events to the control.
	Dispatcher struct {
		control *hush.Control
		source  Source
		log     logrus.FieldLogger
		status  *Status
	}

	// DispatcherOption configures the dispatcher.
	DispatcherOption func(*Dispatcher)
)

// WithLogger sets the dispatcher logger.
func WithLogger(l logrus.FieldLogger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithStatus sets the status line repainted after volume changes.
func WithStatus(s *Status) DispatcherOption {
	return func(d *Dispatcher) {
		d.status = s
	}
}

// NewDispatcher returns a dispatcher of source events.
func NewDispatcher(control *hush.Control, source Source, options ...DispatcherOption) *Dispatcher {
	d := Dispatcher{
		control: control,
		source:  source,
	}
	for _, option := range options {
		option(&d)
	}
	if d.log == nil {
		d.log = log.GetLogger()
	}
	return &d
}

// Run handles events until quit key is pressed, the context is done or
// the source is closed. A failed key read is returned as error.
func (d *Dispatcher) Run(ctx context.Context) error {
	keys := d.source.Keys()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-keys:
			if !ok {
				d.log.Debug("key source closed")
				return nil
			}
			if readFailed(ev) {
				return fmt.Errorf("read key: %w", ev.Err)
			}
			if ev.Err != nil {
				d.log.WithError(ev.Err).Debug("malformed key sequence")
				continue
			}
			if d.dispatch(Translate(ev)) {
				return nil
			}
		}
	}
}

// dispatch applies the action and reports whether the dispatcher is done.
func (d *Dispatcher) dispatch(a Action) bool {
	var l float64
	switch a {
	case VolumeUp:
		l = d.control.VolumeUp()
	case VolumeDown:
		l = d.control.VolumeDown()
	case Quit:
		d.log.Debug("shutdown requested")
		d.control.RequestShutdown()
		return true
	default:
		return false
	}
	d.log.WithField("loudness", l).Infof("%v", a)
	if d.status != nil {
		d.status.Show(d.control.Phase(), l)
	}
	return false
}
