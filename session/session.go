// Package session coordinates a playback session: it owns the terminal
// and the stream lifecycle, runs the input dispatcher, the interrupt
// watcher and the stream watchdog, and tears everything down in order.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/hush"
	"pipelined.dev/hush/input"
	"pipelined.dev/hush/log"
	"pipelined.dev/hush/metric"
)

const (
	// DefaultWatchInterval is the period of stream progress checks.
	DefaultWatchInterval = 250 * time.Millisecond
	// DefaultStallAfter is the time without callbacks after which the
	// stream is considered halted.
	DefaultStallAfter = 2 * time.Second
)

// ErrStalled is returned when the stream stops delivering callbacks.
var ErrStalled = errors.New("audio stream stalled")

type (
	// Stream is a started once and stopped once audio stream.
	Stream interface {
		Start() error
		Stop() error
		Progress() metric.Progress
	}

	// Terminal is a key source that must be restored after use.
	Terminal interface {
		input.Source
		Open() error
		Restore() error
	}

	// Session runs a stream until shutdown is requested.
	Session struct {
		id       string
		stream   Stream
		terminal Terminal
		control  *hush.Control
		log      logrus.FieldLogger
		status   *input.Status
		signals  []os.Signal

		watchInterval time.Duration
		stallAfter    time.Duration
	}

	// Option configures the session.
	Option func(*Session)
)

// WithLogger sets the session logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithWatchdog sets the period of progress checks and the time without
// callbacks after which the stream is stalled. Zero stallAfter disables
// stall detection.
func WithWatchdog(interval, stallAfter time.Duration) Option {
	return func(s *Session) {
		s.watchInterval = interval
		s.stallAfter = stallAfter
	}
}

// WithSignals overrides the signals that request shutdown.
func WithSignals(signals ...os.Signal) Option {
	return func(s *Session) {
		s.signals = signals
	}
}

// WithStatus sets the status line.
func WithStatus(status *input.Status) Option {
	return func(s *Session) {
		s.status = status
	}
}

// New returns a session that is not running yet.
func New(stream Stream, terminal Terminal, control *hush.Control, options ...Option) *Session {
	s := Session{
		id:            xid.New().String(),
		stream:        stream,
		terminal:      terminal,
		control:       control,
		signals:       interruptSignals,
		watchInterval: DefaultWatchInterval,
		stallAfter:    DefaultStallAfter,
	}
	for _, option := range options {
		option(&s)
	}
	if s.log == nil {
		s.log = log.GetLogger()
	}
	s.log = s.log.WithField("session", s.id)
	return &s
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run puts the terminal into raw mode, starts the stream and blocks until
// shutdown is requested, the context is done or any session goroutine
// fails. The stream is always stopped before the terminal is restored.
func (s *Session) Run(ctx context.Context) (err error) {
	// signals are caught before the terminal enters raw mode and until it
	// is restored.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, s.signals...)
	defer signal.Stop(sigc)

	var (
		result  ShutdownError
		opened  bool
		stopped bool
	)
	defer func() {
		if !stopped {
			result.ErrStop = s.stream.Stop()
		}
		if opened {
			if s.status != nil {
				s.status.Clear()
			}
			result.ErrRestore = s.terminal.Restore()
		}
		err = result.ret()
		s.log.WithError(err).Debug("session released")
	}()

	if openErr := s.terminal.Open(); openErr != nil {
		result.ErrRun = fmt.Errorf("open terminal: %w", openErr)
		return
	}
	opened = true

	if startErr := s.stream.Start(); startErr != nil {
		result.ErrRun = fmt.Errorf("start stream: %w", startErr)
		return
	}
	s.log.Info("started")
	if s.status != nil {
		s.status.Show(s.control.Phase(), s.control.Loudness())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	dispatcher := input.NewDispatcher(s.control, s.terminal,
		input.WithLogger(s.log),
		input.WithStatus(s.status),
	)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		return s.interrupt(gctx, sigc)
	})
	g.Go(func() error {
		return s.watch(gctx)
	})

	select {
	case <-s.control.Done():
		s.log.Debug("shutdown requested")
	case <-gctx.Done():
		s.log.Debug("session context done")
	}

	result.ErrStop = s.stream.Stop()
	stopped = true
	cancel()
	result.ErrRun = g.Wait()
	s.log.Info("stopped")
	return
}

// interrupt requests shutdown on the first received signal.
func (s *Session) interrupt(ctx context.Context, sigc <-chan os.Signal) error {
	select {
	case <-ctx.Done():
	case sig := <-sigc:
		s.log.WithField("signal", sig).Info("interrupted")
		s.control.RequestShutdown()
	}
	return nil
}

// watch checks the stream progress. It logs reported underflows, late
// callbacks and phase changes, and fails when no callbacks happen for
// stallAfter.
func (s *Session) watch(ctx context.Context) error {
	ticker := time.NewTicker(s.watchInterval)
	defer ticker.Stop()
	var (
		last       metric.Progress
		progressAt = time.Now()
		phase      = s.control.Phase()
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p := s.stream.Progress()
			if p.Underflows > last.Underflows {
				s.log.WithField("underflows", p.Underflows-last.Underflows).Warn("output underflow")
			}
			if p.Late > last.Late {
				s.log.WithField("late", p.Late-last.Late).Warn("callbacks missed buffer deadline")
			}
			if p.Callbacks != last.Callbacks {
				progressAt = now
			} else if stalled := now.Sub(progressAt); s.stallAfter > 0 && stalled >= s.stallAfter {
				return fmt.Errorf("%w: no callbacks for %v", ErrStalled, stalled.Round(time.Millisecond))
			}
			last = p
			if ph := s.control.Phase(); ph != phase {
				phase = ph
				s.log.WithField("phase", ph).Info("phase changed")
				if s.status != nil {
					s.status.Show(ph, s.control.Loudness())
				}
			}
		}
	}
}
