// Package mock provides fakes of session dependencies and allows to
// execute sessions without audio device and terminal.
package mock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/eiannone/keyboard"

	"pipelined.dev/hush/metric"
)

const (
	defaultBufferSize = 512
	defaultChannels   = 2
	defaultInterval   = time.Millisecond
)

// Journal records calls of mocks in order. It's shared between mocks to
// check the order of calls across them.
type Journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *Journal) record(call string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, call)
}

// Calls returns recorded calls.
func (j *Journal) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

// Renderer fills float32 buffers.
type Renderer interface {
	Float32(out []float32, channels int) int
}

// Stream mocks a session stream. Once started it calls the renderer
// every Interval until stopped.
type Stream struct {
	*Journal
	Renderer   Renderer
	Interval   time.Duration
	BufferSize int
	Channels   int
	// Stall stops callbacks after the first Stall callbacks.
	Stall int64
	// Underflow marks every callback as underflow.
	Underflow bool
	// Late marks every callback as late.
	Late bool

	ErrorOnStart error
	ErrorOnStop  error
	Hooks

	callbacks  atomic.Int64
	frames     atomic.Int64
	underflows atomic.Int64
	late       atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// Start implements session.Stream.
func (m *Stream) Start() error {
	m.record("start")
	if m.ErrorOnStart != nil {
		return m.ErrorOnStart
	}
	m.startOnce.Do(func() {
		m.Started = true
		m.stop = make(chan struct{})
		m.done = make(chan struct{})
		go m.run()
	})
	return nil
}

func (m *Stream) run() {
	defer close(m.done)
	interval, bufferSize, channels := m.Interval, m.BufferSize, m.Channels
	if interval == 0 {
		interval = defaultInterval
	}
	if bufferSize == 0 {
		bufferSize = defaultBufferSize
	}
	if channels == 0 {
		channels = defaultChannels
	}
	buf := make([]float32, bufferSize*channels)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if m.Stall > 0 && m.callbacks.Load() >= m.Stall {
				continue
			}
			if m.Renderer != nil {
				m.frames.Add(int64(m.Renderer.Float32(buf, channels)))
			}
			if m.Underflow {
				m.underflows.Add(1)
			}
			if m.Late {
				m.late.Add(1)
			}
			m.callbacks.Add(1)
		}
	}
}

// Stop implements session.Stream.
func (m *Stream) Stop() error {
	m.record("stop")
	m.stopOnce.Do(func() {
		m.Stopped = true
		if m.stop != nil {
			close(m.stop)
			<-m.done
		}
	})
	return m.ErrorOnStop
}

// Progress implements session.Stream.
func (m *Stream) Progress() metric.Progress {
	return metric.Progress{
		Callbacks:  m.callbacks.Load(),
		Frames:     m.frames.Load(),
		Underflows: m.underflows.Load(),
		Late:       m.late.Load(),
	}
}

// Terminal mocks a session terminal. Keys are delivered with Press.
type Terminal struct {
	*Journal
	ErrorOnOpen    error
	ErrorOnRestore error
	// OnOpen is called when the terminal is opened.
	OnOpen func()
	Hooks

	once sync.Once
	keys chan keyboard.KeyEvent
}

// NewTerminal returns a terminal with buffered key channel.
func NewTerminal(j *Journal) *Terminal {
	return &Terminal{
		Journal: j,
		keys:    make(chan keyboard.KeyEvent, 16),
	}
}

// Open implements session.Terminal.
func (m *Terminal) Open() error {
	m.record("open")
	m.Opened = true
	if m.OnOpen != nil {
		m.OnOpen()
	}
	return m.ErrorOnOpen
}

// Keys implements input.Source.
func (m *Terminal) Keys() <-chan keyboard.KeyEvent {
	return m.keys
}

// Press delivers a key event.
func (m *Terminal) Press(ev keyboard.KeyEvent) {
	m.keys <- ev
}

// Restore implements session.Terminal. It closes the key channel.
func (m *Terminal) Restore() error {
	m.record("restore")
	m.once.Do(func() {
		m.Restored = true
		close(m.keys)
	})
	return m.ErrorOnRestore
}

// Hooks allows to check which lifecycle calls happened.
type Hooks struct {
	Started  bool
	Stopped  bool
	Opened   bool
	Restored bool
}
