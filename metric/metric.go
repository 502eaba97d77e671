// Package metric measures the realtime budget of audio callbacks. Every
// callback has to arrive before the device runs out of the previously
// rendered buffer; callbacks that miss it are counted as late.
//
// Meters are published with expvar as maps under the "hush" variable:
//
//	hush.portaudio.callbacks
//	hush.portaudio.late
//	hush.portaudio.max_gap
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pipelined.dev/hush/signal"
)

// Published counter names.
const (
	Callbacks  = "callbacks"
	Frames     = "frames"
	Rendered   = "rendered"
	MaxGap     = "max_gap"
	Late       = "late"
	Underflows = "underflows"
)

// lateFactor is how many durations of the previous buffer may pass
// before the next callback is counted late.
const lateFactor = 2

var (
	published = expvar.NewMap("hush")

	mu     sync.Mutex
	meters = make(map[string]*Meter)
)

// Progress is a snapshot of meter counters.
type Progress struct {
	Callbacks  int64
	Frames     int64
	Underflows int64
	Late       int64
}

type (
	// Meter counts callbacks of a single realtime component. Measure
	// must be called from one goroutine; all other methods are safe for
	// concurrent use. Meter doesn't allocate on the callback path.
	Meter struct {
		sampleRate int
		now        func() time.Time
		vars       *expvar.Map

		callbacks  expvar.Int
		frames     expvar.Int
		underflows expvar.Int
		late       expvar.Int
		rendered   duration
		maxGap     duration

		// owned by the measuring goroutine.
		last   time.Time
		budget time.Duration
	}

	// Option configures a new meter.
	Option func(*Meter)
)

// WithClock replaces time.Now as the meter time source.
func WithClock(fn func() time.Time) Option {
	return func(m *Meter) {
		m.now = fn
	}
}

// Register returns the meter of the named component. It's created and
// published on the first call; later calls return the same meter and
// ignore the arguments.
func Register(component string, sampleRate int, options ...Option) *Meter {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := meters[component]; ok {
		return m
	}
	m := &Meter{
		sampleRate: sampleRate,
		now:        time.Now,
		vars:       new(expvar.Map).Init(),
	}
	for _, option := range options {
		option(m)
	}
	m.vars.Set(Callbacks, &m.callbacks)
	m.vars.Set(Frames, &m.frames)
	m.vars.Set(Underflows, &m.underflows)
	m.vars.Set(Late, &m.late)
	m.vars.Set(Rendered, &m.rendered)
	m.vars.Set(MaxGap, &m.maxGap)
	published.Set(component, m.vars)
	meters[component] = m
	return m
}

// Measure records a callback that rendered frames.
func (m *Meter) Measure(frames int64) {
	now := m.now()
	if !m.last.IsZero() {
		gap := now.Sub(m.last)
		m.maxGap.max(gap)
		if m.budget > 0 && gap > lateFactor*m.budget {
			m.late.Add(1)
		}
	}
	m.last = now
	m.budget = signal.DurationOf(m.sampleRate, frames)
	m.callbacks.Add(1)
	m.frames.Add(frames)
	m.rendered.add(m.budget)
}

// Underflow records an output underflow reported by the driver.
func (m *Meter) Underflow() {
	m.underflows.Add(1)
}

// Progress returns the current counters.
func (m *Meter) Progress() Progress {
	return Progress{
		Callbacks:  m.callbacks.Value(),
		Frames:     m.frames.Value(),
		Underflows: m.underflows.Value(),
		Late:       m.late.Value(),
	}
}

// Values returns published values by counter name.
func (m *Meter) Values() map[string]string {
	values := make(map[string]string)
	m.vars.Do(func(kv expvar.KeyValue) {
		values[kv.Key] = kv.Value.String()
	})
	return values
}

// Get returns published values of the component. It returns nil if the
// component is not registered.
func Get(component string) map[string]string {
	mu.Lock()
	m, ok := meters[component]
	mu.Unlock()
	if !ok {
		return nil
	}
	return m.Values()
}

// GetAll returns published values of all registered components.
func GetAll() map[string]map[string]string {
	mu.Lock()
	defer mu.Unlock()
	all := make(map[string]map[string]string, len(meters))
	for component, m := range meters {
		all[component] = m.Values()
	}
	return all
}

// duration is a time.Duration expvar.
type duration struct {
	d atomic.Int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(v.d.Load()).String())
}

func (v *duration) add(delta time.Duration) {
	v.d.Add(int64(delta))
}

func (v *duration) max(d time.Duration) {
	for {
		old := v.d.Load()
		if int64(d) <= old || v.d.CompareAndSwap(old, int64(d)) {
			return
		}
	}
}
