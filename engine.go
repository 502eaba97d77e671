package hush

import (
	"fmt"
	"sync/atomic"
	"time"

	"fortio.org/safecast"
	"github.com/go-audio/audio"

	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/signal"
)

// DefaultThreshold is the time after the first rendered frame when the
// engine switches to the sustained graph.
const DefaultThreshold = 500 * time.Millisecond

// Engine renders frames of the selected graph. Fill methods are meant to
// be called from a single realtime goroutine. They don't allocate and
// don't block.
type Engine struct {
	startup   *graph.Node
	sustained *graph.Node
	threshold time.Duration
	control   *Control
	clock     func() time.Time

	// callback-owned state.
	allocated bool
	started   bool
	start     time.Time
	phase     Phase

	callbacks atomic.Int64
	frames    atomic.Int64
}

// Option provides a way to set functional parameters to the engine.
type Option func(*Engine)

// WithSustained sets the graph rendered after the threshold. Without it
// the engine never leaves the startup phase.
func WithSustained(g *graph.Node) Option {
	return func(e *Engine) {
		e.sustained = g
	}
}

// WithThreshold sets the duration of the startup phase.
func WithThreshold(d time.Duration) Option {
	return func(e *Engine) {
		e.threshold = d
	}
}

// WithControl sets the control shared with the input dispatcher.
func WithControl(c *Control) Option {
	return func(e *Engine) {
		e.control = c
	}
}

// WithClock replaces time.Now as the engine time source.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) {
		e.clock = fn
	}
}

// New creates an engine that renders startup graph first.
func New(startup *graph.Node, options ...Option) (*Engine, error) {
	if startup == nil {
		return nil, ErrNoGraph
	}
	e := Engine{
		startup:   startup,
		threshold: DefaultThreshold,
		clock:     time.Now,
	}
	for _, option := range options {
		option(&e)
	}
	if e.threshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrThreshold, e.threshold)
	}
	if e.control == nil {
		e.control = NewControl(1)
	}
	return &e, nil
}

// Allocate prepares both graphs for the sample rate. It must be called
// exactly once before rendering.
func (e *Engine) Allocate(sampleRate float64, seed int64) error {
	if e.allocated {
		return ErrAllocated
	}
	if sr, err := safecast.Round[int](sampleRate); err != nil || sr <= 0 {
		return fmt.Errorf("%w: %v", ErrSampleRate, sampleRate)
	}
	p := graph.Params{SampleRate: sampleRate, Seed: seed}
	e.startup.Allocate(p)
	if e.sustained != nil {
		e.sustained.Allocate(p)
	}
	e.allocated = true
	return nil
}

// Control returns the control shared with the engine.
func (e *Engine) Control() *Control {
	return e.control
}

// Threshold returns the duration of the startup phase.
func (e *Engine) Threshold() time.Duration {
	return e.threshold
}

// Callbacks returns the number of rendered buffers.
func (e *Engine) Callbacks() int64 {
	return e.callbacks.Load()
}

// Frames returns the number of rendered frames.
func (e *Engine) Frames() int64 {
	return e.frames.Load()
}

// Next renders a single stereo frame scaled by the current loudness. It
// yields silence until the engine is allocated.
func (e *Engine) Next() (float64, float64) {
	if !e.allocated {
		return 0, 0
	}
	now := e.clock()
	if !e.started {
		e.start = now
		e.started = true
	}
	g := e.startup
	if e.sustained != nil {
		if e.phase == Startup && now.Sub(e.start) >= e.threshold {
			e.phase = Sustained
			e.control.setPhase(Sustained)
		}
		if e.phase == Sustained {
			g = e.sustained
		}
	}
	l, r := g.Stereo()
	k := e.control.Loudness()
	return l * k, r * k
}

// Float32 fills interleaved float32 samples and returns the number of
// frames rendered.
func (e *Engine) Float32(out []float32, channels int) int {
	return fill(e, out, channels, signal.AsFloat32)
}

// Int16 fills interleaved int16 samples and returns the number of frames
// rendered.
func (e *Engine) Int16(out []int16, channels int) int {
	return fill(e, out, channels, signal.AsInt16)
}

// Uint16 fills interleaved offset binary uint16 samples and returns the
// number of frames rendered.
func (e *Engine) Uint16(out []uint16, channels int) int {
	return fill(e, out, channels, signal.AsUint16)
}

// Render fills the buffer with float64 samples using its channel count.
func (e *Engine) Render(buf *audio.FloatBuffer) int {
	channels := 1
	if buf.Format != nil {
		channels = buf.Format.NumChannels
	}
	return fill(e, buf.Data, channels, signal.AsFloat64)
}

// fill writes every slot of out. Even channels get the left sample and odd
// channels get the right one. A trailing partial frame is filled too.
func fill[S any](e *Engine, out []S, channels int, conv func(float64) S) int {
	if channels < 1 {
		channels = 1
	}
	var frames int
	for i := 0; i < len(out); i += channels {
		l, r := e.Next()
		sl, sr := conv(l), conv(r)
		end := min(i+channels, len(out))
		for j := i; j < end; j++ {
			if (j-i)&1 == 0 {
				out[j] = sl
			} else {
				out[j] = sr
			}
		}
		frames++
	}
	e.callbacks.Add(1)
	e.frames.Add(int64(frames))
	return frames
}
