package hush

import (
	"math"
	"sync"
	"sync/atomic"
)

// Phase is the part of the session the engine renders.
type Phase int32

const (
	// Startup is rendered until the threshold elapses.
	Startup Phase = iota
	// Sustained is rendered after the threshold. It is never left.
	Sustained
)

func (p Phase) String() string {
	if p == Sustained {
		return "sustained"
	}
	return "startup"
}

// Control is the state shared between the realtime engine and the input
// dispatcher. All reads are lock-free and safe to call from the audio
// callback.
type Control struct {
	loudness atomic.Uint64 // math.Float64bits
	phase    atomic.Int32

	once sync.Once
	done chan struct{}
}

// NewControl returns a control with initial loudness clamped to [0, 1].
func NewControl(loudness float64) *Control {
	c := Control{
		done: make(chan struct{}),
	}
	c.SetLoudness(loudness)
	return &c
}

// Loudness returns the current output multiplier.
func (c *Control) Loudness() float64 {
	return math.Float64frombits(c.loudness.Load())
}

// SetLoudness stores l clamped to [0, 1].
func (c *Control) SetLoudness(l float64) {
	if math.IsNaN(l) {
		l = 0
	}
	l = math.Max(0, math.Min(1, l))
	c.loudness.Store(math.Float64bits(l))
}

// VolumeUp doubles the loudness up to 1 and returns the new value.
func (c *Control) VolumeUp() float64 {
	return c.update(func(l float64) float64 {
		return math.Min(l*2, 1)
	})
}

// VolumeDown halves the loudness and returns the new value. Positive
// loudness never reaches zero: once halving underflows the value is kept.
func (c *Control) VolumeDown() float64 {
	return c.update(func(l float64) float64 {
		if h := l * 0.5; h > 0 || l == 0 {
			return h
		}
		return l
	})
}

func (c *Control) update(fn func(float64) float64) float64 {
	for {
		old := c.loudness.Load()
		l := fn(math.Float64frombits(old))
		if c.loudness.CompareAndSwap(old, math.Float64bits(l)) {
			return l
		}
	}
}

// Phase returns the last phase published by the engine.
func (c *Control) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Control) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

// RequestShutdown asks the session to stop. It's safe to call multiple
// times from any goroutine.
func (c *Control) RequestShutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Done is closed after the first RequestShutdown call.
func (c *Control) Done() <-chan struct{} {
	return c.done
}

// ShuttingDown reports whether shutdown was requested.
func (c *Control) ShuttingDown() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
