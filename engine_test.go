package hush_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/hush"
	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/lang"
	"pipelined.dev/hush/signal"
	"pipelined.dev/hush/test"
)

const (
	sampleRate = 44100
	seed       = 7
)

func newEngine(t *testing.T, startup *graph.Node, options ...hush.Option) *hush.Engine {
	t.Helper()
	e, err := hush.New(startup, options...)
	require.NoError(t, err)
	require.NoError(t, e.Allocate(sampleRate, seed))
	return e
}

func TestNew(t *testing.T) {
	_, err := hush.New(nil)
	assert.True(t, errors.Is(err, hush.ErrNoGraph))

	_, err = hush.New(graph.Tone(440), hush.WithThreshold(-time.Second))
	assert.True(t, errors.Is(err, hush.ErrThreshold))

	e, err := hush.New(graph.Tone(440))
	require.NoError(t, err)
	assert.Equal(t, hush.DefaultThreshold, e.Threshold())
	assert.Equal(t, 1.0, e.Control().Loudness())
}

func TestAllocate(t *testing.T) {
	e, err := hush.New(graph.Tone(440))
	require.NoError(t, err)

	err = e.Allocate(0, seed)
	assert.True(t, errors.Is(err, hush.ErrSampleRate))

	require.NoError(t, e.Allocate(sampleRate, seed))
	err = e.Allocate(sampleRate, seed)
	assert.True(t, errors.Is(err, hush.ErrAllocated))
}

func TestNotAllocatedIsSilent(t *testing.T) {
	e, err := hush.New(graph.Notch(440, 50))
	require.NoError(t, err)
	out := make([]float32, 64)
	for i := range out {
		out[i] = 1
	}
	e.Float32(out, 2)
	assert.Equal(t, 0.0, signal.Peak(out))
}

func TestFillWritesEverySlot(t *testing.T) {
	tests := []struct {
		channels int
		size     int
		expected int
	}{
		{size: 512 * 2, channels: 2, expected: 512},
		{size: 256, channels: 1, expected: 256},
		{size: 6 * 4, channels: 6, expected: 4},
		{size: 7, channels: 2, expected: 4},
		{size: 0, channels: 2, expected: 0},
		{size: 5, channels: 0, expected: 5},
	}
	for _, c := range tests {
		e := newEngine(t, graph.Tone(440))
		out := make([]float32, c.size)
		for i := range out {
			out[i] = 2
		}
		frames := e.Float32(out, c.channels)
		assert.Equal(t, c.expected, frames)
		for i, v := range out {
			assert.NotEqual(t, float32(2), v, "slot %d of %d is not written", i, c.size)
		}
		assert.Equal(t, int64(1), e.Callbacks())
		assert.Equal(t, int64(c.expected), e.Frames())
	}
}

func TestChannelParity(t *testing.T) {
	e := newEngine(t, graph.Notch(440, 50))
	channels := 6
	out := make([]int16, channels*128)
	e.Int16(out, channels)
	for i := 0; i < len(out); i += channels {
		for c := 2; c < channels; c++ {
			// sources are mono, so left and right are equal as well
			assert.Equal(t, out[i+c%2], out[i+c])
		}
	}
	assert.Greater(t, signal.Peak(out), 0.0)
}

func TestLoudness(t *testing.T) {
	p, err := lang.Parse("white")
	require.NoError(t, err)

	full := newEngine(t, graph.Compile(p))
	control := hush.NewControl(0.25)
	quiet := newEngine(t, graph.Compile(p), hush.WithControl(control))
	assert.Same(t, control, quiet.Control())

	a, b := make([]float32, 1024), make([]float32, 1024)
	full.Float32(a, 2)
	quiet.Float32(b, 2)
	for i := range a {
		assert.InDelta(t, a[i]*0.25, b[i], 1e-6)
	}

	control.SetLoudness(0)
	quiet.Float32(b, 2)
	assert.Equal(t, 0.0, signal.Peak(b))
}

func TestPhaseSelection(t *testing.T) {
	clock := test.NewClock()
	control := hush.NewControl(1)
	e := newEngine(t,
		graph.Tone(440),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithControl(control),
		hush.WithClock(clock.Now),
	)

	out := make([]float32, 64)
	for elapsed := time.Duration(0); elapsed < time.Second; elapsed += 50 * time.Millisecond {
		e.Float32(out, 2)
		if elapsed < hush.DefaultThreshold {
			assert.Equal(t, hush.Startup, control.Phase(), "elapsed %v", elapsed)
		} else {
			assert.Equal(t, hush.Sustained, control.Phase(), "elapsed %v", elapsed)
		}
		clock.Advance(50 * time.Millisecond)
	}
}

func TestPhaseNeverReverts(t *testing.T) {
	now := test.Epoch
	clock := func() time.Time { return now }
	control := hush.NewControl(1)
	e := newEngine(t,
		graph.Tone(440),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithControl(control),
		hush.WithClock(clock),
		hush.WithThreshold(time.Second),
	)

	e.Next()
	now = now.Add(time.Second)
	e.Next()
	assert.Equal(t, hush.Sustained, control.Phase())

	// clock jumps backwards
	now = test.Epoch.Add(-time.Hour)
	e.Next()
	assert.Equal(t, hush.Sustained, control.Phase())
}

func TestWithoutSustained(t *testing.T) {
	clock := test.NewClock()
	control := hush.NewControl(1)
	e := newEngine(t, graph.Tone(440), hush.WithControl(control), hush.WithClock(clock.Now))
	e.Next()
	clock.Advance(time.Hour)
	e.Next()
	assert.Equal(t, hush.Startup, control.Phase())
}

func TestStartTimeIsTheFirstFrame(t *testing.T) {
	clock := test.NewClock()
	control := hush.NewControl(1)
	e := newEngine(t,
		graph.Tone(440),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithControl(control),
		hush.WithClock(clock.Now),
	)
	// time before the first callback is not counted
	clock.Advance(time.Hour)
	e.Next()
	assert.Equal(t, hush.Startup, control.Phase())
	clock.Advance(hush.DefaultThreshold)
	e.Next()
	assert.Equal(t, hush.Sustained, control.Phase())
}

// Tone at 440 Hz, notch of 50 Hz radius: at t=0 output is the startup
// tone, at t=600ms it's sustained noise only.
func TestEndToEnd(t *testing.T) {
	clock := test.NewClock()
	e := newEngine(t,
		graph.Tone(440),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithClock(clock.Now),
	)

	tone := graph.Tone(440)
	tone.Allocate(graph.Params{SampleRate: sampleRate, Seed: seed})

	out := make([]float32, 2*512)
	e.Float32(out, 2)
	left := test.Channel(out, 2, 0)
	for i, v := range left {
		expected, _ := tone.Stereo()
		assert.InDelta(t, expected, v, 1e-6, "frame %d", i)
	}

	clock.Advance(600 * time.Millisecond)
	e.Float32(out, 2)
	notch := graph.Notch(440, 50)
	notch.Allocate(graph.Params{SampleRate: sampleRate, Seed: seed})
	for i, v := range test.Channel(out, 2, 0) {
		expected, _ := notch.Stereo()
		assert.InDelta(t, expected, v, 1e-6, "frame %d", i)
	}
	assert.Greater(t, signal.RMS(out), 0.0)
	assert.LessOrEqual(t, signal.Peak(out), 0.3)
}

func TestRender(t *testing.T) {
	e := newEngine(t, graph.Tone(441))
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   make([]float64, 2*100),
	}
	assert.Equal(t, 100, e.Render(buf))
	// a period of 441 Hz is exactly 100 frames
	assert.InDelta(t, 0, buf.Data[0], 1e-9)
	assert.InDelta(t, 0.1, buf.Data[2*25], 1e-9)
	assert.InDelta(t, -0.1, buf.Data[2*75+1], 1e-9)
}

func TestUint16(t *testing.T) {
	e := newEngine(t, graph.Tone(440), hush.WithControl(hush.NewControl(0)))
	out := make([]uint16, 16)
	e.Uint16(out, 2)
	for _, v := range out {
		assert.Equal(t, uint16(1<<15), v)
	}
}

func TestCounters(t *testing.T) {
	e := newEngine(t, graph.Tone(440))
	e.Float32(make([]float32, 2*64), 2)
	e.Int16(make([]int16, 3*10), 3)
	assert.Equal(t, int64(2), e.Callbacks())
	assert.Equal(t, int64(74), e.Frames())
}

func TestFillDoesNotAllocate(t *testing.T) {
	p, err := lang.Parse("sin 440 white | brown | pink")
	require.NoError(t, err)
	e := newEngine(t,
		graph.Scale(0.1, graph.Compile(p)),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithThreshold(time.Millisecond),
	)
	f32 := make([]float32, 2*512)
	i16 := make([]int16, 2*512)
	allocs := testing.AllocsPerRun(100, func() {
		e.Float32(f32, 2)
		e.Int16(i16, 2)
	})
	assert.Equal(t, 0.0, allocs)
}
