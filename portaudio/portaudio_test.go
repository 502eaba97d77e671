//go:build portaudio

package portaudio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/hush"
	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/metric"
	hushpa "pipelined.dev/hush/portaudio"
)

func TestStream(t *testing.T) {
	e, err := hush.New(
		graph.Tone(440),
		hush.WithSustained(graph.Notch(440, 50)),
		hush.WithThreshold(100*time.Millisecond),
		hush.WithControl(hush.NewControl(0.1)),
	)
	require.NoError(t, err)

	s, err := hushpa.Open(e, hushpa.WithSeed(1))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	// second start has no effect
	require.NoError(t, s.Start())

	time.Sleep(300 * time.Millisecond)
	assert.Greater(t, s.Progress().Callbacks, int64(0))
	assert.Contains(t, metric.GetAll(), "portaudio")
	assert.Equal(t, hush.Sustained, e.Control().Phase())
	assert.Greater(t, e.Frames(), int64(0))

	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

func TestDescribe(t *testing.T) {
	c, err := hushpa.Describe()
	require.NoError(t, err)
	assert.Greater(t, c.NumChannels, 0)
	assert.Greater(t, c.SampleRate, 0)
}
