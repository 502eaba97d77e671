package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/lang"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		src      string
		expected graph.Node
		text     string
	}{
		{
			src: "sin 440 | white",
			expected: graph.NewSeries(
				graph.NewSum(graph.NewSine(440)),
				graph.NewSum(graph.NewWhite()),
			),
			text: "series(sum(sine(440)), sum(white))",
		},
		{
			src: "brown pink sin 100.5",
			expected: graph.NewSeries(
				graph.NewSum(graph.NewBrown(), graph.NewPink(), graph.NewSine(100.5)),
			),
			text: "series(sum(brown, pink, sine(100.5)))",
		},
		{
			src: "white |",
			expected: graph.NewSeries(
				graph.NewSum(graph.NewWhite()),
				graph.NewSum(graph.NewSilence()),
			),
			text: "series(sum(white), sum(silence))",
		},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			p, err := lang.Parse(test.src)
			require.NoError(t, err)
			g := graph.Compile(p)
			assert.True(t, g.Equal(&test.expected), "got %v", g)
			assert.Equal(t, test.text, g.String())
		})
	}
}

func TestCompileTopologyIsFixed(t *testing.T) {
	p, err := lang.Parse("sin 440 white | brown | pink sin 880")
	require.NoError(t, err)
	g := graph.Compile(p)
	count := g.Count()
	assert.Equal(t, 9, count)

	g.Allocate(params)
	for i := 0; i < 1000; i++ {
		g.Stereo()
	}
	assert.Equal(t, count, g.Count())
	assert.Equal(t, "series(sum(sine(440), white), sum(brown), sum(pink, sine(880)))", g.String())
}

func TestCompileIndependentState(t *testing.T) {
	p, err := lang.Parse("sin 441")
	require.NoError(t, err)
	a, b := graph.Compile(p), graph.Compile(p)
	a.Allocate(params)
	b.Allocate(params)
	for i := 0; i < 10; i++ {
		a.Stereo()
	}
	// b has not advanced with a
	v, _ := b.Stereo()
	assert.Equal(t, 0.0, v)
}

func TestSilentStage(t *testing.T) {
	p, err := lang.Parse("|")
	require.NoError(t, err)
	g := graph.Compile(p)
	g.Allocate(params)
	for i := 0; i < 100; i++ {
		l, r := g.Stereo()
		assert.Equal(t, 0.0, l)
		assert.Equal(t, 0.0, r)
	}
}

func TestChains(t *testing.T) {
	tone := graph.Tone(440)
	assert.Equal(t, "gain(0.1, sine(440))", tone.String())

	notch := graph.Notch(440, 50)
	assert.Equal(t, "gain(0.1, sum(lowpass(390, white), highpass(490, white)))", notch.String())

	notch.Allocate(params)
	var peak float64
	for i := 0; i < sampleRate; i++ {
		l, _ := notch.Stereo()
		if l > peak {
			peak = l
		} else if -l > peak {
			peak = -l
		}
	}
	assert.Greater(t, peak, 0.0)
	assert.LessOrEqual(t, peak, 0.3)

	scaled := graph.Scale(0.5, graph.Compile(lang.Pipeline{{{Kind: lang.White}}}))
	assert.Equal(t, "gain(0.5, series(sum(white)))", scaled.String())
}
