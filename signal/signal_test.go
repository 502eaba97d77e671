package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/hush/signal"
)

func TestAsInt16(t *testing.T) {
	tests := []struct {
		value    float64
		expected int16
	}{
		{value: 0, expected: 0},
		{value: 1, expected: math.MaxInt16},
		{value: -1, expected: -math.MaxInt16},
		{value: 0.5, expected: 16384},
		{value: 3, expected: math.MaxInt16},
		{value: -3, expected: -math.MaxInt16},
		{value: math.NaN(), expected: 0},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, signal.AsInt16(test.value), "value %v", test.value)
	}
}

func TestAsUint16(t *testing.T) {
	tests := []struct {
		value    float64
		expected uint16
	}{
		{value: 0, expected: 32768},
		{value: 1, expected: 32768 + math.MaxInt16},
		{value: -1, expected: 1},
		{value: 2, expected: math.MaxUint16},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, signal.AsUint16(test.value), "value %v", test.value)
	}
}

func TestAsFloat32(t *testing.T) {
	assert.Equal(t, float32(0.25), signal.AsFloat32(0.25))
	assert.Equal(t, 0.25, signal.AsFloat64(0.25))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		expected signal.Format
	}{
		{name: "f32", expected: signal.Float32},
		{name: "i16", expected: signal.Int16},
		{name: "u16", expected: signal.Uint16},
	}
	for _, test := range tests {
		f, err := signal.ParseFormat(test.name)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, f)
		assert.Equal(t, test.name, f.String())
	}

	_, err := signal.ParseFormat("s24")
	assert.Error(t, err)
	assert.Equal(t, "format(9)", signal.Format(9).String())
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, time.Second, signal.DurationOf(44100, 44100))
	assert.Equal(t, 500*time.Millisecond, signal.DurationOf(48000, 24000))
}

func TestLevels(t *testing.T) {
	assert.Equal(t, 0.0, signal.RMS([]float64{}))
	assert.Equal(t, 1.0, signal.RMS([]float64{1, -1, 1, -1}))
	assert.InDelta(t, 0.5, signal.RMS([]float32{0.5, -0.5}), 1e-9)
	assert.Equal(t, 0.75, signal.Peak([]float64{0.1, -0.75, 0.5}))
	assert.Equal(t, float64(math.MaxInt16), signal.Peak([]int16{-math.MaxInt16, 3}))
}
