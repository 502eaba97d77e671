// Package signal provides the sample representations of the audio boundary:
//	- negotiated sample formats
//	- conversion of normalized float samples to device samples
package signal

import (
	"fmt"
	"math"
	"time"
)

// Format is a native sample representation of an output device.
type Format uint8

const (
	// Float32 is 32 bit float in [-1, 1].
	Float32 Format = iota + 1
	// Int16 is 16 bit signed integer.
	Int16
	// Uint16 is 16 bit unsigned integer with 0x8000 as zero level.
	Uint16
)

var formatNames = map[Format]string{
	Float32: "f32",
	Int16:   "i16",
	Uint16:  "u16",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat returns the format for names f32, i16 and u16.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown sample format %q", s)
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// AsFloat32 converts a normalized sample to float32.
func AsFloat32(v float64) float32 {
	return float32(v)
}

// AsFloat64 returns v unchanged.
func AsFloat64(v float64) float64 {
	return v
}

// AsInt16 converts a normalized sample to int16, clipping values outside
// [-1, 1].
func AsInt16(v float64) int16 {
	v = math.Round(v * math.MaxInt16)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < -math.MaxInt16:
		return -math.MaxInt16
	case math.IsNaN(v):
		return 0
	}
	return int16(v)
}

// AsUint16 converts a normalized sample to offset binary uint16.
func AsUint16(v float64) uint16 {
	return uint16(int32(AsInt16(v)) + 1<<15)
}

// Sample is a type of a single sample value.
type Sample interface {
	~float32 | ~float64 | ~int16
}

// RMS returns root mean square of samples.
func RMS[S Sample](samples []S) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the maximum absolute sample value.
func Peak[S Sample](samples []S) float64 {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	return peak
}
