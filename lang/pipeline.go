package lang

import (
	"strconv"
	"strings"
)

// SoundKind identifies a source of sound.
type SoundKind uint8

const (
	// Silence is a constant zero signal.
	Silence SoundKind = iota
	// Sine is a sine tone of a given frequency.
	Sine
	// White is white noise.
	White
	// Brown is brown noise.
	Brown
	// Pink is pink noise.
	Pink
)

var soundNames = [...]string{
	Silence: "silence",
	Sine:    "sin",
	White:   "white",
	Brown:   "brown",
	Pink:    "pink",
}

func (k SoundKind) String() string {
	if int(k) < len(soundNames) {
		return soundNames[k]
	}
	return "sound(" + strconv.Itoa(int(k)) + ")"
}

type (
	// Sound describes a single source. Frequency is only set for Sine.
	Sound struct {
		Kind      SoundKind
		Frequency float64
	}

	// Stage is a set of sounds mixed in parallel.
	Stage []Sound

	// Pipeline is a sequence of stages composed in series. A parsed
	// pipeline always has at least one stage and no empty stages.
	Pipeline []Stage
)

func (s Sound) String() string {
	if s.Kind == Sine {
		return "sin " + strconv.FormatFloat(s.Frequency, 'g', -1, 64)
	}
	return s.Kind.String()
}

func (s Stage) String() string {
	parts := make([]string, 0, len(s))
	for _, sound := range s {
		parts = append(parts, sound.String())
	}
	return strings.Join(parts, " ")
}

// String returns the pipeline in its source form. Silent stages are
// rendered empty, so the result parses back to the same pipeline.
func (p Pipeline) String() string {
	parts := make([]string, 0, len(p))
	for _, s := range p {
		if len(s) == 1 && s[0].Kind == Silence {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, s.String())
	}
	return strings.TrimSpace(strings.Join(parts, " | "))
}
