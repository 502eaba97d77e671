package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pipelined.dev/hush"
	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/lang"
	"pipelined.dev/hush/portaudio"
	"pipelined.dev/hush/signal"
)

const (
	envPrefix     = "HUSH"
	defaultRadius = 50
	defaultGain   = 0.1
)

var errNoFrequency = errors.New("frequency is required for built-in chains")

// newConfig binds flags to a config that is also read from HUSH_*
// environment variables. Flags set on the command line take precedence.
func newConfig(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func addPlayFlags(cmd interface{ Flags() *pflag.FlagSet }) {
	fs := cmd.Flags()
	fs.String("startup", "", "startup graph expression, e.g. \"sin 440\"")
	fs.String("sustained", "", "sustained graph expression, e.g. \"white | brown\"")
	fs.Bool("no-sustained", false, "never leave the startup phase")
	fs.Float64("gain", defaultGain, "gain applied to expression graphs")
	fs.Duration("threshold", hush.DefaultThreshold, "duration of the startup phase")
	fs.String("format", signal.Float32.String(), "sample format (f32|i16|u16)")
	fs.Int("buffer", portaudio.DefaultBufferSize, "frames per buffer")
	fs.Int("channels", 0, "output channels, 0 for stereo if available")
	fs.Float64("loudness", 1, "initial loudness in (0, 1]")
	fs.Int64("seed", 0, "noise seed, 0 for time based")
}

type playConfig struct {
	frequency   float64
	radius      float64
	startup     string
	sustained   string
	noSustained bool
	gain        float64
	threshold   time.Duration
	format      signal.Format
	buffer      int
	channels    int
	loudness    float64
	seed        int64
}

func loadPlayConfig(v *viper.Viper, args []string) (playConfig, error) {
	c := playConfig{
		radius:      defaultRadius,
		startup:     v.GetString("startup"),
		sustained:   v.GetString("sustained"),
		noSustained: v.GetBool("no-sustained"),
		gain:        v.GetFloat64("gain"),
		threshold:   v.GetDuration("threshold"),
		buffer:      v.GetInt("buffer"),
		channels:    v.GetInt("channels"),
		loudness:    v.GetFloat64("loudness"),
		seed:        v.GetInt64("seed"),
	}
	var err error
	if len(args) > 0 {
		if c.frequency, err = parsePositive("frequency", args[0]); err != nil {
			return playConfig{}, err
		}
	}
	if len(args) > 1 {
		if c.radius, err = parsePositive("radius", args[1]); err != nil {
			return playConfig{}, err
		}
	}
	if c.frequency == 0 && (c.startup == "" || (c.sustained == "" && !c.noSustained)) {
		return playConfig{}, errNoFrequency
	}
	if c.format, err = signal.ParseFormat(v.GetString("format")); err != nil {
		return playConfig{}, err
	}
	// zero loudness can't be raised by volume keys
	if c.loudness <= 0 || c.loudness > 1 {
		return playConfig{}, fmt.Errorf("loudness must be in (0, 1]: %v", c.loudness)
	}
	if c.threshold < 0 {
		return playConfig{}, fmt.Errorf("threshold must not be negative: %v", c.threshold)
	}
	if c.seed == 0 {
		c.seed = time.Now().UnixNano()
	}
	return c, nil
}

func parsePositive(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, s)
	}
	return v, nil
}

// graphs returns the startup graph and the sustained graph. Sustained is
// nil when the session never leaves startup.
func (c playConfig) graphs() (*graph.Node, *graph.Node, error) {
	startup, err := c.graph(c.startup, func() *graph.Node {
		return graph.Tone(c.frequency)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("startup: %w", err)
	}
	if c.noSustained {
		return startup, nil, nil
	}
	sustained, err := c.graph(c.sustained, func() *graph.Node {
		return graph.Notch(c.frequency, c.radius)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sustained: %w", err)
	}
	return startup, sustained, nil
}

func (c playConfig) graph(expr string, builtin func() *graph.Node) (*graph.Node, error) {
	if expr == "" {
		return builtin(), nil
	}
	p, err := lang.Parse(expr)
	if err != nil {
		return nil, err
	}
	return graph.Scale(c.gain, graph.Compile(p)), nil
}
