// Package portaudio plays rendered frames on the default output device.
package portaudio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"

	"pipelined.dev/hush/metric"
	"pipelined.dev/hush/signal"
)

// DefaultBufferSize is the number of frames per callback.
const DefaultBufferSize = 512

// meterName is the expvar name of stream counters.
const meterName = "portaudio"

var (
	// ErrNoDevice is returned when there is no output device.
	ErrNoDevice = errors.New("no output device")
	// ErrUnsupportedFormat is returned when the device cannot play the
	// requested sample format or channel count.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Renderer fills interleaved device buffers. It's allocated once the
// sample rate of the device is known.
type Renderer interface {
	Allocate(sampleRate float64, seed int64) error
	Float32(out []float32, channels int) int
	Int16(out []int16, channels int) int
}

type (
	// Config is the negotiated stream format.
	Config struct {
		Device  string
		HostAPI string
		Sample  signal.Format
		audio.Format
		BufferSize int
		Latency    time.Duration
	}

	settings struct {
		sample     signal.Format
		channels   int
		bufferSize int
		seed       int64
	}

	// Option configures the stream.
	Option func(*settings)
)

// WithFormat sets the sample format of the stream. Default is float32.
func WithFormat(f signal.Format) Option {
	return func(s *settings) {
		s.sample = f
	}
}

// WithChannels overrides the number of output channels. By default the
// stream is stereo if the device allows it.
func WithChannels(n int) Option {
	return func(s *settings) {
		s.channels = n
	}
}

// WithBufferSize sets the number of frames per callback.
func WithBufferSize(n int) Option {
	return func(s *settings) {
		s.bufferSize = n
	}
}

// WithSeed sets the seed passed to the renderer.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

func newSettings(options []Option) settings {
	s := settings{
		sample:     signal.Float32,
		bufferSize: DefaultBufferSize,
	}
	for _, option := range options {
		option(&s)
	}
	return s
}

func (c Config) String() string {
	return fmt.Sprintf("%s (%s): %s, %d Hz, %d channels, %d frames per buffer, %v latency",
		c.Device, c.HostAPI, c.Sample, c.SampleRate, c.NumChannels, c.BufferSize, c.Latency)
}

// Negotiate returns the stream format for the output device.
func Negotiate(dev *portaudio.DeviceInfo, options ...Option) (Config, error) {
	s := newSettings(options)
	if dev == nil || dev.MaxOutputChannels < 1 {
		return Config{}, ErrNoDevice
	}
	switch s.sample {
	case signal.Float32, signal.Int16:
	default:
		return Config{}, fmt.Errorf("%w: %v samples", ErrUnsupportedFormat, s.sample)
	}
	channels := s.channels
	if channels == 0 {
		channels = min(dev.MaxOutputChannels, 2)
	}
	if channels < 1 || channels > dev.MaxOutputChannels {
		return Config{}, fmt.Errorf("%w: %d channels, device supports %d", ErrUnsupportedFormat, channels, dev.MaxOutputChannels)
	}
	if s.bufferSize < 1 {
		return Config{}, fmt.Errorf("%w: buffer size %d", ErrUnsupportedFormat, s.bufferSize)
	}
	sampleRate, err := safecast.Round[int](dev.DefaultSampleRate)
	if err != nil || sampleRate <= 0 {
		return Config{}, fmt.Errorf("%w: sample rate %v", ErrUnsupportedFormat, dev.DefaultSampleRate)
	}
	c := Config{
		Device:     dev.Name,
		Sample:     s.sample,
		BufferSize: s.bufferSize,
		Latency:    dev.DefaultLowOutputLatency,
		Format: audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
	}
	if dev.HostApi != nil {
		c.HostAPI = dev.HostApi.Name
	}
	return c, nil
}

// Describe returns the format that Open would negotiate.
func Describe(options ...Option) (Config, error) {
	if err := portaudio.Initialize(); err != nil {
		return Config{}, fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()
	dev, err := defaultOutput()
	if err != nil {
		return Config{}, err
	}
	return Negotiate(dev, options...)
}

func defaultOutput() (*portaudio.DeviceInfo, error) {
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		if errors.Is(err, portaudio.NoDefaultOutputDevice) {
			return nil, ErrNoDevice
		}
		return nil, fmt.Errorf("default output device: %w", err)
	}
	return dev, nil
}

// Stream is a callback stream of the default output device.
type Stream struct {
	Config
	stream *portaudio.Stream

	meter *metric.Meter

	startOnce sync.Once
	startErr  error
	stopOnce  sync.Once
	stopErr   error
}

// Open negotiates the format of the default output device, allocates the
// renderer for its sample rate and opens a stream that is not started yet.
func Open(r Renderer, options ...Option) (*Stream, error) {
	s := newSettings(options)
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	stream, err := open(r, s, options)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return stream, nil
}

func open(r Renderer, s settings, options []Option) (*Stream, error) {
	dev, err := defaultOutput()
	if err != nil {
		return nil, err
	}
	c, err := Negotiate(dev, options...)
	if err != nil {
		return nil, err
	}
	if err := r.Allocate(dev.DefaultSampleRate, s.seed); err != nil {
		return nil, fmt.Errorf("allocate renderer: %w", err)
	}

	st := Stream{Config: c}
	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = c.NumChannels
	params.FramesPerBuffer = c.BufferSize
	st.meter = metric.Register(meterName, c.SampleRate)

	var callback interface{}
	switch c.Sample {
	case signal.Float32:
		callback = func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			st.observe(flags, r.Float32(out, c.NumChannels))
		}
	case signal.Int16:
		callback = func(out []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			st.observe(flags, r.Int16(out, c.NumChannels))
		}
	}
	st.stream, err = portaudio.OpenStream(params, callback)
	if err != nil {
		if errors.Is(err, portaudio.SampleFormatNotSupported) || errors.Is(err, portaudio.InvalidChannelCount) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return &st, nil
}

func (s *Stream) observe(flags portaudio.StreamCallbackFlags, frames int) {
	if flags&portaudio.OutputUnderflow != 0 {
		s.meter.Underflow()
	}
	s.meter.Measure(int64(frames))
}

// Start starts the stream. Only the first call has effect.
func (s *Stream) Start() error {
	s.startOnce.Do(func() {
		if err := s.stream.Start(); err != nil {
			s.startErr = fmt.Errorf("start stream: %w", err)
		}
	})
	return s.startErr
}

// Stop stops and closes the stream and terminates portaudio. Only the
// first call has effect.
func (s *Stream) Stop() error {
	s.stopOnce.Do(func() {
		var errs []error
		if err := s.stream.Stop(); err != nil && !errors.Is(err, portaudio.StreamIsStopped) {
			errs = append(errs, fmt.Errorf("stop stream: %w", err))
		}
		if err := s.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream: %w", err))
		}
		if err := portaudio.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminate portaudio: %w", err))
		}
		s.stopErr = errors.Join(errs...)
	})
	return s.stopErr
}

// Progress returns the callback counters of the stream.
func (s *Stream) Progress() metric.Progress {
	return s.meter.Progress()
}
