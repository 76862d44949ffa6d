// Package portaudio drives a session from the default PortAudio devices.
//
// [Backend] opens a full-duplex stream whose callback hands every capture
// buffer to a [stream.Processor]. [Sink] opens an output-only blocking
// stream for pipelines pumped by [stream.Session.Run].
package portaudio

import (
	"errors"
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/stream"
)

// ErrInvalidConfig reports stream parameters PortAudio cannot open.
var ErrInvalidConfig = errors.New("portaudio: invalid stream configuration")

// Config describes the stream to open.
type Config struct {
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	Logger          *zap.Logger
}

// DefaultConfig returns CD-rate stereo with 1024-frame buffers.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		Channels:        2,
		FramesPerBuffer: 1024,
	}
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channels must be > 0: %d", ErrInvalidConfig, c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames per buffer must be > 0: %d", ErrInvalidConfig, c.FramesPerBuffer)
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Backend is a full-duplex callback stream on the default devices.
type Backend struct {
	cfg    Config
	logger *zap.Logger

	mu         sync.Mutex
	stream     *pa.Stream
	running    bool
	terminated bool

	inName, outName string
}

var _ stream.Backend = (*Backend)(nil)

// Open initializes PortAudio and resolves the default devices. The stream
// itself is opened by Start.
func Open(cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	b := &Backend{cfg: cfg, logger: cfg.logger()}

	in, err := pa.DefaultInputDevice()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("portaudio: default input device: %w", err)
	}
	out, err := pa.DefaultOutputDevice()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("portaudio: default output device: %w", err)
	}
	b.inName, b.outName = in.Name, out.Name

	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "portaudio" }

// DeviceName returns the capture and render device names.
func (b *Backend) DeviceName() string {
	if b.inName == b.outName {
		return b.inName
	}
	return b.inName + " -> " + b.outName
}

// Start opens the duplex stream and begins calling proc.ProcessInto from
// the PortAudio callback goroutine.
func (b *Backend) Start(proc stream.Processor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminated {
		return fmt.Errorf("portaudio: start: backend closed")
	}
	if b.running {
		return nil
	}

	s, err := pa.OpenDefaultStream(
		b.cfg.Channels,
		b.cfg.Channels,
		b.cfg.SampleRate,
		b.cfg.FramesPerBuffer,
		func(in, out []float32) {
			proc.ProcessInto(out, in)
		},
	)
	if err != nil {
		return fmt.Errorf("portaudio: open duplex stream: %w", err)
	}

	if err := s.Start(); err != nil {
		_ = s.Close()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}

	b.stream = s
	b.running = true
	b.logger.Info("portaudio stream started",
		zap.String("device", b.DeviceName()),
		zap.Float64("sample_rate", b.cfg.SampleRate),
		zap.Int("channels", b.cfg.Channels),
		zap.Int("frames_per_buffer", b.cfg.FramesPerBuffer))

	return nil
}

// Close stops and closes the stream and terminates PortAudio. It is safe
// to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminated {
		return nil
	}
	b.terminated = true

	var errs []error
	if b.stream != nil {
		if b.running {
			if err := b.stream.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("portaudio: stop stream: %w", err))
			}
		}
		if err := b.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("portaudio: close stream: %w", err))
		}
		b.stream = nil
		b.running = false
	}
	if err := pa.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("portaudio: terminate: %w", err))
	}

	return errors.Join(errs...)
}
