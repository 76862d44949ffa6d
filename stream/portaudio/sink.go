package portaudio

import (
	"errors"
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/stream"
)

// Sink renders blocks through a blocking output stream on the default
// device. Blocks of any size are re-chunked to the stream buffer.
type Sink struct {
	mu     sync.Mutex
	stream *pa.Stream
	buf    []float32
	fill   int
	closed bool
}

var _ stream.Sink = (*Sink)(nil)

// OpenSink initializes PortAudio and starts an output-only stream.
func OpenSink(cfg Config) (*Sink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	buf := make([]float32, cfg.FramesPerBuffer*cfg.Channels)
	s, err := pa.OpenDefaultStream(0, cfg.Channels, cfg.SampleRate, cfg.FramesPerBuffer, buf)
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: open output stream: %w", err)
	}
	if err := s.Start(); err != nil {
		_ = s.Close()
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: start output stream: %w", err)
	}

	cfg.logger().Info("portaudio output started",
		zap.Float64("sample_rate", cfg.SampleRate),
		zap.Int("channels", cfg.Channels))

	return &Sink{stream: s, buf: buf}, nil
}

// WriteBlock queues b and writes every full stream buffer. It blocks while
// the device drains.
func (s *Sink) WriteBlock(b stream.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("portaudio: write: sink closed")
	}

	src := b.Samples
	for len(src) > 0 {
		n := copy(s.buf[s.fill:], src)
		s.fill += n
		src = src[n:]

		if s.fill == len(s.buf) {
			if err := s.stream.Write(); err != nil && !errors.Is(err, pa.OutputUnderflowed) {
				return fmt.Errorf("portaudio: write: %w", err)
			}
			s.fill = 0
		}
	}

	return nil
}

// Close flushes a partial buffer padded with silence, then stops the stream
// and terminates PortAudio.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.fill > 0 {
		clear(s.buf[s.fill:])
		if err := s.stream.Write(); err != nil && !errors.Is(err, pa.OutputUnderflowed) {
			errs = append(errs, fmt.Errorf("portaudio: flush: %w", err))
		}
		s.fill = 0
	}
	if err := s.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("portaudio: stop stream: %w", err))
	}
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("portaudio: close stream: %w", err))
	}
	if err := pa.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("portaudio: terminate: %w", err))
	}

	return errors.Join(errs...)
}
