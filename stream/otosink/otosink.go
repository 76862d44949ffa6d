// Package otosink renders filtered audio through an oto v3 player.
//
// oto pulls samples from its own goroutine. The sink hands blocks over
// through a lock-free ring: the player side never waits, and WriteBlock
// applies backpressure by waiting for the player to drain space.
package otosink

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/dsp/buffer"
	"github.com/cwbudde/filterbox/stream"
	"github.com/cwbudde/filterbox/stream/pcm"
)

// ErrClosed is returned by WriteBlock after Close.
var ErrClosed = errors.New("otosink: closed")

const defaultLatency = 100 * time.Millisecond

// Option configures a Sink.
type Option func(*options)

type options struct {
	latency time.Duration
	logger  *zap.Logger
}

// WithLatency sets how much audio the ring holds ahead of the player.
func WithLatency(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.latency = d
		}
	}
}

// WithLogger sets the sink logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Sink is a [stream.Sink] backed by an oto player. WriteBlock must be
// called from a single goroutine.
type Sink struct {
	ctx    *oto.Context
	player *oto.Player
	pull   *puller
	logger *zap.Logger

	closed    chan struct{}
	closeOnce sync.Once
}

var _ stream.Sink = (*Sink)(nil)

// New creates the oto context and starts a float32 player at sampleRate.
// oto allows one context per process.
func New(sampleRate, channels int, opts ...Option) (*Sink, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("otosink: invalid format: %d Hz, %d channels", sampleRate, channels)
	}

	o := options{latency: defaultLatency, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	capacity := int(o.latency.Seconds()*float64(sampleRate)) * channels
	p, err := newPuller(max(capacity, channels))
	if err != nil {
		return nil, fmt.Errorf("otosink: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("otosink: new context: %w", err)
	}
	<-ready

	s := &Sink{
		ctx:    ctx,
		pull:   p,
		logger: o.logger,
		closed: make(chan struct{}),
	}
	s.player = ctx.NewPlayer(p)
	s.player.Play()

	s.logger.Info("oto player started",
		zap.Int("sample_rate", sampleRate),
		zap.Int("channels", channels),
		zap.Duration("latency", o.latency))

	return s, nil
}

// WriteBlock copies b into the ring, waiting for the player whenever the
// ring is full. It returns ErrClosed if the sink closes while waiting.
func (s *Sink) WriteBlock(b stream.Block) error {
	src := b.Samples
	for {
		select {
		case <-s.closed:
			return ErrClosed
		default:
		}

		n := s.pull.ring.Write(src)
		src = src[n:]
		if len(src) == 0 {
			return nil
		}

		select {
		case <-s.pull.space:
		case <-s.closed:
			return ErrClosed
		}
	}
}

// Underruns returns how many player reads found the ring short.
func (s *Sink) Underruns() uint64 {
	return s.pull.underruns.Load()
}

// Close stops the player. Pending samples are discarded.
func (s *Sink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.player != nil {
			if cerr := s.player.Close(); cerr != nil {
				err = fmt.Errorf("otosink: close player: %w", cerr)
			}
		}
		s.logger.Debug("oto player closed", zap.Uint64("underruns", s.Underruns()))
	})
	return err
}

// puller is the io.Reader handed to oto.
type puller struct {
	ring    *buffer.Ring
	scratch []float32
	space   chan struct{}

	underruns atomic.Uint64
}

func newPuller(capacity int) (*puller, error) {
	ring, err := buffer.NewRing(capacity)
	if err != nil {
		return nil, err
	}
	return &puller{
		ring:    ring,
		scratch: make([]float32, capacity),
		space:   make(chan struct{}, 1),
	}, nil
}

// Read fills b with float32 little-endian samples, padding with silence
// when the ring runs dry. It never blocks and never fails.
func (p *puller) Read(b []byte) (int, error) {
	n := len(b) / 4
	if n == 0 {
		return 0, nil
	}
	if len(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	samples := p.scratch[:n]

	got := p.ring.Read(samples)
	if got < n {
		clear(samples[got:])
		p.underruns.Add(1)
	}
	pcm.EncodeFloat32LE(b, samples)

	select {
	case p.space <- struct{}{}:
	default:
	}

	return n * 4, nil
}
