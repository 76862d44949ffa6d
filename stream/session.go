package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/dsp/buffer"
	"github.com/cwbudde/filterbox/dsp/core"
	"github.com/cwbudde/filterbox/dsp/filterbox"
	"github.com/cwbudde/filterbox/dsp/spectrum"
)

var (
	// ErrInvalidSession reports a session built without its filter chain or
	// analyzer.
	ErrInvalidSession = errors.New("stream: session requires a filter chain and an analyzer")

	// ErrFinished is returned when starting a session that already ended.
	ErrFinished = errors.New("stream: session finished")
)

// State is the session lifecycle position.
type State int32

const (
	StateCreated State = iota
	StatePlaying
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAnalyzePreFilter feeds the analyzer with the sanitized capture
// instead of the filtered output.
func WithAnalyzePreFilter() SessionOption {
	return func(s *Session) { s.preFilter = true }
}

// WithLogger sets the lifecycle logger. The audio path never logs.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is one capture→filter→sink run sharing a termination flag with
// every goroutine that serves it.
type Session struct {
	chain     *filterbox.Chain
	analyzer  *spectrum.Analyzer
	preFilter bool
	logger    *zap.Logger

	state    atomic.Int32
	finished atomic.Bool
	done     chan struct{}
	once     sync.Once

	blocks    atomic.Uint64
	sanitized atomic.Uint64

	out *buffer.Buffer // Process scratch, audio goroutine only
}

// NewSession creates a session in StateCreated.
func NewSession(chain *filterbox.Chain, analyzer *spectrum.Analyzer, opts ...SessionOption) (*Session, error) {
	if chain == nil || analyzer == nil {
		return nil, ErrInvalidSession
	}

	s := &Session{
		chain:    chain,
		analyzer: analyzer,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
		out:      buffer.New(0),
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}

	return s, nil
}

// Start moves a created session to StatePlaying. Starting a playing session
// is a no-op; starting a finished one returns ErrFinished.
func (s *Session) Start() error {
	if s.state.CompareAndSwap(int32(StateCreated), int32(StatePlaying)) {
		s.logger.Info("session playing",
			zap.Float64("sample_rate", s.chain.SampleRate()),
			zap.Int("bins", s.analyzer.BinCount()),
			zap.Int("buffer_size", s.analyzer.BufferSize()))
		return nil
	}

	if s.IsFinished() {
		return ErrFinished
	}
	return nil
}

// Finish sets the finished flag. Safe from any goroutine; only the first
// call has an effect.
func (s *Session) Finish() {
	s.once.Do(func() {
		s.finished.Store(true)
		s.state.Store(int32(StateFinished))
		close(s.done)

		s.logger.Info("session finished",
			zap.Uint64("blocks", s.blocks.Load()),
			zap.Uint64("windows", s.analyzer.Windows()),
			zap.Uint64("sanitized_samples", s.sanitized.Load()))
	})
}

// IsFinished reports whether Finish has been called.
func (s *Session) IsFinished() bool {
	return s.finished.Load()
}

// Done is closed when the session finishes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	if s.finished.Load() {
		return StateFinished
	}
	return State(s.state.Load())
}

// Blocks returns the number of blocks processed while playing.
func (s *Session) Blocks() uint64 {
	return s.blocks.Load()
}

// Sanitized returns the number of non-finite input samples replaced by zero.
func (s *Session) Sanitized() uint64 {
	return s.sanitized.Load()
}

// Chain returns the session's filter chain.
func (s *Session) Chain() *filterbox.Chain { return s.chain }

// Analyzer returns the session's spectrum analyzer.
func (s *Session) Analyzer() *spectrum.Analyzer { return s.analyzer }

// ProcessInto filters in into out and feeds the analyzer. Samples of out
// beyond len(in) are zeroed. Outside StatePlaying out is silenced and
// nothing else happens. Audio goroutine only.
func (s *Session) ProcessInto(out, in []float32) {
	s.processInto(out, in)
}

func (s *Session) processInto(out, in []float32) bool {
	if s.State() != StatePlaying {
		clear(out)
		return false
	}

	n := copy(out, in)
	buf := out[:n]
	clear(out[n:])

	if k := core.SanitizeBlock(buf); k > 0 {
		s.sanitized.Add(uint64(k))
	}

	if s.preFilter {
		s.analyzer.Ingest(buf)
	}
	s.chain.ProcessBlock(buf)
	if !s.preFilter {
		s.analyzer.Ingest(buf)
	}

	s.blocks.Add(1)
	return true
}

// Process filters b into a session-owned buffer and returns it. The result
// is valid until the next call. It returns false, and does nothing, unless
// the session is playing. Audio goroutine only.
func (s *Session) Process(b Block) (Block, bool) {
	out := s.out.Resize(len(b.Samples))

	if !s.processInto(out, b.Samples) {
		return Block{}, false
	}

	return Block{Samples: out, Channels: b.Channels, SampleRate: b.SampleRate}, true
}

// Run pumps src through the session into sink until the input ends, the
// session finishes, ctx is done or a collaborator fails. The session is
// finished on return and src and sink are closed if they implement
// io.Closer. End of input and Finish return nil.
func (s *Session) Run(ctx context.Context, src Source, sink Sink) (err error) {
	defer func() {
		s.Finish()
		err = errors.Join(err, closeAll(src, sink))
	}()

	if err := s.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for !s.IsFinished() {
		if err := ctx.Err(); err != nil {
			if s.IsFinished() {
				return nil
			}
			s.logger.Info("session cancelled", zap.Error(err))
			return err
		}

		b, err := src.ReadBlock(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.logger.Info("capture source exhausted")
				return nil
			case s.IsFinished():
				return nil
			case ctx.Err() != nil:
				continue
			}
			s.logger.Error("capture source failed", zap.Error(err))
			return fmt.Errorf("stream: read block: %w", err)
		}

		out, ok := s.Process(b)
		if !ok {
			return nil
		}

		if err := sink.WriteBlock(out); err != nil {
			if s.IsFinished() {
				return nil
			}
			s.logger.Error("output sink failed", zap.Error(err))
			return fmt.Errorf("stream: write block: %w", err)
		}
	}

	return nil
}

func closeAll(src Source, sink Sink) error {
	var errs []error

	srcCloser, srcOK := src.(io.Closer)
	if srcOK {
		if err := srcCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stream: close source: %w", err))
		}
	}

	if c, ok := sink.(io.Closer); ok && (!srcOK || !sameCloser(c, srcCloser)) {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stream: close sink: %w", err))
		}
	}

	return errors.Join(errs...)
}

// sameCloser reports whether a and b are the same collaborator. Values of
// uncomparable dynamic types are never treated as the same.
func sameCloser(a, b io.Closer) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
