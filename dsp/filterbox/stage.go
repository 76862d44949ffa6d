package filterbox

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/filterbox/dsp/filter/biquad"
	"github.com/cwbudde/filterbox/dsp/filter/design"
)

// ErrInvalidFrequency reports a cutoff outside (0, sampleRate/2).
var ErrInvalidFrequency = design.ErrInvalidFrequency

// tuning is the immutable unit published to the audio goroutine.
type tuning struct {
	coeffs     biquad.Coefficients
	kind       design.Kind
	cutoff     float64
	sampleRate float64
}

// Stage is a single second-order IIR filter whose coefficients can be
// replaced while another goroutine is processing samples.
//
// Process, ProcessBlock, ProcessBlockTo and Reset must be called from a
// single goroutine (the audio path). Retune and the accessors are safe from
// any goroutine.
type Stage struct {
	current atomic.Pointer[tuning]
	mu      sync.Mutex // serializes writers only

	sec biquad.Section

	recoveries atomic.Uint64
}

// NewStage creates a stage of the given kind. It fails with
// [ErrInvalidFrequency] unless 0 < cutoffHz < sampleRate/2.
func NewStage(kind design.Kind, cutoffHz, sampleRate float64) (*Stage, error) {
	t, err := newTuning(kind, cutoffHz, sampleRate)
	if err != nil {
		return nil, err
	}

	s := &Stage{}
	s.current.Store(t)

	return s, nil
}

func newTuning(kind design.Kind, cutoffHz, sampleRate float64) (*tuning, error) {
	c, err := design.Design(kind, cutoffHz, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("filterbox: %v stage: %w", kind, err)
	}

	if !c.IsStable() {
		return nil, fmt.Errorf("filterbox: %v stage at %v Hz: %w: unstable coefficients", kind, cutoffHz, ErrInvalidFrequency)
	}

	return &tuning{
		coeffs:     c,
		kind:       kind,
		cutoff:     cutoffHz,
		sampleRate: sampleRate,
	}, nil
}

// Retune recomputes the coefficients in place. Validation matches
// [NewStage]; on error the previous coefficients stay active. Delay
// registers are preserved.
func (s *Stage) Retune(kind design.Kind, cutoffHz, sampleRate float64) error {
	_, err := s.update(kind, sampleRate, func(float64) float64 { return cutoffHz })
	return err
}

// update derives the next cutoff from the published one and publishes the
// result, all under the writer lock. It returns the cutoff in effect.
func (s *Stage) update(kind design.Kind, sampleRate float64, next func(cur float64) float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load().cutoff
	hz := next(cur)

	t, err := newTuning(kind, hz, sampleRate)
	if err != nil {
		return cur, err
	}

	s.current.Store(t)

	return hz, nil
}

// Process filters one sample. O(1), no allocation, no locking.
func (s *Stage) Process(x float32) float32 {
	buf := [1]float32{x}
	s.ProcessBlock(buf[:])
	return buf[0]
}

// ProcessBlock filters buf in place. The coefficients are sampled once, so
// a concurrent retune takes effect at the next block boundary.
func (s *Stage) ProcessBlock(buf []float32) {
	s.ProcessBlockTo(buf, buf)
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src
// and may alias it. A non-finite result clears the delay registers and
// yields silence.
func (s *Stage) ProcessBlockTo(dst, src []float32) {
	if n := s.sec.Filter(&s.current.Load().coeffs, dst, src); n > 0 {
		s.recoveries.Add(uint64(n))
	}
}

// Reset clears the delay registers. Audio goroutine only.
func (s *Stage) Reset() {
	s.sec.Reset()
}

// Coefficients returns the currently published coefficient set.
func (s *Stage) Coefficients() biquad.Coefficients {
	return s.current.Load().coeffs
}

// Kind returns the current response shape.
func (s *Stage) Kind() design.Kind {
	return s.current.Load().kind
}

// Cutoff returns the cutoff frequency of the published coefficients.
func (s *Stage) Cutoff() float64 {
	return s.current.Load().cutoff
}

// SampleRate returns the sample rate the coefficients were designed for.
func (s *Stage) SampleRate() float64 {
	return s.current.Load().sampleRate
}

// Recoveries returns how many times a non-finite output forced a register
// reset.
func (s *Stage) Recoveries() uint64 {
	return s.recoveries.Load()
}
