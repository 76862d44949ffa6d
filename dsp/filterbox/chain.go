package filterbox

import (
	"fmt"
	"math"

	"github.com/cwbudde/filterbox/dsp/core"
	"github.com/cwbudde/filterbox/dsp/filter/design"
)

// DefaultMinCutoff is the lowest cutoff a chain will accept before
// clamping. Near-zero cutoffs push the poles onto the unit circle.
const DefaultMinCutoff = 10.0

// nyquistMargin keeps the low-pass cutoff away from Nyquist.
const nyquistMargin = 1000.0

// StageID names one stage of a [Chain].
type StageID int

const (
	// LowPassStage is the first stage of the chain.
	LowPassStage StageID = iota
	// HighPassStage processes the low-pass output.
	HighPassStage
)

// String returns the stage name.
func (id StageID) String() string {
	switch id {
	case LowPassStage:
		return "lowpass"
	case HighPassStage:
		return "highpass"
	default:
		return fmt.Sprintf("StageID(%d)", int(id))
	}
}

func (id StageID) kind() design.Kind {
	if id == HighPassStage {
		return design.HighPass
	}
	return design.LowPass
}

// MaxCutoff returns the highest cutoff a chain accepts at sampleRate:
// Nyquist minus 1 kHz, or 45% of the sample rate when the margin would
// leave nothing above [DefaultMinCutoff].
func MaxCutoff(sampleRate float64) float64 {
	maxHz := sampleRate/2 - nyquistMargin
	if maxHz <= DefaultMinCutoff {
		maxHz = 0.45 * sampleRate
	}
	return maxHz
}

type chainConfig struct {
	minCutoff float64
	lowPass   float64
	highPass  float64
}

// ChainOption configures a Chain.
type ChainOption func(*chainConfig)

// WithMinCutoff sets the clamping floor. Non-positive values are ignored.
func WithMinCutoff(hz float64) ChainOption {
	return func(cfg *chainConfig) {
		if hz > 0 {
			cfg.minCutoff = hz
		}
	}
}

// WithLowPassCutoff sets the initial low-pass cutoff (clamped).
func WithLowPassCutoff(hz float64) ChainOption {
	return func(cfg *chainConfig) { cfg.lowPass = hz }
}

// WithHighPassCutoff sets the initial high-pass cutoff (clamped).
func WithHighPassCutoff(hz float64) ChainOption {
	return func(cfg *chainConfig) { cfg.highPass = hz }
}

// Chain is the fixed low-pass → high-pass pair. Each stage has its own
// writer lock, so retunes of different stages never contend.
type Chain struct {
	stages     [2]*Stage
	sampleRate float64
	minCutoff  float64
	maxCutoff  float64
}

// NewChain builds a chain at sampleRate. Without options the band is fully
// open: low-pass at [MaxCutoff], high-pass at the floor.
func NewChain(sampleRate float64, opts ...ChainOption) (*Chain, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("filterbox: %w: sample rate must be > 0: %v", ErrInvalidFrequency, sampleRate)
	}

	cfg := chainConfig{minCutoff: DefaultMinCutoff}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	c := &Chain{
		sampleRate: sampleRate,
		minCutoff:  cfg.minCutoff,
		maxCutoff:  MaxCutoff(sampleRate),
	}
	if c.minCutoff >= c.maxCutoff {
		return nil, fmt.Errorf("filterbox: %w: min cutoff %v Hz leaves no band below %v Hz",
			ErrInvalidFrequency, c.minCutoff, c.maxCutoff)
	}

	if cfg.lowPass == 0 {
		cfg.lowPass = c.maxCutoff
	}
	if cfg.highPass == 0 {
		cfg.highPass = c.minCutoff
	}

	var err error
	c.stages[LowPassStage], err = NewStage(design.LowPass, c.clamp(cfg.lowPass), sampleRate)
	if err != nil {
		return nil, err
	}
	c.stages[HighPassStage], err = NewStage(design.HighPass, c.clamp(cfg.highPass), sampleRate)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ProcessBlock filters buf in place: the whole block through the low-pass
// stage, then through the high-pass stage. Audio goroutine only.
func (c *Chain) ProcessBlock(buf []float32) {
	c.stages[LowPassStage].ProcessBlock(buf)
	c.stages[HighPassStage].ProcessBlock(buf)
}

// ProcessBlockTo filters src into dst, preserving sample order. dst must be
// at least as long as src. Audio goroutine only.
func (c *Chain) ProcessBlockTo(dst, src []float32) {
	c.stages[LowPassStage].ProcessBlockTo(dst, src)
	c.stages[HighPassStage].ProcessBlock(dst[:len(src)])
}

// SetCutoff retunes exactly one stage. Requests outside
// [MinCutoff, MaxCutoff] are clamped. It returns the applied cutoff.
func (c *Chain) SetCutoff(target StageID, freqHz float64) float64 {
	return c.retune(target, func(float64) float64 { return c.clamp(freqHz) })
}

// AdjustCutoff moves one stage's cutoff by deltaHz (clamped) and returns
// the applied cutoff. Concurrent adjustments of the same stage compose.
func (c *Chain) AdjustCutoff(target StageID, deltaHz float64) float64 {
	return c.retune(target, func(cur float64) float64 { return c.clamp(cur + deltaHz) })
}

func (c *Chain) retune(target StageID, next func(cur float64) float64) float64 {
	s := c.Stage(target)
	if s == nil {
		return 0
	}

	// Clamped input always designs; on error the previous cutoff stays.
	hz, _ := s.update(target.kind(), c.sampleRate, next)

	return hz
}

// ResetCutoff opens one stage fully: low-pass to the maximum cutoff,
// high-pass to the floor.
func (c *Chain) ResetCutoff(target StageID) float64 {
	if target == HighPassStage {
		return c.SetCutoff(target, c.minCutoff)
	}
	return c.SetCutoff(target, c.maxCutoff)
}

// Cutoff returns the applied cutoff of one stage, or 0 for an unknown id.
func (c *Chain) Cutoff(target StageID) float64 {
	s := c.Stage(target)
	if s == nil {
		return 0
	}
	return s.Cutoff()
}

// ResponseDB returns the magnitude response of both stages at freqHz in dB,
// as currently tuned.
func (c *Chain) ResponseDB(freqHz float64) float64 {
	db := 0.0
	for _, s := range c.stages {
		coeffs := s.Coefficients()
		db += coeffs.MagnitudeDB(freqHz, c.sampleRate)
	}
	return db
}

// Stage returns the stage for id, or nil.
func (c *Chain) Stage(id StageID) *Stage {
	if id < LowPassStage || id > HighPassStage {
		return nil
	}
	return c.stages[id]
}

// Reset clears both stages' delay registers. Audio goroutine only.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

// SampleRate returns the chain's sample rate.
func (c *Chain) SampleRate() float64 { return c.sampleRate }

// MinCutoff returns the clamping floor.
func (c *Chain) MinCutoff() float64 { return c.minCutoff }

// MaxCutoff returns the clamping ceiling.
func (c *Chain) MaxCutoff() float64 { return c.maxCutoff }

func (c *Chain) clamp(hz float64) float64 {
	if math.IsNaN(hz) {
		return c.minCutoff
	}
	return core.Clamp(hz, c.minCutoff, c.maxCutoff)
}
