package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/filterbox/dsp/window"
)

// ErrInvalidConfiguration reports analyzer parameters that cannot produce a
// spectrum.
var ErrInvalidConfiguration = errors.New("spectrum: invalid configuration")

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	window window.Type
}

// WithWindow tapers each window before the transform. The default is
// [window.TypeRectangular], which yields the plain |X[k]|²/N spectrum.
// Other tapers are normalized by their coherent gain so a bin-centred
// sinusoid keeps the same peak power.
func WithWindow(t window.Type) AnalyzerOption {
	return func(cfg *analyzerConfig) { cfg.window = t }
}

// publishSlots is the number of preallocated spectra cycled by the writer.
// A reader copying slot g is valid while the generation stays below g+2.
const publishSlots = 3

// Analyzer computes power spectra over consecutive, non-overlapping windows
// of bufferSize samples.
//
// Ingest must be called from a single goroutine and does not allocate.
// Snapshot, SnapshotInto, Bins, Peak, Windows and Pending are safe from any
// goroutine; they copy the latest spectrum out of its slot.
type Analyzer struct {
	bins int
	size int

	acc  []float32
	fill int

	taper *window.Taper // nil for rectangular
	scale float64

	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
	re   []float64
	im   []float64
	pow  []float64

	// Float32 bits; slots[g%publishSlots] holds generation g. Generation 0
	// is the all-zero initial spectrum.
	slots   [publishSlots][]atomic.Uint32
	gen     atomic.Uint64
	dropped atomic.Uint64
	pending atomic.Int64
}

// NewAnalyzer creates an analyzer that publishes bufferSize power values per
// window and exposes the first bins of them through [Analyzer.Bins].
func NewAnalyzer(bins, bufferSize int, opts ...AnalyzerOption) (*Analyzer, error) {
	if bufferSize <= 0 {
		return nil, fmt.Errorf("%w: bufferSize must be > 0: %d", ErrInvalidConfiguration, bufferSize)
	}
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bins must be > 0: %d", ErrInvalidConfiguration, bins)
	}
	if bins > bufferSize {
		return nil, fmt.Errorf("%w: bins must be <= bufferSize: %d > %d", ErrInvalidConfiguration, bins, bufferSize)
	}

	cfg := analyzerConfig{window: window.TypeRectangular}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(bufferSize)
	if err != nil {
		return nil, fmt.Errorf("%w: fft plan for %d points: %v", ErrInvalidConfiguration, bufferSize, err)
	}

	a := &Analyzer{
		bins:  bins,
		size:  bufferSize,
		acc:   make([]float32, bufferSize),
		scale: 1 / float64(bufferSize),
		plan:  plan,
		in:    make([]complex128, bufferSize),
		out:   make([]complex128, bufferSize),
		re:    make([]float64, bufferSize),
		im:    make([]float64, bufferSize),
		pow:   make([]float64, bufferSize),
	}

	if cfg.window != window.TypeRectangular {
		taper, err := window.NewTaper(cfg.window, bufferSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		a.taper = taper
		a.scale /= taper.CoherentGain() * taper.CoherentGain()
	}

	for i := range a.slots {
		a.slots[i] = make([]atomic.Uint32, bufferSize)
	}

	return a, nil
}

// Ingest appends samples to the accumulation buffer. Every time the buffer
// reaches bufferSize samples it is transformed, the result is published and
// accumulation restarts with the samples that did not fit. A single call
// may complete several windows.
func (a *Analyzer) Ingest(samples []float32) {
	for len(samples) > 0 {
		n := copy(a.acc[a.fill:], samples)
		a.fill += n
		samples = samples[n:]

		if a.fill == a.size {
			a.transform()
			a.fill = 0
		}
	}

	a.pending.Store(int64(a.fill))
}

func (a *Analyzer) transform() {
	for i, x := range a.acc {
		a.re[i] = float64(x)
	}
	if a.taper != nil {
		// Lengths match by construction.
		_ = a.taper.Apply(a.re)
	}
	for i, x := range a.re {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		a.dropped.Add(1)
		return
	}

	for i, c := range a.out {
		a.re[i] = real(c)
		a.im[i] = imag(c)
	}
	vecmath.Power(a.pow, a.re, a.im)

	next := a.gen.Load() + 1
	slot := a.slots[next%publishSlots]
	for i, p := range a.pow {
		slot[i].Store(math.Float32bits(float32(p * a.scale)))
	}

	a.gen.Store(next)
}

// Snapshot returns a copy of the most recently published spectrum,
// bufferSize values long and all zeros before the first window completes.
func (a *Analyzer) Snapshot() []float32 {
	return a.SnapshotInto(make([]float32, a.size))
}

// SnapshotInto copies the most recently published spectrum into dst and
// returns dst[:bufferSize], growing dst only when it is too short. The copy
// never mixes two windows.
func (a *Analyzer) SnapshotInto(dst []float32) []float32 {
	if cap(dst) < a.size {
		dst = make([]float32, a.size)
	}
	dst = dst[:a.size]

	for {
		g := a.gen.Load()
		slot := a.slots[g%publishSlots]
		for i := range slot {
			dst[i] = math.Float32frombits(slot[i].Load())
		}
		// The writer starts overwriting slot g once generation g+2 is
		// published and it moves on to g+3.
		if a.gen.Load() < g+publishSlots-1 {
			return dst
		}
	}
}

// Bins returns a copy of the first bins values of the latest spectrum.
func (a *Analyzer) Bins() []float32 {
	return a.Snapshot()[:a.bins]
}

// Peak returns the index and power of the strongest bin in the lower half
// of the latest spectrum (DC through Nyquist).
func (a *Analyzer) Peak() (int, float32) {
	return PeakBin(a.Snapshot())
}

// PeakBin returns the index and power of the strongest bin of spec from DC
// through Nyquist, len(spec)/2. It returns (0, 0) for an empty spectrum.
func PeakBin(spec []float32) (int, float32) {
	if len(spec) == 0 {
		return 0, 0
	}

	idx := 0
	best := spec[0]
	for k := 1; k <= len(spec)/2; k++ {
		if spec[k] > best {
			idx, best = k, spec[k]
		}
	}

	return idx, best
}

// BinFrequency returns the centre frequency of bin k at sampleRate.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(a.size)
}

// BinCount returns the number of bins exposed by [Analyzer.Bins].
func (a *Analyzer) BinCount() int { return a.bins }

// BufferSize returns the window length.
func (a *Analyzer) BufferSize() int { return a.size }

// Windows returns how many windows have been transformed and published.
func (a *Analyzer) Windows() uint64 { return a.gen.Load() }

// Dropped returns how many windows were discarded by a transform failure.
func (a *Analyzer) Dropped() uint64 { return a.dropped.Load() }

// Pending returns the number of samples waiting for the next window.
func (a *Analyzer) Pending() int { return int(a.pending.Load()) }
