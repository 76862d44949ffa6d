// Package window generates the analysis tapers used by the spectrum
// analyzer.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

var (
	errLength     = errors.New("window: length must be > 0")
	errZeroGain   = errors.New("window: coherent gain is zero")
	errBufferSize = errors.New("window: buffer length differs from taper length")
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// cosineSum holds a0, a1, a2 of w(x) = a0 - a1*cos(2πx) + a2*cos(4πx).
var cosineSum = map[Type][3]float64{
	TypeRectangular: {1, 0, 0},
	TypeHann:        {0.5, 0.5, 0},
	TypeHamming:     {0.54, 0.46, 0},
	TypeBlackman:    {0.42, 0.5, 0.08},
}

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
}

// String returns the lower-case window name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a configuration name to a Type. Matching ignores case and
// surrounding space; "", "rect" and "none" select TypeRectangular.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "rect", "none":
		return TypeRectangular, nil
	}

	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}

	return TypeRectangular, fmt.Errorf("unknown window %q", name)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic generates the periodic form used for FFT framing: the
// symmetric window of length+1 without its last point.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of t. Unknown types yield the
// rectangular window; non-positive lengths yield nil. A single point is 1.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	a, ok := cosineSum[t]
	if !ok {
		a = cosineSum[TypeRectangular]
	}

	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	span := float64(length - 1)
	if cfg.periodic {
		span = float64(length)
	}
	for n := range w {
		phi := 2 * math.Pi * float64(n) / span
		w[n] = a[0] - a[1]*math.Cos(phi) + a[2]*math.Cos(2*phi)
	}

	return w
}

// Taper is a precomputed periodic window of fixed length.
type Taper struct {
	typ    Type
	coeffs []float64
	gain   float64
}

// NewTaper precomputes the periodic form of t.
func NewTaper(t Type, length int) (*Taper, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", errLength, length)
	}

	coeffs := Generate(t, length, WithPeriodic())
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: %v", errZeroGain, t)
	}

	return &Taper{typ: t, coeffs: coeffs, gain: sum / float64(length)}, nil
}

// Type returns the window function.
func (w *Taper) Type() Type { return w.typ }

// Len returns the taper length.
func (w *Taper) Len() int { return len(w.coeffs) }

// Coefficients returns the shared coefficient slice.
func (w *Taper) Coefficients() []float64 { return w.coeffs }

// CoherentGain returns sum(w)/N, the window's response to DC.
func (w *Taper) CoherentGain() float64 { return w.gain }

// ENBW returns the equivalent noise bandwidth in bins,
// N*sum(w²)/sum(w)².
func (w *Taper) ENBW() float64 {
	sq := 0.0
	for _, c := range w.coeffs {
		sq += c * c
	}
	sum := w.gain * float64(len(w.coeffs))
	return float64(len(w.coeffs)) * sq / (sum * sum)
}

// Apply multiplies buf by the taper in place.
func (w *Taper) Apply(buf []float64) error {
	if len(buf) != len(w.coeffs) {
		return fmt.Errorf("%w: %d != %d", errBufferSize, len(buf), len(w.coeffs))
	}
	vecmath.MulBlockInPlace(buf, w.coeffs)
	return nil
}
