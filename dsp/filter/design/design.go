package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/filterbox/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a maximally flat second-order section.
const ButterworthQ = 1 / math.Sqrt2

// ErrInvalidFrequency reports a cutoff outside (0, sampleRate/2) or a
// non-positive sample rate.
var ErrInvalidFrequency = errors.New("invalid frequency")

// Kind selects the response shape of a designed section.
type Kind int

const (
	// LowPass attenuates content above the cutoff.
	LowPass Kind = iota
	// HighPass attenuates content below the cutoff.
	HighPass
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case LowPass:
		return "lowpass"
	case HighPass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ValidateCutoff checks 0 < cutoff < sampleRate/2 for a positive, finite
// sample rate. The returned error wraps [ErrInvalidFrequency].
func ValidateCutoff(cutoff, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidFrequency, sampleRate)
	}

	nyquist := sampleRate / 2
	if cutoff <= 0 || cutoff >= nyquist || math.IsNaN(cutoff) {
		return fmt.Errorf("%w: cutoff must be in (0, %v): %v", ErrInvalidFrequency, nyquist, cutoff)
	}

	return nil
}

// Design returns Butterworth (Q = 1/sqrt2) coefficients for kind at cutoff.
func Design(kind Kind, cutoff, sampleRate float64) (biquad.Coefficients, error) {
	if err := ValidateCutoff(cutoff, sampleRate); err != nil {
		return biquad.Coefficients{}, err
	}

	switch kind {
	case LowPass:
		return Lowpass(cutoff, ButterworthQ, sampleRate), nil
	case HighPass:
		return Highpass(cutoff, ButterworthQ, sampleRate), nil
	default:
		return biquad.Coefficients{}, fmt.Errorf("design: unknown filter kind %v", kind)
	}
}

// Lowpass returns the RBJ low-pass section at freq (Hz) with quality
// factor q. A non-positive or non-finite q selects [ButterworthQ]; an
// invalid freq yields zero coefficients.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return rbj(LowPass, freq, q, sampleRate)
}

// Highpass is the high-pass counterpart of [Lowpass].
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	return rbj(HighPass, freq, q, sampleRate)
}

// rbj evaluates the audio-EQ-cookbook pass filters. Both share the
// denominator; the numerator's outer taps are half the magnitude of its
// middle tap.
func rbj(kind Kind, freq, q, sampleRate float64) biquad.Coefficients {
	if ValidateCutoff(freq, sampleRate) != nil || math.IsInf(freq, 0) {
		return biquad.Coefficients{}
	}
	if !(q > 0) || math.IsInf(q, 0) {
		q = ButterworthQ
	}

	sin, cos := math.Sincos(2 * math.Pi * freq / sampleRate)
	alpha := sin / (2 * q)
	norm := 1 / (1 + alpha)

	mid := 1 - cos
	if kind == HighPass {
		mid = -(1 + cos)
	}
	outer := math.Abs(mid) / 2

	return biquad.Coefficients{
		B0: outer * norm,
		B1: mid * norm,
		B2: outer * norm,
		A1: -2 * cos * norm,
		A2: (1 - alpha) * norm,
	}
}
