package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestResponse_Passthrough(t *testing.T) {
	c := Coefficients{B0: 1}
	for _, f := range []float64{0, 100, 1000, 12000, 23999} {
		if h := c.Response(f, 48000); cmplx.Abs(h-1) > eps {
			t.Fatalf("H(%v) = %v, want 1", f, h)
		}
	}
}

func TestResponse_DCAndNyquist(t *testing.T) {
	// H(1) = sum(b) / (1 + a1 + a2); H(-1) = (b0 - b1 + b2) / (1 - a1 + a2).
	dc := (smoother.B0 + smoother.B1 + smoother.B2) / (1 + smoother.A1 + smoother.A2)
	if got := smoother.Magnitude(0, 48000); math.Abs(got-dc) > eps {
		t.Fatalf("|H(0)| = %v, want %v", got, dc)
	}
	if got := smoother.Magnitude(24000, 48000); got > 1e-9 {
		t.Fatalf("|H(nyquist)| = %v, want 0", got)
	}
}

func TestResponse_AllpassIsFlat(t *testing.T) {
	a1, a2 := -0.4, 0.3
	c := Coefficients{B0: a2, B1: a1, B2: 1, A1: a1, A2: a2}
	for _, f := range []float64{50, 500, 5000, 15000} {
		if db := c.MagnitudeDB(f, 48000); math.Abs(db) > 1e-9 {
			t.Fatalf("allpass |H(%v)| = %v dB, want 0", f, db)
		}
	}
}

func TestResponse_MatchesMeasuredSine(t *testing.T) {
	const (
		sr   = 48000.0
		freq = 3000.0
		n    = 4800
	)

	var s Section
	var in, out float64
	for i := range n {
		x := math.Sin(2 * math.Pi * freq * float64(i) / sr)
		y := s.Step(&smoother, x)
		if i >= n/2 {
			in += x * x
			out += y * y
		}
	}

	measured := math.Sqrt(out / in)
	if want := smoother.Magnitude(freq, sr); math.Abs(measured-want) > 1e-3 {
		t.Fatalf("measured gain %v, response %v", measured, want)
	}
}
