package design

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/filterbox/dsp/filter/biquad"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestBiquadDesigners_BasicResponseShape(t *testing.T) {
	sr := 48000.0
	f := 1000.0

	lp := Lowpass(f, ButterworthQ, sr)
	if !(mag(lp, 100, sr) > mag(lp, 10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}
	if !almostEqual(mag(lp, 0, sr), 1, 1e-12) {
		t.Fatalf("lowpass DC gain = %v, want 1", mag(lp, 0, sr))
	}

	hp := Highpass(f, ButterworthQ, sr)
	if !(mag(hp, 10000, sr) > mag(hp, 100, sr)) {
		t.Fatal("highpass shape check failed")
	}
	if !almostEqual(mag(hp, sr/2, sr), 1, 1e-9) {
		t.Fatalf("highpass Nyquist gain = %v, want 1", mag(hp, sr/2, sr))
	}
}

func TestDesign_ButterworthCutoffIsMinus3dB(t *testing.T) {
	for _, kind := range []Kind{LowPass, HighPass} {
		for _, sr := range []float64{22050, 44100, 48000, 96000} {
			for _, fc := range []float64{50, 440, 1000, 5000} {
				c, err := Design(kind, fc, sr)
				if err != nil {
					t.Fatalf("%v fc=%v sr=%v: %v", kind, fc, sr, err)
				}
				db := c.MagnitudeDB(fc, sr)
				if !almostEqual(db, -3.0103, 0.001) {
					t.Fatalf("%v fc=%v sr=%v: |H(fc)| = %.4f dB, want -3.0103", kind, fc, sr, db)
				}
			}
		}
	}
}

func TestDesign_ValidPairsAreFiniteAndStable(t *testing.T) {
	fractions := []float64{1e-5, 1e-4, 1e-3, 0.01, 0.1, 0.25, 0.4, 0.45, 0.49, 0.4999}
	for _, kind := range []Kind{LowPass, HighPass} {
		for _, sr := range []float64{8000, 22050, 44100, 48000, 96000, 192000} {
			for _, frac := range fractions {
				fc := frac * sr
				c, err := Design(kind, fc, sr)
				if err != nil {
					t.Fatalf("%v fc=%v sr=%v: unexpected error %v", kind, fc, sr, err)
				}
				assertFiniteCoefficients(t, c)
				assertStableSection(t, c)
			}
		}
	}
}

func TestDesign_InvalidFrequency(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		sr     float64
	}{
		{name: "zero cutoff", cutoff: 0, sr: 48000},
		{name: "negative cutoff", cutoff: -100, sr: 48000},
		{name: "at nyquist", cutoff: 24000, sr: 48000},
		{name: "above nyquist", cutoff: 30000, sr: 48000},
		{name: "nan cutoff", cutoff: math.NaN(), sr: 48000},
		{name: "inf cutoff", cutoff: math.Inf(1), sr: 48000},
		{name: "zero sample rate", cutoff: 1000, sr: 0},
		{name: "negative sample rate", cutoff: 1000, sr: -48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range []Kind{LowPass, HighPass} {
				_, err := Design(kind, tt.cutoff, tt.sr)
				if !errors.Is(err, ErrInvalidFrequency) {
					t.Fatalf("%v: err = %v, want ErrInvalidFrequency", kind, err)
				}
			}
		})
	}
}

func TestDesign_UnknownKind(t *testing.T) {
	_, err := Design(Kind(7), 1000, 48000)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if errors.Is(err, ErrInvalidFrequency) {
		t.Fatal("unknown kind must not be reported as an invalid frequency")
	}
}

func TestDesign_Deterministic(t *testing.T) {
	a, _ := Design(LowPass, 1234.5, 44100)
	b, _ := Design(LowPass, 1234.5, 44100)
	if a != b {
		t.Fatalf("repeated design differs: %#v vs %#v", a, b)
	}
}

func TestDesigners_InvalidParamsYieldZeroCoefficients(t *testing.T) {
	if c := Lowpass(0, ButterworthQ, 48000); c != (biquad.Coefficients{}) {
		t.Fatalf("Lowpass(0) = %#v, want zero", c)
	}
	if c := Highpass(25000, ButterworthQ, 48000); c != (biquad.Coefficients{}) {
		t.Fatalf("Highpass(25000) = %#v, want zero", c)
	}
}

func TestDesigners_InvalidQFallsBackToButterworth(t *testing.T) {
	lp := Lowpass(1000, ButterworthQ, 48000)
	hp := Highpass(1000, ButterworthQ, 48000)
	for _, q := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := Lowpass(1000, q, 48000); got != lp {
			t.Fatalf("Lowpass(q=%v) = %#v, want %#v", q, got, lp)
		}
		if got := Highpass(1000, q, 48000); got != hp {
			t.Fatalf("Highpass(q=%v) = %#v, want %#v", q, got, hp)
		}
	}
}

func TestDesigners_MatchCookbook(t *testing.T) {
	const fs, f0 = 44100.0, 2500.0
	w0 := 2 * math.Pi * f0 / fs
	alpha := math.Sin(w0) / (2 * ButterworthQ)
	a0 := 1 + alpha

	wantLP := [5]float64{(1 - math.Cos(w0)) / 2 / a0, (1 - math.Cos(w0)) / a0, (1 - math.Cos(w0)) / 2 / a0, -2 * math.Cos(w0) / a0, (1 - alpha) / a0}
	wantHP := [5]float64{(1 + math.Cos(w0)) / 2 / a0, -(1 + math.Cos(w0)) / a0, (1 + math.Cos(w0)) / 2 / a0, -2 * math.Cos(w0) / a0, (1 - alpha) / a0}

	for _, tc := range []struct {
		name string
		got  biquad.Coefficients
		want [5]float64
	}{
		{name: "lowpass", got: Lowpass(f0, ButterworthQ, fs), want: wantLP},
		{name: "highpass", got: Highpass(f0, ButterworthQ, fs), want: wantHP},
	} {
		got := [5]float64{tc.got.B0, tc.got.B1, tc.got.B2, tc.got.A1, tc.got.A2}
		for i := range got {
			if !almostEqual(got[i], tc.want[i], tol) {
				t.Fatalf("%s coefficient %d = %v, want %v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestKindString(t *testing.T) {
	if LowPass.String() != "lowpass" || HighPass.String() != "highpass" {
		t.Fatalf("unexpected names: %q %q", LowPass, HighPass)
	}
	if Kind(9).String() != "Kind(9)" {
		t.Fatalf("unexpected name for unknown kind: %q", Kind(9))
	}
}

func mag(c biquad.Coefficients, freq, sr float64) float64 {
	h := c.Response(freq, sr)
	return cmplx.Abs(h)
}

func assertFiniteCoefficients(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	v := []float64{c.B0, c.B1, c.B2, c.A1, c.A2}
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			t.Fatalf("invalid coefficient[%d]=%v", i, v[i])
		}
	}
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	poles := c.Poles()
	if cmplx.Abs(poles[0]) >= 1+tol || cmplx.Abs(poles[1]) >= 1+tol {
		t.Fatalf("unstable poles: |p1|=%v |p2|=%v coeff=%#v", cmplx.Abs(poles[0]), cmplx.Abs(poles[1]), c)
	}
}
