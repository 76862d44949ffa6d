package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPoles(t *testing.T) {
	tests := []struct {
		name         string
		c            Coefficients
		want1, want2 complex128
	}{
		{
			name:  "conjugate pair",
			c:     Coefficients{A1: -2 * 0.72, A2: 0.72*0.72 + 0.19*0.19},
			want1: complex(0.72, 0.19),
			want2: complex(0.72, -0.19),
		},
		{
			name:  "smoother",
			c:     smoother,
			want1: complex(0.1, math.Sqrt(0.03)),
			want2: complex(0.1, -math.Sqrt(0.03)),
		},
		{
			name:  "first order",
			c:     Coefficients{B0: 1, A1: -0.8},
			want1: 0.8,
			want2: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.c.Poles()
			ok := (cmplx.Abs(p[0]-tt.want1) < 1e-12 && cmplx.Abs(p[1]-tt.want2) < 1e-12) ||
				(cmplx.Abs(p[0]-tt.want2) < 1e-12 && cmplx.Abs(p[1]-tt.want1) < 1e-12)
			if !ok {
				t.Fatalf("Poles() = %v, want {%v, %v}", p, tt.want1, tt.want2)
			}
		})
	}
}

func TestIsStable(t *testing.T) {
	tests := []struct {
		name string
		c    Coefficients
		want bool
	}{
		{name: "passthrough", c: Coefficients{B0: 1}, want: true},
		{name: "smoother", c: smoother, want: true},
		{name: "pole on unit circle", c: Coefficients{B0: 1, A1: -2, A2: 1}, want: false},
		{name: "pole outside", c: Coefficients{B0: 1, A1: -2.5, A2: 1.2}, want: false},
		{name: "nan", c: Coefficients{B0: math.NaN()}, want: false},
		{name: "inf", c: Coefficients{B0: 1, A1: math.Inf(1)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsStable(); got != tt.want {
				t.Fatalf("IsStable() = %v, want %v (poles %v)", got, tt.want, tt.c.Poles())
			}
		})
	}
}
