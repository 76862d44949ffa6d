package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name          string
		value, lo, hi float64
		want          float64
	}{
		{name: "inside", value: 0.5, lo: 0, hi: 1, want: 0.5},
		{name: "below", value: -1, lo: 0, hi: 1, want: 0},
		{name: "above", value: 2, lo: 0, hi: 1, want: 1},
		{name: "swapped", value: 2, lo: 1, hi: 0, want: 1},
		{name: "cutoff floor", value: 3, lo: 10, hi: 23050, want: 10},
		{name: "cutoff ceiling", value: 30000, lo: 10, hi: 23050, want: 23050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestFlushDenormals(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{in: 1e-35, want: 0},
		{in: -1e-31, want: 0},
		{in: 1e-29, want: 1e-29},
		{in: -0.25, want: -0.25},
	}
	for _, tt := range tests {
		if got := FlushDenormals(tt.in); got != tt.want {
			t.Fatalf("FlushDenormals(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1) || !IsFinite(-math.MaxFloat64) {
		t.Fatal("finite value reported non-finite")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Fatalf("%v reported finite", v)
		}
	}
}

func TestSanitizeBlock(t *testing.T) {
	buf := []float32{
		0.5,
		float32(math.NaN()),
		float32(math.Inf(1)),
		-0.25,
		float32(math.Inf(-1)),
	}

	if n := SanitizeBlock(buf); n != 3 {
		t.Fatalf("replaced = %d, want 3", n)
	}

	want := []float32{0.5, 0, 0, -0.25, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestDecibels(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "amplitude half", got: LinearToDB(0.5), want: -6.0206},
		{name: "amplitude unity", got: LinearToDB(1), want: 0},
		{name: "power hundred", got: LinearPowerToDB(100), want: 20},
		{name: "power quarter", got: LinearPowerToDB(0.25), want: -6.0206},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-4 {
			t.Fatalf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) || !math.IsInf(LinearPowerToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) || !math.IsNaN(LinearPowerToDB(-1)) {
		t.Fatal("expected NaN for negative input")
	}
}
