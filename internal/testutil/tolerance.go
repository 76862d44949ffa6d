package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireFinite fails t at the first NaN or ±Inf sample.
func RequireFinite(t testing.TB, samples []float32) {
	t.Helper()
	for i, v := range samples {
		if x := float64(v); math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
}

// MaxAbsDiff returns max |a[i]-b[i]|. Slices of different length are an
// error.
func MaxAbsDiff(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("testutil: length mismatch: %d vs %d", len(a), len(b))
	}

	worst := 0.0
	for i := range a {
		worst = math.Max(worst, math.Abs(float64(a[i])-float64(b[i])))
	}
	return worst, nil
}
