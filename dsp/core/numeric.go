// Package core holds the scalar helpers shared by the filter, analyzer and
// display code.
package core

import "math"

// denormalFloor is the magnitude below which register values are treated
// as zero.
const denormalFloor = 1e-30

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// FlushDenormals returns 0 for |x| < 1e-30 and x otherwise. IIR registers
// decaying towards zero otherwise spend a long time in the slow denormal
// range.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// SanitizeBlock zeroes every NaN or ±Inf sample of buf and returns how many
// it replaced.
func SanitizeBlock(buf []float32) int {
	n := 0
	for i, x := range buf {
		if !IsFinite(float64(x)) {
			buf[i] = 0
			n++
		}
	}
	return n
}

// LinearToDB returns 20*log10(amplitude): -Inf for 0, NaN below 0.
func LinearToDB(amplitude float64) float64 {
	return 2 * LinearPowerToDB(amplitude)
}

// LinearPowerToDB returns 10*log10(power): -Inf for 0, NaN below 0.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}
	return 10 * math.Log10(power)
}
