package spectrum

import (
	"fmt"
	"math"
)

// Bands reduces a power spectrum to count logarithmically spaced display
// bands. DC is skipped; band j averages bins [n^(j/count), n^((j+1)/count)),
// widened to at least one bin. Bands past the end of power are zero.
func Bands(power []float32, count int) ([]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("band count must be > 0: %d", count)
	}
	if len(power) < 2 {
		return nil, fmt.Errorf("bands require at least 2 bins: %d", len(power))
	}

	n := len(power)
	out := make([]float64, count)

	lo := 1
	for j := range out {
		hi := int(math.Round(math.Pow(float64(n), float64(j+1)/float64(count))))
		if hi <= lo {
			hi = lo + 1
		}
		if hi > n {
			hi = n
		}
		if lo >= n {
			break
		}

		sum := 0.0
		for _, p := range power[lo:hi] {
			sum += float64(p)
		}
		out[j] = sum / float64(hi-lo)

		lo = hi
	}

	return out, nil
}
