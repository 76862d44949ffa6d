package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/filterbox/dsp/spectrum"
)

func ExampleAnalyzer() {
	const (
		n          = 64
		sampleRate = 6400.0
	)

	a, err := spectrum.NewAnalyzer(n/2, n)
	if err != nil {
		panic(err)
	}

	block := make([]float32, n)
	for i := range block {
		block[i] = float32(math.Sin(2 * math.Pi * 400 * float64(i) / sampleRate))
	}
	a.Ingest(block)

	k, p := a.Peak()
	fmt.Printf("%.0f Hz %.1f\n", a.BinFrequency(k, sampleRate), p)
	fmt.Println(a.Windows(), a.Pending())
	// Output:
	// 400 Hz 16.0
	// 1 0
}
