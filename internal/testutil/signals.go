package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of amplitude*sin(2πf·n/fs),
// starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) drawn
// from a generator seeded with seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// RandomChunks splits samples into consecutive sub-slices of random length
// in [1, maxChunk], seeded for reproducibility. Concatenating the chunks
// yields samples again.
func RandomChunks(seed int64, samples []float32, maxChunk int) [][]float32 {
	if maxChunk < 1 {
		maxChunk = 1
	}
	rng := rand.New(rand.NewSource(seed))
	var chunks [][]float32
	for len(samples) > 0 {
		n := 1 + rng.Intn(maxChunk)
		if n > len(samples) {
			n = len(samples)
		}
		chunks = append(chunks, samples[:n])
		samples = samples[n:]
	}
	return chunks
}

// PeakAbs returns the largest absolute sample value.
func PeakAbs(samples []float32) float64 {
	peak := 0.0
	for _, v := range samples {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	return peak
}
