package buffer

// Buffer is a float32 scratch slice that keeps its backing array across
// resizes, so a steady block size never allocates.
type Buffer struct {
	samples []float32
	grows   int
}

// New returns a zero-filled Buffer of length n (negative n is treated as 0).
func New(n int) *Buffer {
	return &Buffer{samples: make([]float32, max(n, 0))}
}

// Samples returns the current slice.
func (b *Buffer) Samples() []float32 { return b.samples }

// Len returns the current length.
func (b *Buffer) Len() int { return len(b.samples) }

// Cap returns the capacity of the backing array.
func (b *Buffer) Cap() int { return cap(b.samples) }

// Grows returns how many resizes needed a new backing array.
func (b *Buffer) Grows() int { return b.grows }

// Resize sets the length to n and returns the samples. Samples exposed by
// growing are zero; samples kept from the previous length are untouched.
func (b *Buffer) Resize(n int) []float32 {
	n = max(n, 0)
	old := len(b.samples)

	if n > cap(b.samples) {
		grown := make([]float32, n)
		copy(grown, b.samples)
		b.samples = grown
		b.grows++
		return b.samples
	}

	b.samples = b.samples[:n]
	if n > old {
		clear(b.samples[old:])
	}
	return b.samples
}
