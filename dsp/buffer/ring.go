package buffer

import (
	"fmt"
	"sync/atomic"
)

// Ring is a fixed-capacity circular sample queue for exactly one writer
// goroutine and one reader goroutine. Neither side blocks or locks.
type Ring struct {
	data []float32

	// Monotonic sample counters; index = counter % len(data).
	written atomic.Uint64
	read    atomic.Uint64
}

// NewRing returns a ring holding up to capacity samples.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}
	return &Ring{data: make([]float32, capacity)}, nil
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Len returns the number of samples waiting to be read.
func (r *Ring) Len() int {
	return int(r.written.Load() - r.read.Load())
}

// Free returns the number of samples that can be written without loss.
func (r *Ring) Free() int {
	return len(r.data) - r.Len()
}

// Write copies as much of src as fits and returns the count. Writer only.
func (r *Ring) Write(src []float32) int {
	w := r.written.Load()
	free := len(r.data) - int(w-r.read.Load())
	n := min(free, len(src))
	if n <= 0 {
		return 0
	}

	pos := int(w % uint64(len(r.data)))
	first := copy(r.data[pos:], src[:n])
	copy(r.data, src[first:n])

	r.written.Store(w + uint64(n))
	return n
}

// Read moves up to len(dst) samples into dst and returns the count.
// Reader only.
func (r *Ring) Read(dst []float32) int {
	rd := r.read.Load()
	avail := int(r.written.Load() - rd)
	n := min(avail, len(dst))
	if n <= 0 {
		return 0
	}

	pos := int(rd % uint64(len(r.data)))
	first := copy(dst[:n], r.data[pos:])
	copy(dst[first:n], r.data)

	r.read.Store(rd + uint64(n))
	return n
}
