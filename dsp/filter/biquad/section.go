package biquad

import (
	"math"

	"github.com/cwbudde/filterbox/dsp/core"
)

// Coefficients of one second-order section with a0 normalized to 1:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section holds the two delay registers of a DF-II-T biquad. Coefficients
// are passed per call so that the owner can swap them between blocks.
// The zero value is ready to use.
type Section struct {
	d0, d1 float64
}

// Step filters one sample with c.
func (s *Section) Step(c *Coefficients, x float64) float64 {
	y := c.B0*x + s.d0
	s.d0 = c.B1*x - c.A1*y + s.d1
	s.d1 = c.B2*x - c.A2*y
	return y
}

// Filter runs src through the section into dst with c, which is read once
// for the whole block. dst must be at least as long as src and may alias
// it. An output that is not representable as float32 clears the registers
// and is replaced by 0; Filter returns how often that happened. Registers
// that decay into the denormal range are flushed at the end of the block.
func (s *Section) Filter(c *Coefficients, dst, src []float32) (recovered int) {
	if len(src) == 0 {
		return 0
	}
	_ = dst[len(src)-1]

	b0, b1, b2, a1, a2 := c.B0, c.B1, c.B2, c.A1, c.A2
	d0, d1 := s.d0, s.d1

	for i, x := range src {
		xf := float64(x)
		y := b0*xf + d0
		d0 = b1*xf - a1*y + d1
		d1 = b2*xf - a2*y

		if !(math.Abs(y) <= math.MaxFloat32) {
			d0, d1 = 0, 0
			recovered++
			dst[i] = 0
			continue
		}
		dst[i] = float32(y)
	}

	s.d0, s.d1 = core.FlushDenormals(d0), core.FlushDenormals(d1)
	return recovered
}

// Reset clears the delay registers.
func (s *Section) Reset() {
	s.d0, s.d1 = 0, 0
}

// State returns the delay registers [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}
