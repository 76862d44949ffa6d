package biquad

import (
	"math/cmplx"

	"github.com/cwbudde/filterbox/dsp/core"
)

// Poles returns the roots of 1 + A1*z^-1 + A2*z^-2.
func (c *Coefficients) Poles() [2]complex128 {
	disc := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	a1 := complex(c.A1, 0)
	return [2]complex128{(-a1 + disc) / 2, (-a1 - disc) / 2}
}

// IsStable reports whether every coefficient is finite and both poles lie
// strictly inside the unit circle.
func (c *Coefficients) IsStable() bool {
	for _, v := range [...]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if !core.IsFinite(v) {
			return false
		}
	}

	p := c.Poles()
	return cmplx.Abs(p[0]) < 1 && cmplx.Abs(p[1]) < 1
}
