// Package design provides second-order IIR coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing. Low-pass and high-pass sections
// use the RBJ bilinear-transform formulas of the Butterworth analog
// prototype; [Design] fixes the quality factor to [ButterworthQ] and
// validates the cutoff against the Nyquist limit.
package design
