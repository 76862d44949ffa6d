// Package biquad is the second-order IIR runtime behind each filter stage.
//
// [Section] keeps the two registers of the Direct Form II Transposed
// realization of
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
//
// and filters float32 audio blocks with [Coefficients] supplied by the
// caller. Coefficient design lives in dsp/filter/design.
package biquad
