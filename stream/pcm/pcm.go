// Package pcm converts between the pipeline's float32 samples and the
// integer and byte encodings used by audio devices and decoders.
package pcm

import (
	"encoding/binary"
	"math"
)

const int16Scale = 32768

// Int16ToFloat32 converts src into dst, scaling to [-1, 1). It returns the
// number of samples converted.
func Int16ToFloat32(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i]) / int16Scale
	}
	return n
}

// Float32ToInt16 converts src into dst, clipping to the int16 range.
// Non-finite samples become 0.
func Float32ToInt16(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = toInt16(src[i])
	}
	return n
}

func toInt16(x float32) int16 {
	v := float64(x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	v = math.Round(v * int16Scale)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// DecodeInt16LE decodes little-endian 16-bit samples from b into dst. A
// trailing odd byte is ignored.
func DecodeInt16LE(dst []float32, b []byte) int {
	n := min(len(dst), len(b)/2)
	for i := range n {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(b[2*i:]))) / int16Scale
	}
	return n
}

// EncodeFloat32LE writes src into b as little-endian IEEE-754 floats and
// returns the number of samples written.
func EncodeFloat32LE(b []byte, src []float32) int {
	n := min(len(b)/4, len(src))
	for i := range n {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(src[i]))
	}
	return n
}
