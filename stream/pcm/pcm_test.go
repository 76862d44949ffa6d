package pcm

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestInt16ToFloat32(t *testing.T) {
	dst := make([]float32, 4)
	n := Int16ToFloat32(dst, []int16{0, 16384, -32768, 32767})
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}

	want := []float32{0, 0.5, -1, 32767.0 / 32768}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFloat32ToInt16Clips(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{in: 0, want: 0},
		{in: 0.5, want: 16384},
		{in: -1, want: -32768},
		{in: 1, want: 32767},
		{in: 3, want: 32767},
		{in: -7, want: -32768},
		{in: float32(math.NaN()), want: 0},
		{in: float32(math.Inf(1)), want: 0},
		{in: float32(math.Inf(-1)), want: 0},
	}

	for _, tt := range tests {
		dst := make([]int16, 1)
		Float32ToInt16(dst, []float32{tt.in})
		if dst[0] != tt.want {
			t.Fatalf("Float32ToInt16(%v) = %d, want %d", tt.in, dst[0], tt.want)
		}
	}
}

func TestDecodeInt16LE(t *testing.T) {
	b := make([]byte, 7)
	binary.LittleEndian.PutUint16(b[0:], uint16(16384))
	v := int16(-16384)
	binary.LittleEndian.PutUint16(b[2:], uint16(v))
	binary.LittleEndian.PutUint16(b[4:], 0)

	dst := make([]float32, 8)
	n := DecodeInt16LE(dst, b)
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if dst[0] != 0.5 || dst[1] != -0.5 || dst[2] != 0 {
		t.Fatalf("decoded %v", dst[:3])
	}

	short := make([]float32, 1)
	if DecodeInt16LE(short, b) != 1 {
		t.Fatal("dst length not respected")
	}
}

func TestEncodeFloat32LE(t *testing.T) {
	src := []float32{0.25, -1.5, 3}
	b := make([]byte, 10)

	n := EncodeFloat32LE(b, src)
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	for i := range n {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		if got != src[i] {
			t.Fatalf("sample %d = %v, want %v", i, got, src[i])
		}
	}
}

func TestRoundTripInt16(t *testing.T) {
	src := []int16{-32768, -1234, 0, 1, 4321, 32767}
	f := make([]float32, len(src))
	back := make([]int16, len(src))

	Int16ToFloat32(f, src)
	Float32ToInt16(back, f)

	for i := range src {
		if back[i] != src[i] {
			t.Fatalf("sample %d: %d -> %d", i, src[i], back[i])
		}
	}
}
