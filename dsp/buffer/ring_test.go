package buffer

import (
	"sync"
	"testing"
)

func TestNewRingInvalid(t *testing.T) {
	if _, err := NewRing(0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestRingWrapAround(t *testing.T) {
	r, err := NewRing(5)
	if err != nil {
		t.Fatal(err)
	}

	if n := r.Write([]float32{1, 2, 3, 4}); n != 4 {
		t.Fatalf("Write = %d, want 4", n)
	}

	out := make([]float32, 3)
	if n := r.Read(out); n != 3 {
		t.Fatalf("Read = %d, want 3", n)
	}

	if n := r.Write([]float32{5, 6, 7, 8, 9}); n != 4 {
		t.Fatalf("Write into partly full ring = %d, want 4", n)
	}
	if r.Free() != 0 || r.Len() != 5 {
		t.Fatalf("Len=%d Free=%d, want 5/0", r.Len(), r.Free())
	}
	if n := r.Write([]float32{10}); n != 0 {
		t.Fatalf("Write into full ring = %d, want 0", n)
	}

	got := make([]float32, 8)
	n := r.Read(got)
	want := []float32{4, 5, 6, 7, 8}
	if n != len(want) {
		t.Fatalf("Read = %d, want %d", n, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := r.Read(got); n != 0 {
		t.Fatalf("Read from empty ring = %d", n)
	}
}

func TestRingSPSCOrdering(t *testing.T) {
	const total = 200000

	r, _ := NewRing(777)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		chunk := make([]float32, 113)
		next := 0
		for next < total {
			n := min(len(chunk), total-next)
			for i := range n {
				chunk[i] = float32(next + i)
			}
			next += r.Write(chunk[:n])
		}
	}()

	buf := make([]float32, 61)
	expect := 0
	for expect < total {
		n := r.Read(buf)
		for i := range n {
			if buf[i] != float32(expect) {
				t.Fatalf("sample %d = %v", expect, buf[i])
			}
			expect++
		}
	}

	wg.Wait()
}
