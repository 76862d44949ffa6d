package spectrum

import (
	"math"
	"testing"
)

func TestBands_Invalid(t *testing.T) {
	if _, err := Bands(make([]float32, 8), 0); err == nil {
		t.Fatal("expected error for zero bands")
	}
	if _, err := Bands(make([]float32, 1), 4); err == nil {
		t.Fatal("expected error for single bin")
	}
}

func TestBands_AverageAndCoverage(t *testing.T) {
	power := make([]float32, 256)
	for i := range power {
		power[i] = 2
	}
	power[0] = 1000 // DC is skipped

	bands, err := Bands(power, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 8 {
		t.Fatalf("len = %d, want 8", len(bands))
	}
	for j, v := range bands {
		if math.Abs(v-2) > 1e-12 {
			t.Fatalf("band %d = %v, want 2", j, v)
		}
	}
}

func TestBands_LowBandsFollowLowBins(t *testing.T) {
	power := make([]float32, 512)
	power[3] = 100

	bands, err := Bands(power, 16)
	if err != nil {
		t.Fatal(err)
	}

	best := 0
	for j := range bands {
		if bands[j] > bands[best] {
			best = j
		}
	}
	if best > 4 {
		t.Fatalf("energy at bin 3 landed in band %d of 16", best)
	}
	if bands[len(bands)-1] != 0 {
		t.Fatalf("top band = %v, want 0", bands[len(bands)-1])
	}
}

func TestBands_MoreBandsThanBins(t *testing.T) {
	power := []float32{0, 1, 2, 3}

	bands, err := Bands(power, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 10 {
		t.Fatalf("len = %d", len(bands))
	}

	sum := 0.0
	for _, v := range bands {
		sum += v
	}
	if sum != 6 {
		t.Fatalf("sum of bands = %v, want 6 (each bin exactly once)", sum)
	}
}
