package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestToFloat64(t *testing.T) {
	got := ToFloat64([]float32{0.5, -0.25, 1})
	want := []float64{0.5, -0.25, 1}
	RequireSliceNearlyEqual(t, got, want, 0)
}

func TestPeakAndEnergy(t *testing.T) {
	x := []float32{0.5, -0.75, 0.25}
	if p := Peak(x); p != 0.75 {
		t.Fatalf("Peak = %v, want 0.75", p)
	}
	RequireNear(t, "Energy", Energy(x), 0.25+0.5625+0.0625, 1e-12)
	if Peak(nil) != 0 || Energy(nil) != 0 {
		t.Fatal("empty input should give zero peak and energy")
	}
}

func TestRisingZeroCrossings(t *testing.T) {
	s := DeterministicSine(100, 8000, 1, 8000)
	if n := RisingZeroCrossings(s); n < 99 || n > 100 {
		t.Fatalf("crossings = %d, want ~100", n)
	}
}
