package audioout

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSourceReaderEncodesFloat32LE(t *testing.T) {
	calls := 0
	r := &sourceReader{src: SourceFunc(func(dst []float32) {
		calls++
		for i := range dst {
			dst[i] = float32(i) - 1.5
		}
	})}

	p := make([]byte, 4*4+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
	if calls != 1 {
		t.Fatalf("source called %d times, want 1", calls)
	}

	for i := range 4 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		if want := float32(i) - 1.5; got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestSourceReaderClearsScratch(t *testing.T) {
	first := true
	r := &sourceReader{src: SourceFunc(func(dst []float32) {
		if first {
			for i := range dst {
				dst[i] = 1
			}
			first = false
		}
	})}

	p := make([]byte, 32)
	r.Read(p)
	r.Read(p)

	for i := range 8 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:])); v != 0 {
			t.Fatalf("sample %d = %v, want 0 from a source that wrote nothing", i, v)
		}
	}
}

func TestNewPlayerRejectsBadRate(t *testing.T) {
	if _, err := NewPlayer(SourceFunc(func([]float32) {}), 0, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
