package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
	"github.com/cwbudde/algo-synth/measure/harmonics"
)

func TestSquareSlotTableOddHarmonics(t *testing.T) {
	e := newEngine(t, 48000)
	e.SetWaveform(Osc1, WaveSquare)

	res, err := harmonics.AnalyzeCycle(e.tables[Osc1].Samples(), 80)
	if err != nil {
		t.Fatalf("AnalyzeCycle: %v", err)
	}

	for n := 1; n <= 80; n++ {
		want := 0.0
		if n%2 == 1 && n <= 63 {
			want = 1 / float64(n)
		}

		if got := res.Ratio(n); math.Abs(got-want) > 1e-3 {
			t.Fatalf("harmonic %d ratio = %.5f, want %.5f", n, got, want)
		}
	}

	if res.EvenSum > 1e-12 {
		t.Fatalf("EvenSum = %g, want ~0", res.EvenSum)
	}
}

func TestSlotTablesFollowWaveform(t *testing.T) {
	e := newEngine(t, 48000)

	e.SetWaveform(Osc2, WaveSawtooth)
	saw, err := harmonics.AnalyzeCycle(e.tables[Osc2].Samples(), 8)
	if err != nil {
		t.Fatalf("AnalyzeCycle: %v", err)
	}
	if math.Abs(saw.Ratio(2)-0.5) > 1e-3 {
		t.Fatalf("saw H2 ratio = %v, want 0.5", saw.Ratio(2))
	}

	e.SetWaveform(Osc2, WaveSine)
	sine, err := harmonics.AnalyzeCycle(e.tables[Osc2].Samples(), 8)
	if err != nil {
		t.Fatalf("AnalyzeCycle: %v", err)
	}
	if sine.THD > 1e-9 {
		t.Fatalf("sine THD = %g after switching back", sine.THD)
	}
}

func TestRenderedSineIsNearlyPure(t *testing.T) {
	const sr = 48000.0

	e := newEngine(t, sr)
	e.NoteOn(69, 1)

	// Skip past both envelope attacks and the filter envelope decay.
	e.Render(make([]float32, 24000))

	block := make([]float32, 4800)
	e.Render(block)

	res, err := harmonics.AnalyzeBlock(testutil.ToFloat64(block), sr, 440, 8)
	if err != nil {
		t.Fatalf("AnalyzeBlock: %v", err)
	}

	if res.Fundamental() < 0.05 {
		t.Fatalf("fundamental = %v, want a sounding 440 Hz partial", res.Fundamental())
	}
	if res.THD > 0.05 {
		t.Fatalf("THD = %v, want < 0.05 for a filtered sine voice", res.THD)
	}
}
