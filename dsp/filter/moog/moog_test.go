package moog

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/core"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}

	if _, err := New(48000, WithCutoffHz(24000)); err == nil {
		t.Fatal("expected error for cutoff at Nyquist")
	}

	if _, err := New(48000, WithCutoffHz(0.5)); err == nil {
		t.Fatal("expected error for cutoff below 1 Hz")
	}

	if _, err := New(48000, WithResonance(5)); err == nil {
		t.Fatal("expected error for resonance out of range")
	}

	if _, err := New(48000, WithVariant(Variant(7))); err == nil {
		t.Fatal("expected error for invalid variant")
	}

	if _, err := New(48000, WithDrive(math.NaN())); err == nil {
		t.Fatal("expected error for NaN drive")
	}

	if _, err := New(48000, WithThermalVoltage(20)); err == nil {
		t.Fatal("expected error for thermal voltage out of range")
	}
}

func TestSettersValidate(t *testing.T) {
	f, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := f.SetCutoffHz(30000); err == nil {
		t.Fatal("expected error for cutoff above limit")
	}

	if err := f.SetResonance(-1); err == nil {
		t.Fatal("expected error for negative resonance")
	}

	if err := f.SetVariant(Variant(-1)); err == nil {
		t.Fatal("expected error for invalid variant")
	}

	if f.CutoffHz() != defaultCutoffHz || f.Resonance() != defaultResonance {
		t.Fatalf("failed setters changed state: cutoff=%g res=%g", f.CutoffHz(), f.Resonance())
	}
}

func TestProcessInPlaceMatchesSample(t *testing.T) {
	for _, variant := range []Variant{VariantClassic, VariantClassicLightweight, VariantHuovilainen} {
		t.Run(variant.String(), func(t *testing.T) {
			f1, err := New(48000, WithVariant(variant), WithCutoffHz(2400), WithResonance(1.1), WithDrive(2.5))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			f2, err := New(48000, WithVariant(variant), WithCutoffHz(2400), WithResonance(1.1), WithDrive(2.5))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			in := make([]float64, 384)
			for i := range in {
				in[i] = 0.65*math.Sin(2*math.Pi*float64(i)/47) + 0.12*math.Sin(2*math.Pi*float64(i)/11)
			}

			want := make([]float64, len(in))
			for i, x := range in {
				want[i] = f1.ProcessSample(x)
			}

			got := append([]float64(nil), in...)
			f2.ProcessInPlace(got)

			for i := range got {
				if d := math.Abs(got[i] - want[i]); d > 1e-12 {
					t.Fatalf("sample %d mismatch: got=%g want=%g", i, got[i], want[i])
				}
			}
		})
	}
}

func TestUnityDCGainWithoutResonance(t *testing.T) {
	for _, variant := range []Variant{VariantClassic, VariantHuovilainen} {
		f, err := New(48000, WithVariant(variant), WithCutoffHz(2000), WithResonance(0))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		var y float64
		for range 4800 {
			y = f.ProcessSample(0.25)
		}

		if math.Abs(y-0.25) > 1e-6 {
			t.Fatalf("%s: DC output = %g, want 0.25", variant, y)
		}
	}
}

func TestNormalizeOutputCompensatesResonance(t *testing.T) {
	plain, err := New(48000, WithCutoffHz(1000), WithResonance(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	norm, err := New(48000, WithCutoffHz(1000), WithResonance(2), WithNormalizeOutput(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var a, b float64
	for range 9600 {
		a = plain.ProcessSample(0.2)
		b = norm.ProcessSample(0.2)
	}

	if math.Abs(b-2*a) > 1e-9 {
		t.Fatalf("normalized DC = %g, want 2*%g", b, a)
	}
}

func TestCutoffTrackingSampleRateGrid(t *testing.T) {
	sampleRates := []float64{44100, 48000, 96000}
	cutoffs := []float64{300, 1200, 4000}

	for _, sr := range sampleRates {
		for _, cutoff := range cutoffs {
			f, err := New(sr,
				WithVariant(VariantHuovilainen),
				WithCutoffHz(cutoff),
				WithResonance(0),
				WithDrive(0.5),
			)
			if err != nil {
				t.Fatalf("New(sr=%g, cutoff=%g) error = %v", sr, cutoff, err)
			}

			passFreq := cutoff * 0.5
			stopFreq := cutoff * 4

			nyquist := sr * 0.5
			if stopFreq >= nyquist*0.95 {
				stopFreq = nyquist * 0.95
			}

			passRMS := steadyToneRMS(f, sr, passFreq, 4096, 1024)
			f.Reset()
			stopRMS := steadyToneRMS(f, sr, stopFreq, 4096, 1024)

			if passRMS <= stopRMS*1.2 {
				t.Fatalf(
					"cutoff tracking failed for sr=%g cutoff=%g: pass(%.1f Hz)=%.6f stop(%.1f Hz)=%.6f",
					sr, cutoff, passFreq, passRMS, stopFreq, stopRMS,
				)
			}
		}
	}
}

func TestDriveSweepIncreasesHarmonics(t *testing.T) {
	const (
		sr = 48000.0
		n  = 4096
		k0 = 220
	)

	lowDrive, err := New(sr, WithVariant(VariantClassic), WithCutoffHz(16000), WithResonance(0), WithDrive(0.6))
	if err != nil {
		t.Fatalf("New(lowDrive) error = %v", err)
	}

	highDrive, err := New(sr, WithVariant(VariantClassic), WithCutoffHz(16000), WithResonance(0), WithDrive(7.0))
	if err != nil {
		t.Fatalf("New(highDrive) error = %v", err)
	}

	outLow := make([]float64, n)
	outHigh := make([]float64, n)

	for i := range n {
		x := 0.8 * math.Sin(2*math.Pi*float64(k0)*float64(i)/n)
		outLow[i] = lowDrive.ProcessSample(x)
		outHigh[i] = highDrive.ProcessSample(x)
	}

	spurLow := spurRatio(outLow, k0)
	spurHigh := spurRatio(outHigh, k0)

	if spurHigh <= spurLow*1.3 {
		t.Fatalf("expected harmonic growth with drive: low=%g high=%g", spurLow, spurHigh)
	}
}

func TestSaturationSymmetry(t *testing.T) {
	f, err := New(48000, WithVariant(VariantClassic), WithCutoffHz(16000), WithResonance(0), WithDrive(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, x := range []float64{0.1, 0.25, 0.5, 0.8, 1.0} {
		f.Reset()
		pos := f.ProcessSample(x)

		f.Reset()
		neg := f.ProcessSample(-x)

		if d := math.Abs(pos + neg); d > 1e-12 {
			t.Fatalf("symmetry mismatch for x=%g: pos=%g neg=%g", x, pos, neg)
		}
	}
}

func TestHighResonanceSustainsLongerTail(t *testing.T) {
	const (
		sr      = 48000.0
		cutoff  = 900.0
		samples = 4096
	)

	lowRes, err := New(sr, WithCutoffHz(cutoff), WithResonance(0.5))
	if err != nil {
		t.Fatalf("New(lowRes) error = %v", err)
	}

	highRes, err := New(sr, WithCutoffHz(cutoff), WithResonance(3.6))
	if err != nil {
		t.Fatalf("New(highRes) error = %v", err)
	}

	lowTail := impulseTailEnergy(lowRes, samples)
	highTail := impulseTailEnergy(highRes, samples)

	if highTail <= lowTail*4 {
		t.Fatalf("expected longer tail at high resonance: low=%g high=%g", lowTail, highTail)
	}
}

func TestTuneClamps(t *testing.T) {
	const sr = 44100.0

	f, err := New(sr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f.Tune(1e6, 9)
	if f.CutoffHz() != f.MaxCutoffHz() {
		t.Fatalf("CutoffHz() = %g, want %g", f.CutoffHz(), f.MaxCutoffHz())
	}
	if f.CutoffHz() >= sr/2 {
		t.Fatalf("CutoffHz() = %g must stay below Nyquist", f.CutoffHz())
	}
	if f.Resonance() != maxResonance {
		t.Fatalf("Resonance() = %g, want %g", f.Resonance(), maxResonance)
	}

	f.Tune(-50, -1)
	if f.CutoffHz() != minCutoffHz || f.Resonance() != 0 {
		t.Fatalf("after low Tune cutoff=%g res=%g", f.CutoffHz(), f.Resonance())
	}

	f.Tune(500, 1)
	f.Tune(math.NaN(), math.Inf(1))
	if f.CutoffHz() != 500 || f.Resonance() != 1 {
		t.Fatalf("non-finite Tune changed cutoff=%g res=%g", f.CutoffHz(), f.Resonance())
	}
}

func TestTuneMatchesSetters(t *testing.T) {
	tuned, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	set, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tuned.Tune(3100, 2.2)
	if err := set.SetCutoffHz(3100); err != nil {
		t.Fatalf("SetCutoffHz() error = %v", err)
	}
	if err := set.SetResonance(2.2); err != nil {
		t.Fatalf("SetResonance() error = %v", err)
	}

	for i := range 256 {
		x := math.Sin(2 * math.Pi * float64(i) / 23)
		if a, b := tuned.ProcessSample(x), set.ProcessSample(x); a != b {
			t.Fatalf("sample %d: %g != %g", i, a, b)
		}
	}
}

func TestRapidAutomationStaysFinite(t *testing.T) {
	f, err := New(48000, WithCutoffHz(1000), WithResonance(1.0), WithDrive(2.5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range 3000 {
		cutoff := 100 + 18000*(0.5+0.5*math.Sin(2*math.Pi*float64(i)/211))
		res := 0.2 + 3.8*(0.5+0.5*math.Sin(2*math.Pi*float64(i)/137))
		f.Tune(cutoff, res)

		x := 0.7*math.Sin(2*math.Pi*float64(i)/37) + 0.1*math.Sin(2*math.Pi*float64(i)/5)

		if y := f.ProcessSample(x); !core.IsFinite(y) {
			t.Fatalf("non-finite sample at %d: %v", i, y)
		}
	}
}

func TestNonFiniteInputIsSilenced(t *testing.T) {
	f, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if y := f.ProcessSample(math.NaN()); y != 0 {
		t.Fatalf("ProcessSample(NaN) = %g, want 0", y)
	}
}

func TestProcessSampleAllocationFree(t *testing.T) {
	f, err := New(48000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	i := 0
	allocs := testing.AllocsPerRun(200, func() {
		f.Tune(500+float64(i%100), 0.5)
		_ = f.ProcessSample(0.3)
		i++
	})
	if allocs != 0 {
		t.Fatalf("allocations = %v, want 0", allocs)
	}
}

func impulseTailEnergy(f *Filter, n int) float64 {
	var sum float64

	for i := range n {
		x := 0.0
		if i == 0 {
			x = 1
		}

		y := f.ProcessSample(x)
		if !core.IsFinite(y) {
			return math.Inf(1)
		}

		if i >= n/4 {
			sum += y * y
		}
	}

	return sum
}

func spurRatio(x []float64, fundamentalBin int) float64 {
	fund := dftBinEnergy(x, fundamentalBin)
	if fund <= 0 {
		return math.Inf(1)
	}

	spur := 0.0

	for k := 1; k <= len(x)/2; k++ {
		if k == fundamentalBin {
			continue
		}

		spur += dftBinEnergy(x, k)
	}

	return spur / fund
}

func dftBinEnergy(x []float64, k int) float64 {
	n := float64(len(x))

	var re, im float64

	for i := range x {
		phase := 2 * math.Pi * float64(k) * float64(i) / n
		re += x[i] * math.Cos(phase)
		im -= x[i] * math.Sin(phase)
	}

	return re*re + im*im
}

func steadyToneRMS(f *Filter, sampleRate, freq float64, n, warmup int) float64 {
	var sum float64

	for i := range n {
		x := 0.7 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)

		y := f.ProcessSample(x)
		if i >= warmup {
			sum += y * y
		}
	}

	return math.Sqrt(sum / float64(n-warmup))
}
