package synth

import (
	"math"
	"testing"
)

func TestModulateRoutesOnlySelectedDestination(t *testing.T) {
	const lfo, amount = 0.5, 3.0

	for d := DestPitch; d <= DestFM2Index; d++ {
		t.Run(d.String(), func(t *testing.T) {
			m := Route{Destination: d, Amount: amount}.Modulate(lfo)
			want := Modulation{PitchMul: 1}

			v := lfo * amount
			switch d {
			case DestPitch:
				want.PitchMul = math.Exp2(v / 12)
			case DestCutoff:
				want.CutoffHz = v
			case DestMasterAmp:
				want.MasterAmp = v
			case DestResonance:
				want.Resonance = v
			case DestOsc1Gain:
				want.Gain[Osc1] = v
			case DestOsc2Gain:
				want.Gain[Osc2] = v
			case DestFM1Index:
				want.FMIndex[Osc1] = v
			case DestFM2Index:
				want.FMIndex[Osc2] = v
			}

			if m != want {
				t.Fatalf("Modulate() = %+v, want %+v", m, want)
			}
		})
	}
}

func TestModulateZeroAmountIsNeutral(t *testing.T) {
	for d := DestPitch; d <= DestFM2Index; d++ {
		if m := (Route{Destination: d}).Modulate(1); m != (Modulation{PitchMul: 1}) {
			t.Fatalf("%v: Modulate() = %+v, want neutral", d, m)
		}
	}
}

func TestPitchRouteOctaveBounds(t *testing.T) {
	r := Route{Destination: DestPitch, Amount: 12}

	if got := r.Modulate(1).PitchMul; math.Abs(got-2) > 1e-12 {
		t.Fatalf("PitchMul(+1) = %v, want 2", got)
	}
	if got := r.Modulate(-1).PitchMul; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("PitchMul(-1) = %v, want 0.5", got)
	}
}

func TestClampDestination(t *testing.T) {
	tests := []struct {
		in, want Destination
	}{
		{in: -3, want: DestPitch},
		{in: DestResonance, want: DestResonance},
		{in: 8, want: DestFM2Index},
		{in: 42, want: DestFM2Index},
	}

	for _, tc := range tests {
		if got := clampDestination(tc.in); got != tc.want {
			t.Errorf("clampDestination(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestStringers(t *testing.T) {
	if s := DestOsc2Gain.String(); s != "osc2_gain" {
		t.Errorf("DestOsc2Gain.String() = %q", s)
	}
	if s := Destination(11).String(); s != "Destination(11)" {
		t.Errorf("Destination(11).String() = %q", s)
	}
	if s := WaveFM.String(); s != "fm" {
		t.Errorf("WaveFM.String() = %q", s)
	}
	if s := Waveform(-2).String(); s != "Waveform(-2)" {
		t.Errorf("Waveform(-2).String() = %q", s)
	}
}
