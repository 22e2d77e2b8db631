package synth

import (
	"fmt"
	"math"
)

// Destination is the parameter the master LFO modulates. The numeric values
// match the control-surface ids.
type Destination int

const (
	DestPitch     Destination = iota // semitones
	DestCutoff                       // Hz
	DestMasterAmp                    // linear gain
	DestResonance                    // 0..1 resonance units
	DestOsc1Gain                     // linear gain
	DestOsc2Gain                     // linear gain
	DestFM1Index                     // FM index
	DestFM2Index                     // FM index
)

func (d Destination) String() string {
	switch d {
	case DestPitch:
		return "pitch"
	case DestCutoff:
		return "cutoff"
	case DestMasterAmp:
		return "master_amp"
	case DestResonance:
		return "resonance"
	case DestOsc1Gain:
		return "osc1_gain"
	case DestOsc2Gain:
		return "osc2_gain"
	case DestFM1Index:
		return "fm1_index"
	case DestFM2Index:
		return "fm2_index"
	default:
		return fmt.Sprintf("Destination(%d)", int(d))
	}
}

// clampDestination pins out-of-range ids to the nearest valid destination.
func clampDestination(d Destination) Destination {
	if d < DestPitch {
		return DestPitch
	}
	if d > DestFM2Index {
		return DestFM2Index
	}

	return d
}

// Route sends the LFO to one destination scaled by Amount.
type Route struct {
	Destination Destination
	Amount      float64
}

// Modulation is the per-frame router output shared by every voice.
// Offsets of unrouted destinations are zero and PitchMul is 1.
type Modulation struct {
	PitchMul  float64
	CutoffHz  float64
	MasterAmp float64
	Resonance float64
	Gain      [2]float64
	FMIndex   [2]float64
}

// Modulate evaluates the route for one LFO sample in [-1, 1].
func (r Route) Modulate(lfo float64) Modulation {
	m := Modulation{PitchMul: 1}
	v := lfo * r.Amount

	switch r.Destination {
	case DestPitch:
		if v != 0 {
			m.PitchMul = math.Exp2(v / 12)
		}
	case DestCutoff:
		m.CutoffHz = v
	case DestMasterAmp:
		m.MasterAmp = v
	case DestResonance:
		m.Resonance = v
	case DestOsc1Gain:
		m.Gain[Osc1] = v
	case DestOsc2Gain:
		m.Gain[Osc2] = v
	case DestFM1Index:
		m.FMIndex[Osc1] = v
	case DestFM2Index:
		m.FMIndex[Osc2] = v
	}

	return m
}
