package synth

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

// Waveform selects the tone generator of an oscillator slot. The numeric
// values match the control-surface ids.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSawtooth
	WaveSquare
	WaveTriangle
	WaveFM
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	case WaveTriangle:
		return "triangle"
	case WaveFM:
		return "fm"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// sanitize maps unknown ids to WaveSine.
func (w Waveform) sanitize() Waveform {
	if w < WaveSine || w > WaveFM {
		return WaveSine
	}

	return w
}

// tableShape returns the wavetable content used by w. FM slots keep a sine.
func (w Waveform) tableShape() wavetable.Waveform {
	switch w {
	case WaveSawtooth:
		return wavetable.Sawtooth
	case WaveSquare:
		return wavetable.Square
	case WaveTriangle:
		return wavetable.Triangle
	default:
		return wavetable.Sine
	}
}

// Slot identifies one of the two oscillator slots of a voice.
type Slot int

const (
	Osc1 Slot = iota
	Osc2
)

func (s Slot) valid() bool { return s == Osc1 || s == Osc2 }

// EnvelopeParams holds ADSR times in seconds and a sustain level in [0, 1].
type EnvelopeParams struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// FMParams holds the carrier and modulator frequency ratios and the
// modulation index of an FM slot.
type FMParams struct {
	Carrier   float64
	Modulator float64
	Index     float64
}

// OscParams holds the per-slot oscillator settings.
type OscParams struct {
	Waveform Waveform
	Detune   float64 // semitones
	Gain     float64
	FM       FMParams
}

// Params is the engine-wide parameter store.
type Params struct {
	MasterAmp float64
	Polyphony int

	AmpEnv EnvelopeParams

	FilterCutoffHz  float64
	FilterResonance float64
	FilterEnv       EnvelopeParams
	FilterEnvAmount float64 // Hz added to the cutoff at full envelope

	LFORateHz float64
	Route     Route

	Osc [2]OscParams
}

// DefaultParams returns the power-on patch.
func DefaultParams() Params {
	osc := OscParams{
		Waveform: WaveSine,
		Gain:     0.5,
		FM:       FMParams{Carrier: 1, Modulator: 1, Index: 2},
	}

	return Params{
		MasterAmp:       0.4,
		Polyphony:       8,
		AmpEnv:          EnvelopeParams{Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: 0.2},
		FilterCutoffHz:  1200,
		FilterResonance: 0.3,
		FilterEnv:       EnvelopeParams{Attack: 0.005, Decay: 0.15, Sustain: 0, Release: 0.25},
		FilterEnvAmount: 2000,
		LFORateHz:       5,
		Route:           Route{Destination: DestPitch},
		Osc:             [2]OscParams{osc, osc},
	}
}
