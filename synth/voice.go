package synth

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/filter/moog"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

// generator holds both tone sources of a slot. The slot waveform decides
// which one runs; switching between them keeps each unit's state.
type generator struct {
	wave *osc.Oscillator
	fm   *osc.FM
}

func (g *generator) frequency(w Waveform) float64 {
	if w == WaveFM {
		return g.fm.Frequency()
	}

	return g.wave.Frequency()
}

// voice is one arena slot. Units are nil until the slot is first allocated
// by ensure and are never shared between slots.
type voice struct {
	midi     int
	baseHz   float64
	velocity float64
	gate     float64
	active   bool
	lastEnv  float64

	gen       [2]generator
	ampEnv    *envelope.ADSR
	filterEnv *envelope.ADSR
	filter    *moog.Filter
}

func (v *voice) built() bool { return v.ampEnv != nil }

// idle puts the slot back in the unassigned state.
func (v *voice) idle() {
	v.active = false
	v.midi = -1
	v.velocity = 0
}

// VoiceState is a read-only snapshot of one voice slot.
type VoiceState struct {
	Index    int
	MIDI     int
	BaseHz   float64
	Velocity float64
	Gate     float64
	Active   bool

	// SlotHz is the playback frequency last used by each oscillator slot.
	SlotHz [2]float64
	// CutoffHz is the effective filter cutoff of the last rendered frame.
	CutoffHz float64
	// Envelope is the last amplitude envelope value.
	Envelope float64
}

// voiceUnits builds the DSP units for one slot.
func (e *Engine) voiceUnits(v *voice) error {
	p := &e.params

	for s := range v.gen {
		wave, err := osc.New(e.sampleRate, e.tables[s], 0)
		if err != nil {
			return fmt.Errorf("synth: oscillator %d: %w", s+1, err)
		}

		fm, err := osc.NewFM(e.sampleRate, e.sine)
		if err != nil {
			return fmt.Errorf("synth: fm oscillator %d: %w", s+1, err)
		}
		fm.SetRatios(p.Osc[s].FM.Carrier, p.Osc[s].FM.Modulator)
		fm.SetIndex(p.Osc[s].FM.Index)

		v.gen[s] = generator{wave: wave, fm: fm}
	}

	ampEnv, err := envelope.New(e.sampleRate)
	if err != nil {
		return fmt.Errorf("synth: amp envelope: %w", err)
	}
	setEnvelope(ampEnv, p.AmpEnv)

	filterEnv, err := envelope.New(e.sampleRate)
	if err != nil {
		return fmt.Errorf("synth: filter envelope: %w", err)
	}
	setEnvelope(filterEnv, p.FilterEnv)

	filter, err := moog.New(e.sampleRate, moog.WithVariant(e.filterVariant))
	if err != nil {
		return fmt.Errorf("synth: filter: %w", err)
	}
	filter.Tune(e.cutoff(p.FilterCutoffHz), ladderResonance(p.FilterResonance))

	v.ampEnv = ampEnv
	v.filterEnv = filterEnv
	v.filter = filter

	return nil
}

// replaceWave swaps the wavetable oscillator of slot s for a fresh one on the
// slot table, keeping amplitude and frequency.
func (e *Engine) replaceWave(v *voice, s Slot) error {
	old := v.gen[s].wave

	wave, err := osc.New(e.sampleRate, e.tables[s], 0)
	if err != nil {
		return fmt.Errorf("synth: oscillator %d: %w", s+1, err)
	}
	wave.SetAmplitude(old.Amplitude())
	wave.SetFrequency(old.Frequency())

	v.gen[s].wave = wave

	return nil
}

func newTable(size int, w Waveform) (*wavetable.Table, error) {
	t, err := wavetable.New(size)
	if err != nil {
		return nil, err
	}

	if err := t.Fill(w.tableShape()); err != nil {
		return nil, err
	}

	return t, nil
}

func setEnvelope(env *envelope.ADSR, p EnvelopeParams) {
	env.SetADSR(p.Attack, p.Decay, p.Sustain, p.Release)
}
