package synth

import "github.com/cwbudde/algo-synth/dsp/core"

const (
	// MaxVoices is the capacity of the voice arena.
	MaxVoices = 16

	// silenceThreshold is the amp envelope level below which a released
	// voice returns to idle.
	silenceThreshold = 1e-4
)

func clampPolyphony(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxVoices {
		return MaxVoices
	}

	return n
}

// ensure builds units for slots [allocated, n). Allocation never shrinks.
func (e *Engine) ensure(n int) error {
	n = clampPolyphony(n)

	for i := e.allocated; i < n; i++ {
		if err := e.voiceUnits(&e.voices[i]); err != nil {
			return err
		}
		e.allocated = i + 1
	}

	return nil
}

// allocate returns the first free slot below the polyphony limit, or steals
// the round-robin slot regardless of its envelope state.
func (e *Engine) allocate() int {
	n := e.params.Polyphony

	for i := range n {
		v := &e.voices[i]
		if !v.active && v.gate <= 0 {
			return i
		}
	}

	idx := e.rr % n
	e.rr = (idx + 1) % n

	return idx
}

// startNote assigns a note to slot idx and retriggers its envelopes.
func (e *Engine) startNote(idx, midi int, velocity float64) {
	v := &e.voices[idx]
	hz := core.MIDIToHz(float64(midi))

	if !core.IsFinite(velocity) {
		velocity = 0
	}

	v.baseHz = hz
	v.midi = midi
	v.velocity = core.Clamp(velocity, 0, 1)

	for s := range v.gen {
		v.gen[s].wave.SetFrequency(hz)
		v.gen[s].fm.SetFrequency(hz)
	}

	setEnvelope(v.ampEnv, e.params.AmpEnv)
	setEnvelope(v.filterEnv, e.params.FilterEnv)
	v.ampEnv.Retrigger()
	v.filterEnv.Retrigger()

	v.gate = 1
	v.active = true
}

// releaseIfSilent returns a released voice to idle once its amp envelope
// has decayed below the silence threshold.
func releaseIfSilent(v *voice, env float64) {
	if v.gate <= 0 && env < silenceThreshold {
		v.idle()
	}
}
