package synth

import (
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// NoteOn starts midi at velocity (clamped to [0, 1]) on a free or stolen
// voice and returns its slot index, or -1 when the engine is uninitialized.
func (e *Engine) NoteOn(midi int, velocity float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return -1
	}

	idx := e.allocate()
	e.startNote(idx, midi, velocity)

	return idx
}

// NoteOffMIDI releases every active voice holding midi.
func (e *Engine) NoteOffMIDI(midi int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.params.Polyphony {
		if v := &e.voices[i]; v.active && v.midi == midi {
			v.gate = 0
		}
	}
}

// NoteOff releases every active voice.
func (e *Engine) NoteOff() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.params.Polyphony {
		if v := &e.voices[i]; v.active {
			v.gate = 0
		}
	}
}

// SetAmp sets the master amplitude. Render clamps the modulated value to [0, 2].
func (e *Engine) SetAmp(amp float64) {
	if !core.IsFinite(amp) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.MasterAmp = amp
}

// SetFreq retunes the base frequency of every allocated voice. It is kept
// for hosts that drive a single tone without note numbers.
func (e *Engine) SetFreq(hz float64) {
	if !core.IsFinite(hz) || hz < 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.allocated {
		v := &e.voices[i]
		v.baseHz = hz
		for s := range v.gen {
			v.gen[s].wave.SetFrequency(hz)
			v.gen[s].fm.SetFrequency(hz)
		}
	}
}

// SetEnv sets the amplitude envelope and pushes it to allocated voices.
func (e *Engine) SetEnv(attack, decay, sustain, release float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.AmpEnv = EnvelopeParams{Attack: attack, Decay: decay, Sustain: sustain, Release: release}
	for i := range e.allocated {
		setEnvelope(e.voices[i].ampEnv, e.params.AmpEnv)
	}
}

// SetPoly sets the number of voices considered by allocation and rendering,
// clamped to [1, MaxVoices]. Units for new slots are built immediately.
func (e *Engine) SetPoly(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n = clampPolyphony(n)
	e.params.Polyphony = n
	e.rr %= n

	if !e.initialized || n <= e.allocated {
		return
	}

	before := e.allocated
	if err := e.ensure(n); err != nil {
		e.logger.Error("synth: grow polyphony", "polyphony", n, "error", err)
		e.params.Polyphony = max(e.allocated, 1)
		e.rr = 0
		return
	}
	e.logger.Debug("synth polyphony grown", "from", before, "to", e.allocated)
}

// SetWave sets the waveform of both oscillator slots.
func (e *Engine) SetWave(w Waveform) {
	e.SetWaveform(Osc1, w)
	e.SetWaveform(Osc2, w)
}

// SetWaveform sets the waveform of one slot. Unknown ids select WaveSine.
// Wavetable shapes rebuild the slot table in place and give every allocated
// voice a fresh oscillator on it with the previous amplitude and frequency.
func (e *Engine) SetWaveform(slot Slot, w Waveform) {
	if !slot.valid() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	w = w.sanitize()
	e.params.Osc[slot].Waveform = w

	if !e.initialized || w == WaveFM {
		return
	}

	if err := e.tables[slot].Fill(w.tableShape()); err != nil {
		e.logger.Error("synth: rebuild table", "slot", int(slot)+1, "waveform", w.String(), "error", err)
		return
	}

	for i := range e.allocated {
		if err := e.replaceWave(&e.voices[i], slot); err != nil {
			e.logger.Error("synth: replace oscillator", "voice", i, "error", err)
			return
		}
	}

	e.logger.Debug("synth waveform rebuilt", "slot", int(slot)+1, "waveform", w.String())
}

// SetDetune sets the pitch offset of one slot in semitones.
func (e *Engine) SetDetune(slot Slot, semitones float64) {
	if !slot.valid() || !core.IsFinite(semitones) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Osc[slot].Detune = semitones
	e.detuneRatio[slot] = core.SemitonesToRatio(semitones)
}

// SetGain sets the mix gain of one slot. Render clamps the modulated value
// to [0, 2].
func (e *Engine) SetGain(slot Slot, gain float64) {
	if !slot.valid() || !core.IsFinite(gain) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Osc[slot].Gain = gain
}

// SetFM sets carrier ratio, modulator ratio and index of one slot and pushes
// them to every allocated FM unit. Ratios are clamped to [0, osc.MaxRatio]
// and the index to [0, osc.MaxIndex].
func (e *Engine) SetFM(slot Slot, carrier, modulator, index float64) {
	if !slot.valid() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fm := &e.params.Osc[slot].FM
	if core.IsFinite(carrier) {
		fm.Carrier = core.Clamp(carrier, 0, osc.MaxRatio)
	}
	if core.IsFinite(modulator) {
		fm.Modulator = core.Clamp(modulator, 0, osc.MaxRatio)
	}
	if core.IsFinite(index) {
		fm.Index = core.Clamp(index, 0, osc.MaxIndex)
	}

	for i := range e.allocated {
		unit := e.voices[i].gen[slot].fm
		unit.SetRatios(fm.Carrier, fm.Modulator)
		unit.SetIndex(fm.Index)
	}
}

// SetFilter sets the base cutoff in Hz and the resonance in [0, 1] and
// pushes them to every allocated filter.
func (e *Engine) SetFilter(cutoffHz, resonance float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if core.IsFinite(cutoffHz) {
		e.params.FilterCutoffHz = cutoffHz
	}
	if core.IsFinite(resonance) {
		e.params.FilterResonance = core.Clamp(resonance, 0, 1)
	}

	if !e.initialized {
		return
	}

	cutoff := e.cutoff(e.params.FilterCutoffHz)
	res := ladderResonance(e.params.FilterResonance)
	for i := range e.allocated {
		e.voices[i].filter.Tune(cutoff, res)
	}
}

// SetFilterEnv sets the filter envelope and pushes it to allocated voices.
func (e *Engine) SetFilterEnv(attack, decay, sustain, release float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.FilterEnv = EnvelopeParams{Attack: attack, Decay: decay, Sustain: sustain, Release: release}
	for i := range e.allocated {
		setEnvelope(e.voices[i].filterEnv, e.params.FilterEnv)
	}
}

// SetFilterEnvAmount sets the cutoff offset in Hz at full filter envelope.
func (e *Engine) SetFilterEnvAmount(hz float64) {
	if !core.IsFinite(hz) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.FilterEnvAmount = hz
}

// SetLFORate sets the master LFO frequency in Hz.
func (e *Engine) SetLFORate(hz float64) {
	if !core.IsFinite(hz) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.LFORateHz = hz
	if e.lfo != nil {
		e.lfo.SetFrequency(hz)
	}
}

// SetLFODestination routes the LFO. Out-of-range ids are clamped.
func (e *Engine) SetLFODestination(d Destination) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Route.Destination = clampDestination(d)
}

// SetLFOAmount sets the route depth in the destination's units.
func (e *Engine) SetLFOAmount(amount float64) {
	if !core.IsFinite(amount) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Route.Amount = amount
}

// SetLFOAmountSemitones routes the LFO to pitch with a depth in semitones.
func (e *Engine) SetLFOAmountSemitones(semitones float64) {
	if !core.IsFinite(semitones) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Route = Route{Destination: DestPitch, Amount: semitones}
}
