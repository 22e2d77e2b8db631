package synth

import "github.com/cwbudde/algo-synth/dsp/core"

// Render fills dst with mono samples. The output is not clamped. Render is a
// no-op on an uninitialized engine or an empty dst.
func (e *Engine) Render(dst []float32) {
	if len(dst) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}

	n := e.params.Polyphony
	for i := range dst {
		mod := e.params.Route.Modulate(e.lfo.ProcessSample())

		var mix float64
		for j := range n {
			v := &e.voices[j]
			if !v.active && v.gate <= 0 {
				continue
			}
			mix += e.renderVoice(v, &mod)
		}

		dst[i] = float32(mix)
	}
}

// renderVoice advances one voice by a frame and returns its contribution.
func (e *Engine) renderVoice(v *voice, mod *Modulation) float64 {
	p := &e.params

	hz := v.baseHz * mod.PitchMul

	var s float64
	for slot := range v.gen {
		g := &v.gen[slot]
		op := &p.Osc[slot]
		slotHz := hz * e.detuneRatio[slot]

		var x float64
		if op.Waveform == WaveFM {
			g.fm.SetFrequency(slotHz)
			g.fm.SetIndex(op.FM.Index + mod.FMIndex[slot])
			x = g.fm.ProcessSample()
		} else {
			g.wave.SetFrequency(slotHz)
			x = g.wave.ProcessSample()
		}

		s += x * core.Clamp(op.Gain+mod.Gain[slot], 0, maxSlotGain)
	}

	gate := 0.0
	if v.gate > 0 {
		gate = 1
	}

	fenv := v.filterEnv.Compute(gate)
	cutoff := e.cutoff(p.FilterCutoffHz + p.FilterEnvAmount*fenv + mod.CutoffHz)
	v.filter.Tune(cutoff, ladderResonance(p.FilterResonance+mod.Resonance))
	s = v.filter.ProcessSample(s)

	env := v.ampEnv.Compute(gate)
	v.lastEnv = env
	out := s * env * v.velocity * core.Clamp(p.MasterAmp+mod.MasterAmp, 0, maxMasterAmp)

	releaseIfSilent(v, env)

	return out
}
