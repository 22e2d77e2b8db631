package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Stage is the current segment of an ADSR envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

const (
	// segmentFloor is the residual (relative to the segment span) that an
	// exponential segment reaches after its configured time.
	segmentFloor = 1e-4

	// attackEpsilon absorbs rounding in the accumulated attack ramp.
	attackEpsilon = 1e-9

	defaultAttack  = 0.01
	defaultDecay   = 0.1
	defaultSustain = 0.8
	defaultRelease = 0.2
)

// ADSR is a gate-driven attack/decay/sustain/release envelope.
type ADSR struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	attackStep  float64
	decayCoef   float64
	releaseCoef float64

	stage    Stage
	value    float64
	lastGate bool
}

// New creates an idle envelope with default times.
func New(sampleRate float64) (*ADSR, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("envelope: sample rate must be > 0 and finite: %f", sampleRate)
	}

	e := &ADSR{sampleRate: sampleRate}
	e.SetADSR(defaultAttack, defaultDecay, defaultSustain, defaultRelease)

	return e, nil
}

// SetADSR sets attack, decay and release times in seconds and the sustain
// level. Times are clamped to >= 0 and sustain to [0, 1]. The current stage
// and value are kept.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.attack = sanitizeTime(attack)
	e.decay = sanitizeTime(decay)
	e.release = sanitizeTime(release)

	if !core.IsFinite(sustain) {
		sustain = 0
	}
	e.sustain = core.Clamp(sustain, 0, 1)

	if e.attack > 0 {
		e.attackStep = 1 / (e.attack * e.sampleRate)
	} else {
		e.attackStep = 1
	}
	e.decayCoef = segmentCoef(e.decay, e.sampleRate)
	e.releaseCoef = segmentCoef(e.release, e.sampleRate)
}

// Attack returns the attack time in seconds.
func (e *ADSR) Attack() float64 { return e.attack }

// Decay returns the decay time in seconds.
func (e *ADSR) Decay() float64 { return e.decay }

// Sustain returns the sustain level.
func (e *ADSR) Sustain() float64 { return e.sustain }

// Release returns the release time in seconds.
func (e *ADSR) Release() float64 { return e.release }

// Value returns the most recent output.
func (e *ADSR) Value() float64 { return e.value }

// Stage returns the current segment.
func (e *ADSR) Stage() Stage { return e.stage }

// Retrigger restarts the attack from the current value. The next Compute
// call with a high gate continues the attack instead of detecting an edge.
func (e *ADSR) Retrigger() {
	e.stage = StageAttack
	e.lastGate = true
}

// Reset returns the envelope to idle at zero.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0
	e.lastGate = false
}

// Compute advances the envelope by one sample and returns its value. A gate
// above zero holds the note.
func (e *ADSR) Compute(gate float64) float64 {
	on := gate > 0
	switch {
	case on && !e.lastGate:
		e.stage = StageAttack
	case !on && e.lastGate && e.stage != StageIdle:
		e.stage = StageRelease
	}
	e.lastGate = on

	switch e.stage {
	case StageAttack:
		e.value += e.attackStep
		if e.value >= 1-attackEpsilon {
			e.value = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.value = e.sustain + (e.value-e.sustain)*e.decayCoef
		if math.Abs(e.value-e.sustain) < segmentFloor {
			e.value = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.value = e.sustain
	case StageRelease:
		e.value *= e.releaseCoef
		if e.value < segmentFloor*segmentFloor {
			e.value = 0
			e.stage = StageIdle
		}
	case StageIdle:
		e.value = 0
	}

	return e.value
}

// segmentCoef returns the per-sample multiplier that shrinks a span to
// segmentFloor of its size in seconds.
func segmentCoef(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 0
	}

	return math.Exp(math.Log(segmentFloor) / (seconds * sampleRate))
}

func sanitizeTime(seconds float64) float64 {
	if !core.IsFinite(seconds) || seconds < 0 {
		return 0
	}

	return seconds
}
