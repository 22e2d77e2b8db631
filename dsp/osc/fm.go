package osc

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

const (
	defaultCarrierRatio   = 1.0
	defaultModulatorRatio = 1.0
	defaultIndex          = 2.0

	// MaxRatio bounds the carrier and modulator frequency ratios.
	MaxRatio = 64.0
	// MaxIndex bounds the modulation index.
	MaxIndex = 1000.0
)

// FM is a two-operator frequency-modulation oscillator.
type FM struct {
	sampleRate float64
	table      *wavetable.Table

	frequency float64
	amplitude float64
	carrier   float64
	modulator float64
	index     float64

	carPhase float64
	modPhase float64
}

// NewFM creates an FM oscillator; table is normally a sine cycle.
func NewFM(sampleRate float64, table *wavetable.Table) (*FM, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("osc: fm table must not be nil")
	}

	return &FM{
		sampleRate: sampleRate,
		table:      table,
		frequency:  defaultFrequencyHz,
		amplitude:  defaultAmplitude,
		carrier:    defaultCarrierRatio,
		modulator:  defaultModulatorRatio,
		index:      defaultIndex,
	}, nil
}

// Table returns the table both operators read.
func (f *FM) Table() *wavetable.Table { return f.table }

// Frequency returns the base frequency in Hz.
func (f *FM) Frequency() float64 { return f.frequency }

// Amplitude returns the output gain.
func (f *FM) Amplitude() float64 { return f.amplitude }

// Carrier returns the carrier frequency ratio.
func (f *FM) Carrier() float64 { return f.carrier }

// Modulator returns the modulator frequency ratio.
func (f *FM) Modulator() float64 { return f.modulator }

// Index returns the modulation index.
func (f *FM) Index() float64 { return f.index }

// SetFrequency sets the base frequency in Hz.
func (f *FM) SetFrequency(hz float64) {
	if !core.IsFinite(hz) {
		hz = 0
	}
	f.frequency = hz
}

// SetAmplitude sets the output gain.
func (f *FM) SetAmplitude(amp float64) {
	if !core.IsFinite(amp) {
		amp = 0
	}
	f.amplitude = amp
}

// SetRatios sets the carrier and modulator frequency ratios, clamped to
// [0, MaxRatio]. Non-finite values keep the current ratio.
func (f *FM) SetRatios(carrier, modulator float64) {
	if core.IsFinite(carrier) {
		f.carrier = core.Clamp(carrier, 0, MaxRatio)
	}
	if core.IsFinite(modulator) {
		f.modulator = core.Clamp(modulator, 0, MaxRatio)
	}
}

// SetIndex sets the modulation index, clamped to [0, MaxIndex].
func (f *FM) SetIndex(index float64) {
	if !core.IsFinite(index) {
		index = 0
	}
	f.index = core.Clamp(index, 0, MaxIndex)
}

// Reset rewinds both operators.
func (f *FM) Reset() {
	f.carPhase = 0
	f.modPhase = 0
}

// ProcessSample returns the next output sample.
func (f *FM) ProcessSample() float64 {
	modHz := f.frequency * f.modulator
	deviation := f.index * modHz * f.table.Lookup(f.modPhase)
	carHz := f.frequency*f.carrier + deviation

	out := f.amplitude * f.table.Lookup(f.carPhase)

	f.carPhase = wrap(f.carPhase + increment(carHz, f.sampleRate))
	f.modPhase = wrap(f.modPhase + increment(modHz, f.sampleRate))

	return out
}

// increment returns the phase step for hz; an overflowed frequency holds
// the phase.
func increment(hz, sampleRate float64) float64 {
	step := hz / sampleRate
	if !core.IsFinite(step) {
		return 0
	}

	return step
}
