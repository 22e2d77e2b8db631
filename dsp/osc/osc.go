package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

const (
	defaultFrequencyHz = 440.0
	defaultAmplitude   = 1.0
)

// Oscillator is a periodic wavetable oscillator with linear interpolation.
type Oscillator struct {
	sampleRate float64
	table      *wavetable.Table

	frequency float64
	amplitude float64

	phase    float64
	phaseInc float64
}

// New creates an oscillator reading table, starting at the normalized phase.
func New(sampleRate float64, table *wavetable.Table, phase float64) (*Oscillator, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("osc: table must not be nil")
	}

	o := &Oscillator{
		sampleRate: sampleRate,
		table:      table,
		amplitude:  defaultAmplitude,
	}
	o.SetPhase(phase)
	o.SetFrequency(defaultFrequencyHz)

	return o, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Table returns the table the oscillator reads.
func (o *Oscillator) Table() *wavetable.Table { return o.table }

// Frequency returns the playback frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Amplitude returns the output gain.
func (o *Oscillator) Amplitude() float64 { return o.amplitude }

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// SetFrequency sets the playback frequency in Hz. Negative values play the
// table backwards.
func (o *Oscillator) SetFrequency(hz float64) {
	if !core.IsFinite(hz) {
		hz = 0
	}
	o.frequency = hz
	o.phaseInc = hz / o.sampleRate
}

// SetAmplitude sets the output gain.
func (o *Oscillator) SetAmplitude(amp float64) {
	if !core.IsFinite(amp) {
		amp = 0
	}
	o.amplitude = amp
}

// SetPhase sets the normalized phase; values wrap into [0, 1).
func (o *Oscillator) SetPhase(phase float64) {
	if !core.IsFinite(phase) {
		phase = 0
	}
	o.phase = phase - math.Floor(phase)
}

// Reset rewinds the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// ProcessSample returns the next output sample and advances the phase.
func (o *Oscillator) ProcessSample() float64 {
	out := o.amplitude * o.table.Lookup(o.phase)
	o.phase = wrap(o.phase + o.phaseInc)

	return out
}

// Process fills dst with consecutive samples.
func (o *Oscillator) Process(dst []float64) {
	for i := range dst {
		dst[i] = o.ProcessSample()
	}
}

func wrap(phase float64) float64 {
	if !core.IsFinite(phase) {
		return 0
	}
	if phase >= 1 || phase < 0 {
		phase -= math.Floor(phase)
	}

	return phase
}

func validateSampleRate(sampleRate float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("osc: sample rate must be > 0 and finite: %f", sampleRate)
	}

	return nil
}
