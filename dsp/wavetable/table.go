package wavetable

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const minTableSize = 2

// ErrUnknownWaveform is returned by Fill for an unsupported Waveform.
var ErrUnknownWaveform = errors.New("wavetable: unknown waveform")

// Additive series shared by every table; FillSineSum only reads them.
var (
	sawtoothSeries = HarmonicSeries(DefaultPartials, false)
	squareSeries   = HarmonicSeries(DefaultPartials, true)
)

// Waveform selects the content written by Fill.
type Waveform int

const (
	Sine Waveform = iota
	Sawtooth
	Square
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Table is a fixed-size single-cycle waveform.
type Table struct {
	data     []float64
	partial  []float64
	waveform Waveform
}

// New allocates a table of size samples filled with a sine cycle.
func New(size int) (*Table, error) {
	if size < minTableSize {
		return nil, fmt.Errorf("wavetable: size must be >= %d: %d", minTableSize, size)
	}

	t := &Table{
		data:    make([]float64, size),
		partial: make([]float64, size),
	}
	t.FillSine()

	return t, nil
}

// Len returns the number of samples in one cycle.
func (t *Table) Len() int { return len(t.data) }

// Samples exposes the table contents. Callers must not modify them.
func (t *Table) Samples() []float64 { return t.data }

// Waveform returns the shape most recently written by Fill.
func (t *Table) Waveform() Waveform { return t.waveform }

// Fill rewrites the table for w in place.
func (t *Table) Fill(w Waveform) error {
	switch w {
	case Sine:
		t.FillSine()
	case Sawtooth:
		t.FillSineSum(sawtoothSeries)
	case Square:
		t.FillSineSum(squareSeries)
	case Triangle:
		t.FillTriangle()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownWaveform, w)
	}

	t.waveform = w

	return nil
}

// FillSine writes one sine cycle.
func (t *Table) FillSine() {
	step := 2 * math.Pi / float64(len(t.data))
	for i := range t.data {
		t.data[i] = math.Sin(step * float64(i))
	}
	t.waveform = Sine
}

// FillSineSum writes sum(coeffs[k] * sin((k+1)·θ)) and normalizes the peak to 1.
// Zero coefficients are skipped.
func (t *Table) FillSineSum(coeffs []float64) {
	for i := range t.data {
		t.data[i] = 0
	}

	step := 2 * math.Pi / float64(len(t.data))
	for k, amp := range coeffs {
		if amp == 0 {
			continue
		}

		harmonic := float64(k + 1)
		for i := range t.partial {
			t.partial[i] = math.Sin(harmonic * step * float64(i))
		}

		vecmath.ScaleBlock(t.partial, t.partial, amp)
		vecmath.AddBlockInPlace(t.data, t.partial)
	}

	peak := 0.0
	for _, v := range t.data {
		peak = math.Max(peak, math.Abs(v))
	}

	if peak > 0 {
		vecmath.ScaleBlock(t.data, t.data, 1/peak)
	}
}

// FillTriangle writes a triangle cycle starting at 0, peaking at +1 a quarter
// cycle in and reaching -1 at three quarters, in phase with FillSine.
func (t *Table) FillTriangle() {
	n := float64(len(t.data))
	for i := range t.data {
		x := float64(i) / n
		switch {
		case x < 0.25:
			t.data[i] = 4 * x
		case x < 0.75:
			t.data[i] = 2 - 4*x
		default:
			t.data[i] = 4*x - 4
		}
	}
	t.waveform = Triangle
}

// Lookup returns the linearly interpolated value at phase, where phase is
// the normalized cycle position. Values outside [0, 1) wrap and a non-finite
// phase reads position 0.
func (t *Table) Lookup(phase float64) float64 {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		phase = 0
	}
	phase -= math.Floor(phase)

	pos := phase * float64(len(t.data))
	i := int(pos)
	if i >= len(t.data) {
		i = 0
	}

	next := i + 1
	if next == len(t.data) {
		next = 0
	}

	frac := pos - float64(i)

	return t.data[i] + frac*(t.data[next]-t.data[i])
}
