// Package meter computes block RMS and peak levels of rendered float32 audio.
package meter

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// FloorDB is reported for silent input.
const FloorDB float32 = -120

// Level is a linear RMS and peak reading.
type Level struct {
	RMS  float32
	Peak float32
}

// RMSdBFS returns RMS in dB relative to full scale, floored at FloorDB.
func (l Level) RMSdBFS() float32 { return toDB(l.RMS) }

// PeakdBFS returns Peak in dB relative to full scale, floored at FloorDB.
func (l Level) PeakdBFS() float32 { return toDB(l.Peak) }

func toDB(v float32) float32 {
	if v <= 0 {
		return FloorDB
	}

	return max(20*math32.Log10(v), FloorDB)
}

// Measure returns the level of block. It allocates one scratch slice; use a
// Meter on the audio path.
func Measure(block []float32) Level {
	if len(block) == 0 {
		return Level{}
	}

	scratch := make([]float32, len(block))

	return measureInto(scratch, block)
}

func measureInto(scratch, block []float32) Level {
	sq := vek32.Mul_Into(scratch, block, block)
	rms := math32.Sqrt(vek32.Mean(sq))

	copy(scratch, block)
	vek32.Abs_Inplace(scratch)

	return Level{RMS: rms, Peak: vek32.Max(scratch)}
}

// Meter accumulates levels over several blocks and reports once every
// reportEvery blocks. The zero value is not usable; use New.
type Meter struct {
	every   int
	blocks  int
	frames  int
	sumSq   float64
	peak    float32
	scratch []float32
}

// New returns a meter that reports after every reportEvery processed blocks.
func New(reportEvery int) (*Meter, error) {
	if reportEvery < 1 {
		return nil, fmt.Errorf("meter: reportEvery must be >= 1: %d", reportEvery)
	}

	return &Meter{every: reportEvery}, nil
}

// ReportEvery returns the report interval in blocks.
func (m *Meter) ReportEvery() int { return m.every }

// Process folds block into the running reading. When the interval completes
// it returns the combined level of the interval and true, then starts over.
// Empty blocks still count towards the interval.
func (m *Meter) Process(block []float32) (Level, bool) {
	if n := len(block); n > 0 {
		if cap(m.scratch) < n {
			m.scratch = make([]float32, n)
		}

		lvl := measureInto(m.scratch[:n], block)
		m.sumSq += float64(lvl.RMS) * float64(lvl.RMS) * float64(n)
		m.frames += n
		m.peak = max(m.peak, lvl.Peak)
	}

	m.blocks++
	if m.blocks < m.every {
		return Level{}, false
	}

	var out Level
	if m.frames > 0 {
		out.RMS = math32.Sqrt(float32(m.sumSq / float64(m.frames)))
		out.Peak = m.peak
	}

	m.Reset()

	return out, true
}

// Reset discards the partial interval.
func (m *Meter) Reset() {
	m.blocks = 0
	m.frames = 0
	m.sumSq = 0
	m.peak = 0
}
