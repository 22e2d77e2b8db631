package core

import "math"

const (
	// ConcertPitchHz is the frequency of MIDI note 69 (A4).
	ConcertPitchHz = 440.0
	// ConcertPitchNote is the MIDI note number tuned to ConcertPitchHz.
	ConcertPitchNote = 69
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// MIDIToHz converts a (possibly fractional) MIDI note number to Hz using
// equal temperament: 440 * 2^((note-69)/12).
func MIDIToHz(note float64) float64 {
	return ConcertPitchHz * math.Exp2((note-ConcertPitchNote)/12)
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	if semitones == 0 {
		return 1
	}

	return math.Exp2(semitones / 12)
}
