// Package wavetable builds single-cycle lookup tables for table-driven
// oscillators.
//
// A Table has a fixed length chosen at construction. Fill rewrites its
// contents for one of the classic shapes without reallocating, so oscillators
// holding a *Table keep a valid reference across waveform changes:
//   - Sine: reference sine cycle
//   - Sawtooth: 32 harmonics with amplitude 1/n
//   - Square: the first 32 odd harmonics (n = 1..63) with amplitude 1/n
//   - Triangle: piecewise-linear triangle
//
// Additive shapes are normalized to a peak of 1.
package wavetable
