// Package osc provides table-lookup oscillators.
//
// Oscillator reads a shared wavetable.Table at a variable playback
// frequency. FM is a two-operator frequency-modulation oscillator whose
// carrier and modulator both read a sine table: the modulator runs at
// frequency·modRatio and deviates the carrier (frequency·carRatio) by
// index·frequency·modRatio Hz.
//
// Tables are referenced, never copied; several oscillators may share one.
// Once constructed, ProcessSample never allocates.
package osc
