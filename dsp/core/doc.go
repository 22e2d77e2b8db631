// Package core holds the small numeric and buffer helpers shared by the
// DSP packages: clamping, finiteness checks, denormal flushing, MIDI pitch
// conversion and allocation-free buffer reuse.
package core
