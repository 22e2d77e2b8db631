// Package envelope provides a gate-driven ADSR envelope generator.
//
// The envelope is advanced one sample at a time by [ADSR.Compute], which
// takes the current gate level. A rising gate edge starts the attack, a
// falling edge starts the release. Attack is linear; decay and release are
// exponential and reach -80 dB of their span in the configured time.
package envelope
