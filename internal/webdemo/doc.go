// Package webdemo hosts a synth.Engine behind a message interface for the
// browser audio worklet. The worklet posts control messages and pulls
// fixed-size blocks; the host renders into a reusable buffer and emits level
// metrics every few blocks.
package webdemo
