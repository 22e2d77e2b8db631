// Package synth implements a polyphonic wavetable/FM synthesizer engine.
//
// An [Engine] owns a fixed arena of [MaxVoices] voices. Each voice runs two
// tone generators (wavetable or FM per slot), a Moog ladder filter driven by
// its own envelope, and an amplitude envelope. A single master sine LFO is
// routed to one [Destination] at a time.
//
// Control calls and [Engine.Render] may run on different goroutines; they are
// serialized by an engine lock held once per rendered block. Render does not
// allocate once [Engine.Init] has returned.
package synth
