package midifile

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	demoTicks    = 480
	demoBPM      = 120
	demoVelocity = 100
)

// demoPhrase is an A minor arpeggio over two octaves and back.
var demoPhrase = []uint8{57, 60, 64, 69, 72, 76, 81, 76, 72, 69, 64, 60}

// WriteDemo writes a single-track SMF holding the built-in arpeggio:
// sixteenth notes at 120 BPM gated for half a step, closed by a held chord.
func WriteDemo(w io.Writer) error {
	var tr smf.Track

	const step = demoTicks / 4

	tr.Add(0, smf.MetaTempo(demoBPM))

	var rest uint32
	for _, key := range demoPhrase {
		tr.Add(rest, midi.NoteOn(0, key, demoVelocity))
		tr.Add(step/2, midi.NoteOff(0, key))
		rest = step / 2
	}

	chord := []uint8{57, 64, 69, 72}
	for _, key := range chord {
		tr.Add(rest, midi.NoteOn(0, key, demoVelocity))
		rest = 0
	}
	for i, key := range chord {
		delta := uint32(0)
		if i == 0 {
			delta = 2 * demoTicks
		}
		tr.Add(delta, midi.NoteOff(0, key))
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(demoTicks)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("midifile: demo track: %w", err)
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midifile: write demo: %w", err)
	}

	return nil
}
