// Package midifile turns Standard MIDI Files into frame-stamped note events
// and schedules them against a synth at sample accuracy.
package midifile

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrNoNotes is returned when a file holds no note events.
var ErrNoNotes = errors.New("midifile: no note events")

// Event is one note-on or note-off at an absolute frame.
type Event struct {
	Frame    int
	On       bool
	Channel  uint8
	Key      uint8
	Velocity float64 // 0..1
}

// Read decodes an SMF from r and returns its note events in frame order at
// sampleRate. Tempo changes are honored. A note-on with velocity 0 is a
// note-off. At equal frames note-offs sort before note-ons so a repeated key
// is released before it is struck again.
func Read(r io.Reader, sampleRate float64) ([]Event, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("midifile: invalid sample rate: %v", sampleRate)
	}

	var events []Event

	rd := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		var ch, key, vel uint8

		msg := midi.Message(ev.Message)
		frame := int(math.Round(float64(ev.AbsMicroSeconds) * sampleRate / 1e6))

		switch {
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			events = append(events, Event{Frame: frame, On: true, Channel: ch, Key: key, Velocity: float64(vel) / 127})
		case msg.GetNoteOn(&ch, &key, &vel), msg.GetNoteOff(&ch, &key, &vel):
			events = append(events, Event{Frame: frame, Channel: ch, Key: key})
		}
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("midifile: read: %w", err)
	}

	if len(events) == 0 {
		return nil, ErrNoNotes
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.Frame, b.Frame); c != 0 {
			return c
		}
		switch {
		case a.On == b.On:
			return 0
		case !a.On:
			return -1
		default:
			return 1
		}
	})

	return events, nil
}

// ReadFile reads the SMF at path.
func ReadFile(path string, sampleRate float64) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("midifile: %w", err)
	}

	return Read(bytes.NewReader(data), sampleRate)
}

// Length returns the frame of the last event, or 0 for no events.
func Length(events []Event) int {
	if len(events) == 0 {
		return 0
	}

	return events[len(events)-1].Frame
}
