package midifile

// Target receives scheduled notes and renders audio between them.
// *synth.Engine satisfies it.
type Target interface {
	NoteOn(midi int, velocity float64) int
	NoteOffMIDI(midi int)
	Render(dst []float32)
}

// Sequencer plays an event list into a Target. Each Render call splits the
// destination block at event frames so notes start on their exact sample.
type Sequencer struct {
	events []Event
	next   int
	frame  int
}

// NewSequencer returns a sequencer positioned at frame 0. events must be in
// frame order, as returned by Read.
func NewSequencer(events []Event) *Sequencer {
	return &Sequencer{events: events}
}

// Frame returns the number of frames rendered so far.
func (s *Sequencer) Frame() int { return s.frame }

// Done reports whether every event has been delivered.
func (s *Sequencer) Done() bool { return s.next >= len(s.events) }

// Reset rewinds to frame 0.
func (s *Sequencer) Reset() {
	s.next = 0
	s.frame = 0
}

// Render fills dst from t, delivering every event whose frame falls inside
// the block right before the sample it belongs to. Events on the frame just
// past the block are delivered by the next call.
func (s *Sequencer) Render(t Target, dst []float32) {
	for len(dst) > 0 {
		s.dispatchDue(t)

		n := len(dst)
		if !s.Done() {
			n = min(n, s.events[s.next].Frame-s.frame)
		}

		t.Render(dst[:n])
		dst = dst[n:]
		s.frame += n
	}
}

func (s *Sequencer) dispatchDue(t Target) {
	for ; s.next < len(s.events) && s.events[s.next].Frame <= s.frame; s.next++ {
		ev := s.events[s.next]
		if ev.On {
			t.NoteOn(int(ev.Key), ev.Velocity)
		} else {
			t.NoteOffMIDI(int(ev.Key))
		}
	}
}
