package webdemo

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/measure/meter"
	"github.com/cwbudde/algo-synth/synth"
)

const (
	// DefaultTableSize is the wavetable size the worklet initializes with.
	DefaultTableSize = 2048

	// DefaultBlockFrames is the initial render buffer capacity.
	DefaultBlockFrames = 2048

	// MetricsEvery is the number of processed blocks per metrics event.
	MetricsEvery = 8

	toneAmp  = 0.4
	toneMIDI = 69
)

// Host owns an initialized engine and the worklet-side buffers.
type Host struct {
	engine *synth.Engine

	// mu guards buf and meter; the engine has its own lock.
	mu    sync.Mutex
	buf   []float32
	meter *meter.Meter
}

// NewHost creates an engine, initializes it at sampleRate with the default
// table size and allocates the initial block buffer.
func NewHost(sampleRate float64, opts ...synth.Option) (*Host, error) {
	engine, err := synth.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("webdemo: %w", err)
	}

	if err := engine.Init(sampleRate, DefaultTableSize); err != nil {
		return nil, fmt.Errorf("webdemo: %w", err)
	}

	m, err := meter.New(MetricsEvery)
	if err != nil {
		return nil, fmt.Errorf("webdemo: %w", err)
	}

	return &Host{
		engine: engine,
		buf:    make([]float32, DefaultBlockFrames),
		meter:  m,
	}, nil
}

// Engine returns the hosted engine.
func (h *Host) Engine() *synth.Engine { return h.engine }

// Ready returns the event announcing a usable host.
func (h *Host) Ready() Event {
	return Event{Type: EventReady, Msg: fmt.Sprintf("sr %g", h.engine.SampleRate())}
}

// Dispatch applies one control message and returns the log event describing
// it. Unknown types return ErrUnknownMessage and leave the engine untouched.
func (h *Host) Dispatch(m Message) (Event, error) {
	fn, ok := handlers[m.Type]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}

	msg, err := fn(h.engine, m)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: EventLog, Msg: msg}, nil
}

// Process renders frames samples into the host buffer and returns a view of
// it. The buffer grows when a larger block is requested and is reused
// otherwise, so the view is only valid until the next call. Every
// MetricsEvery blocks a metrics event covering those blocks is returned
// with ok set.
func (h *Host) Process(frames int) (block []float32, metrics Event, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	frames = max(frames, 0)
	h.buf = core.EnsureLen(h.buf, frames)

	// Render leaves dst untouched on a shut-down engine.
	block = h.buf
	core.Zero(block)
	h.engine.Render(block)

	lvl, ok := h.meter.Process(block)
	if !ok {
		return block, Event{}, false
	}

	return block, Event{
		Type:   EventMetrics,
		Frames: frames,
		RMS:    lvl.RMS,
		Peak:   lvl.Peak,
	}, true
}

// Capacity returns the current block buffer capacity in frames.
func (h *Host) Capacity() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return cap(h.buf)
}

// RenderTone renders a standalone tone of seconds length at hz into a new
// buffer. A note is started first when no voice is sounding, the legacy
// frequency and amplitude setters are applied, and the note is released
// after rendering. At least one frame is rendered.
func (h *Host) RenderTone(hz, seconds float64) []float32 {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	frames := max(int(math.Floor(seconds*h.engine.SampleRate())), 1)
	out := make([]float32, frames)

	if h.engine.ActiveVoices() == 0 {
		h.engine.NoteOn(toneMIDI, 1)
	}

	h.engine.SetFreq(hz)
	h.engine.SetAmp(toneAmp)
	h.engine.Render(out)
	h.engine.NoteOff()

	return out
}

// Close shuts the engine down. Later calls render silence.
func (h *Host) Close() {
	h.engine.Shutdown()
}
