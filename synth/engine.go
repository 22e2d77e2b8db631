package synth

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/filter/moog"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

const (
	// DefaultTableSize is used by Init for table sizes below minTableSize.
	DefaultTableSize = 2048

	minTableSize  = 64
	sineTableSize = 2048

	minCutoffHz     = 20.0
	nyquistMarginHz = 100.0
	maxSlotGain     = 2.0
	maxMasterAmp    = 2.0
	ladderFeedbackK = 4.0
)

// Engine is a polyphonic synthesizer instance. The zero value is not usable;
// create engines with New.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger

	params        Params
	detuneRatio   [2]float64
	filterVariant moog.Variant

	initialized bool
	sampleRate  float64
	tableSize   int
	tables      [2]*wavetable.Table
	sine        *wavetable.Table
	lfo         *osc.Oscillator

	voices    [MaxVoices]voice
	allocated int
	rr        int
}

// New returns an uninitialized engine. Setters record parameters until Init
// builds the DSP context.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		logger:        cfg.logger,
		params:        sanitizeParams(cfg.params),
		filterVariant: cfg.filterVariant,
	}
	for s := range e.detuneRatio {
		e.detuneRatio[s] = core.SemitonesToRatio(e.params.Osc[s].Detune)
	}
	e.resetVoices()

	return e, nil
}

// Init builds the DSP context at sampleRate, tearing down any previous one.
// Table sizes below 64 select DefaultTableSize. Parameters set before Init
// are kept. On error the engine stays uninitialized.
func (e *Engine) Init(sampleRate float64, tableSize int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shutdownLocked()

	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if tableSize < minTableSize {
		tableSize = DefaultTableSize
	}

	var tables [2]*wavetable.Table
	for s := range tables {
		t, err := newTable(tableSize, e.params.Osc[s].Waveform)
		if err != nil {
			return fmt.Errorf("synth: oscillator %d table: %w", s+1, err)
		}
		tables[s] = t
	}

	sine, err := wavetable.New(sineTableSize)
	if err != nil {
		return fmt.Errorf("synth: sine table: %w", err)
	}

	lfo, err := osc.New(sampleRate, sine, 0)
	if err != nil {
		return fmt.Errorf("synth: lfo: %w", err)
	}
	lfo.SetFrequency(e.params.LFORateHz)

	e.sampleRate = sampleRate
	e.tableSize = tableSize
	e.tables = tables
	e.sine = sine
	e.lfo = lfo

	if err := e.ensure(e.params.Polyphony); err != nil {
		e.shutdownLocked()
		return err
	}

	e.initialized = true
	e.logger.Debug("synth initialized",
		"sample_rate", sampleRate,
		"table_size", tableSize,
		"polyphony", e.params.Polyphony)

	return nil
}

// Shutdown releases every voice unit, then the tables and the LFO. It is
// safe to call repeatedly and on an engine that was never initialized.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		e.logger.Debug("synth shutdown")
	}

	e.shutdownLocked()
}

func (e *Engine) shutdownLocked() {
	e.resetVoices()
	e.allocated = 0
	e.rr = 0
	e.tables = [2]*wavetable.Table{}
	e.sine = nil
	e.lfo = nil
	e.sampleRate = 0
	e.tableSize = 0
	e.initialized = false
}

func (e *Engine) resetVoices() {
	e.voices = [MaxVoices]voice{}
	for i := range e.voices {
		e.voices[i].midi = -1
	}
}

// Initialized reports whether Init has succeeded since the last Shutdown.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.initialized
}

// SampleRate returns the sample rate passed to Init, or 0 when uninitialized.
func (e *Engine) SampleRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sampleRate
}

// TableSize returns the oscillator table size, or 0 when uninitialized.
func (e *Engine) TableSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tableSize
}

// Params returns a copy of the parameter store.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.params
}

// Voice returns a snapshot of slot i. ok is false for indices outside the
// arena.
func (e *Engine) Voice(i int) (state VoiceState, ok bool) {
	if i < 0 || i >= MaxVoices {
		return VoiceState{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	v := &e.voices[i]
	state = VoiceState{
		Index:    i,
		MIDI:     v.midi,
		BaseHz:   v.baseHz,
		Velocity: v.velocity,
		Gate:     v.gate,
		Active:   v.active,
		Envelope: v.lastEnv,
	}

	if v.built() {
		for s := range v.gen {
			state.SlotHz[s] = v.gen[s].frequency(e.params.Osc[s].Waveform)
		}
		state.CutoffHz = v.filter.CutoffHz()
	}

	return state, true
}

// ActiveVoices returns the number of slots that are sounding or gated.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for i := range e.params.Polyphony {
		if v := &e.voices[i]; v.active || v.gate > 0 {
			n++
		}
	}

	return n
}

// cutoff clamps a cutoff frequency to [20, sr/2-100].
func (e *Engine) cutoff(hz float64) float64 {
	return core.Clamp(hz, minCutoffHz, 0.5*e.sampleRate-nyquistMarginHz)
}

// ladderResonance maps the 0..1 resonance control onto ladder feedback.
func ladderResonance(res float64) float64 {
	return core.Clamp(res, 0, 1) * ladderFeedbackK
}

func sanitizeParams(p Params) Params {
	p.Polyphony = clampPolyphony(p.Polyphony)
	p.Route.Destination = clampDestination(p.Route.Destination)
	for s := range p.Osc {
		p.Osc[s].Waveform = p.Osc[s].Waveform.sanitize()
		fm := &p.Osc[s].FM
		fm.Carrier = clampFinite(fm.Carrier, 0, osc.MaxRatio, 1)
		fm.Modulator = clampFinite(fm.Modulator, 0, osc.MaxRatio, 1)
		fm.Index = clampFinite(fm.Index, 0, osc.MaxIndex, 0)
	}

	return p
}

// clampFinite clamps v to [lo, hi] and replaces a non-finite v with fallback.
func clampFinite(v, lo, hi, fallback float64) float64 {
	if !core.IsFinite(v) {
		return fallback
	}

	return core.Clamp(v, lo, hi)
}
