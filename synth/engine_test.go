package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/wavetable"
)

func newEngine(t testing.TB, sampleRate float64, opts ...Option) *Engine {
	t.Helper()

	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Init(sampleRate, DefaultTableSize); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	return e
}

func voiceState(t *testing.T, e *Engine, i int) VoiceState {
	t.Helper()

	st, ok := e.Voice(i)
	if !ok {
		t.Fatalf("Voice(%d) not ok", i)
	}

	return st
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(WithLogger(nil)); err == nil {
		t.Fatal("expected error for nil logger")
	}
	if _, err := New(WithFilterVariant(99)); err == nil {
		t.Fatal("expected error for invalid filter variant")
	}
}

func TestNewSanitizesParams(t *testing.T) {
	p := DefaultParams()
	p.Polyphony = 40
	p.Route.Destination = 12
	p.Osc[Osc2].Waveform = 9
	p.Osc[Osc1].FM.Index = -1

	e, err := New(WithParams(p))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := e.Params()
	if got.Polyphony != MaxVoices {
		t.Errorf("Polyphony = %d, want %d", got.Polyphony, MaxVoices)
	}
	if got.Route.Destination != DestFM2Index {
		t.Errorf("Destination = %v, want %v", got.Route.Destination, DestFM2Index)
	}
	if got.Osc[Osc2].Waveform != WaveSine {
		t.Errorf("Waveform = %v, want sine", got.Osc[Osc2].Waveform)
	}
	if got.Osc[Osc1].FM.Index != 0 {
		t.Errorf("FM index = %v, want 0", got.Osc[Osc1].FM.Index)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.MasterAmp != 0.4 || p.Polyphony != 8 {
		t.Fatalf("master=%v poly=%d, want 0.4/8", p.MasterAmp, p.Polyphony)
	}
	if p.AmpEnv != (EnvelopeParams{Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: 0.2}) {
		t.Fatalf("AmpEnv = %+v", p.AmpEnv)
	}
	if p.FilterEnv != (EnvelopeParams{Attack: 0.005, Decay: 0.15, Sustain: 0, Release: 0.25}) {
		t.Fatalf("FilterEnv = %+v", p.FilterEnv)
	}
	if p.FilterCutoffHz != 1200 || p.FilterResonance != 0.3 || p.FilterEnvAmount != 2000 {
		t.Fatalf("filter = %v/%v/%v", p.FilterCutoffHz, p.FilterResonance, p.FilterEnvAmount)
	}
	if p.LFORateHz != 5 || p.Route != (Route{Destination: DestPitch}) {
		t.Fatalf("lfo = %v %+v", p.LFORateHz, p.Route)
	}
	for s, o := range p.Osc {
		want := OscParams{Waveform: WaveSine, Gain: 0.5, FM: FMParams{Carrier: 1, Modulator: 1, Index: 2}}
		if o != want {
			t.Fatalf("Osc[%d] = %+v, want %+v", s, o, want)
		}
	}
}

func TestInitRejectsInvalidSampleRate(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		err := e.Init(sr, 2048)
		if !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("Init(%v) error = %v, want ErrInvalidSampleRate", sr, err)
		}
		if e.Initialized() {
			t.Fatalf("Init(%v) left the engine initialized", sr)
		}
	}
}

func TestInitTableSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: DefaultTableSize},
		{in: 63, want: DefaultTableSize},
		{in: 64, want: 64},
		{in: 4096, want: 4096},
	}

	for _, tc := range tests {
		e, err := New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := e.Init(48000, tc.in); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if got := e.TableSize(); got != tc.want {
			t.Errorf("TableSize() for %d = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestInitKeepsParamsSetBefore(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	e.SetAmp(0.9)
	e.SetPoly(3)
	e.SetWave(WaveSquare)
	e.SetFilter(800, 0.6)

	if idx := e.NoteOn(60, 1); idx != -1 {
		t.Fatalf("NoteOn before Init = %d, want -1", idx)
	}

	if err := e.Init(44100, 1024); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	p := e.Params()
	if p.MasterAmp != 0.9 || p.Polyphony != 3 || p.FilterCutoffHz != 800 || p.FilterResonance != 0.6 {
		t.Fatalf("params lost across Init: %+v", p)
	}
	if e.allocated != 3 {
		t.Fatalf("allocated = %d, want 3", e.allocated)
	}
	for s, tbl := range e.tables {
		if tbl.Waveform() != wavetable.Square {
			t.Fatalf("table %d waveform = %v, want square", s, tbl.Waveform())
		}
	}
	if got := e.voices[0].filter.CutoffHz(); got != 800 {
		t.Fatalf("filter cutoff = %v, want 800", got)
	}
}

func TestReinitReleasesVoices(t *testing.T) {
	e := newEngine(t, 48000)
	e.NoteOn(60, 1)

	if err := e.Init(48000, 512); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	st := voiceState(t, e, 0)
	if st.Active || st.MIDI != -1 || st.Gate != 0 {
		t.Fatalf("voice after re-Init = %+v, want idle", st)
	}
}

func TestDoubleShutdown(t *testing.T) {
	e := newEngine(t, 48000)
	e.NoteOn(64, 0.7)

	e.Shutdown()
	first := e.Params()
	e.Shutdown()

	if e.Initialized() {
		t.Fatal("engine still initialized after Shutdown")
	}
	if e.Params() != first {
		t.Fatal("second Shutdown changed the parameter store")
	}
	if e.SampleRate() != 0 || e.TableSize() != 0 {
		t.Fatalf("sampleRate=%v tableSize=%d after Shutdown", e.SampleRate(), e.TableSize())
	}

	for i := range MaxVoices {
		st := voiceState(t, e, i)
		if st.Active || st.MIDI != -1 {
			t.Fatalf("voice %d = %+v, want idle", i, st)
		}
	}

	buf := []float32{7, 7, 7}
	e.Render(buf)
	for i, v := range buf {
		if v != 7 {
			t.Fatalf("Render after Shutdown wrote buf[%d] = %v", i, v)
		}
	}

	if idx := e.NoteOn(60, 1); idx != -1 {
		t.Fatalf("NoteOn after Shutdown = %d, want -1", idx)
	}
}

func TestShutdownNeverInitialized(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	e.Shutdown()
	e.Shutdown()

	if e.Initialized() {
		t.Fatal("engine reports initialized")
	}
}

func TestVoiceOutOfRange(t *testing.T) {
	e := newEngine(t, 48000)

	if _, ok := e.Voice(-1); ok {
		t.Fatal("Voice(-1) ok")
	}
	if _, ok := e.Voice(MaxVoices); ok {
		t.Fatal("Voice(MaxVoices) ok")
	}
}

func TestUninitializedEngineIsInert(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	e.NoteOff()
	e.NoteOffMIDI(60)
	e.SetFreq(220)
	e.SetEnv(0.1, 0.1, 0.5, 0.1)
	e.SetFilterEnv(0.1, 0.1, 0.5, 0.1)
	e.SetFM(Osc1, 2, 3, 4)
	e.SetLFORate(2)
	e.SetWaveform(Osc2, WaveTriangle)

	buf := make([]float32, 64)
	for i := range buf {
		buf[i] = 0.5
	}
	e.Render(buf)
	for i, v := range buf {
		if v != 0.5 {
			t.Fatalf("Render on uninitialized engine wrote buf[%d] = %v", i, v)
		}
	}

	p := e.Params()
	if p.Osc[Osc1].FM != (FMParams{Carrier: 2, Modulator: 3, Index: 4}) {
		t.Fatalf("FM params not recorded: %+v", p.Osc[Osc1].FM)
	}
	if p.Osc[Osc2].Waveform != WaveTriangle || p.LFORateHz != 2 {
		t.Fatalf("params not recorded: %+v", p)
	}
}
