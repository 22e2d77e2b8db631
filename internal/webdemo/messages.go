package webdemo

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-synth/synth"
)

// Message types understood by Host.Dispatch.
const (
	MsgWave            = "wave"
	MsgWave1           = "wave1"
	MsgWave2           = "wave2"
	MsgNoteOn          = "note_on"
	MsgNoteOff         = "note_off"
	MsgNoteOffMIDI     = "note_off_midi"
	MsgAmp             = "amp"
	MsgFreq            = "freq"
	MsgEnv             = "env"
	MsgPoly            = "poly"
	MsgDetune1         = "detune1"
	MsgDetune2         = "detune2"
	MsgGain1           = "gain1"
	MsgGain2           = "gain2"
	MsgFM1             = "fm1"
	MsgFM2             = "fm2"
	MsgFilter          = "filter_set"
	MsgFilterEnv       = "filter_env"
	MsgFilterEnvAmount = "filter_env_amount"
	MsgLFORate         = "lfo_set"
	MsgLFODest         = "lfo_dest"
	MsgLFOAmount       = "lfo_amount"
	MsgLFOAmountSemi   = "lfo_amount_semi"
)

// Event types emitted towards the UI thread.
const (
	EventReady   = "ready"
	EventLog     = "log"
	EventMetrics = "metrics"
)

var (
	// ErrUnknownMessage is returned for an unrecognized message type.
	ErrUnknownMessage = errors.New("webdemo: unknown message type")
	// ErrMissingArgs is returned when a message carries too few arguments.
	ErrMissingArgs = errors.New("webdemo: missing message arguments")
)

// Message is one control message from the UI thread. Single-value messages
// use Value; note messages use MIDI and Velocity; envelope, FM and filter
// messages take their parameters in order from Args.
type Message struct {
	Type     string
	Value    float64
	MIDI     int
	Velocity float64
	Args     []float64
}

// Event is posted back to the UI thread.
type Event struct {
	Type   string
	Msg    string
	Frames int
	RMS    float32
	Peak   float32
}

type handler func(e *synth.Engine, m Message) (string, error)

var handlers = map[string]handler{
	MsgWave: func(e *synth.Engine, m Message) (string, error) {
		w := synth.Waveform(int(m.Value))
		e.SetWave(w)
		return fmt.Sprintf("wave -> %d", w), nil
	},
	MsgWave1: slotWave(synth.Osc1),
	MsgWave2: slotWave(synth.Osc2),
	MsgNoteOn: func(e *synth.Engine, m Message) (string, error) {
		idx := e.NoteOn(m.MIDI, m.Velocity)
		return fmt.Sprintf("note_on -> midi:%d vel:%g voice:%d", m.MIDI, m.Velocity, idx), nil
	},
	MsgNoteOff: func(e *synth.Engine, _ Message) (string, error) {
		e.NoteOff()
		return "note_off", nil
	},
	MsgNoteOffMIDI: func(e *synth.Engine, m Message) (string, error) {
		e.NoteOffMIDI(m.MIDI)
		return fmt.Sprintf("note_off -> midi:%d", m.MIDI), nil
	},
	MsgAmp: func(e *synth.Engine, m Message) (string, error) {
		e.SetAmp(m.Value)
		return fmt.Sprintf("amp -> %g", m.Value), nil
	},
	MsgFreq: func(e *synth.Engine, m Message) (string, error) {
		e.SetFreq(m.Value)
		return fmt.Sprintf("freq -> %g", m.Value), nil
	},
	MsgEnv: func(e *synth.Engine, m Message) (string, error) {
		a, err := args(m, 4)
		if err != nil {
			return "", err
		}
		e.SetEnv(a[0], a[1], a[2], a[3])
		return fmt.Sprintf("env -> %v", a), nil
	},
	MsgPoly: func(e *synth.Engine, m Message) (string, error) {
		e.SetPoly(int(m.Value))
		return fmt.Sprintf("poly -> %d", e.Params().Polyphony), nil
	},
	MsgDetune1: slotDetune(synth.Osc1),
	MsgDetune2: slotDetune(synth.Osc2),
	MsgGain1:   slotGain(synth.Osc1),
	MsgGain2:   slotGain(synth.Osc2),
	MsgFM1:     slotFM(synth.Osc1),
	MsgFM2:     slotFM(synth.Osc2),
	MsgFilter: func(e *synth.Engine, m Message) (string, error) {
		a, err := args(m, 2)
		if err != nil {
			return "", err
		}
		e.SetFilter(a[0], a[1])
		return fmt.Sprintf("filter -> cutoff:%g res:%g", a[0], a[1]), nil
	},
	MsgFilterEnv: func(e *synth.Engine, m Message) (string, error) {
		a, err := args(m, 4)
		if err != nil {
			return "", err
		}
		e.SetFilterEnv(a[0], a[1], a[2], a[3])
		return fmt.Sprintf("filter_env -> %v", a), nil
	},
	MsgFilterEnvAmount: func(e *synth.Engine, m Message) (string, error) {
		e.SetFilterEnvAmount(m.Value)
		return fmt.Sprintf("filter_env_amount -> %g", m.Value), nil
	},
	MsgLFORate: func(e *synth.Engine, m Message) (string, error) {
		e.SetLFORate(m.Value)
		return fmt.Sprintf("lfo_rate -> %g", m.Value), nil
	},
	MsgLFODest: func(e *synth.Engine, m Message) (string, error) {
		e.SetLFODestination(synth.Destination(int(m.Value)))
		return fmt.Sprintf("lfo_dest -> %s", e.Params().Route.Destination), nil
	},
	MsgLFOAmount: func(e *synth.Engine, m Message) (string, error) {
		e.SetLFOAmount(m.Value)
		return fmt.Sprintf("lfo_amount -> %g", m.Value), nil
	},
	MsgLFOAmountSemi: func(e *synth.Engine, m Message) (string, error) {
		e.SetLFOAmountSemitones(m.Value)
		return fmt.Sprintf("lfo_amount_semi -> %g", m.Value), nil
	},
}

func slotWave(s synth.Slot) handler {
	return func(e *synth.Engine, m Message) (string, error) {
		w := synth.Waveform(int(m.Value))
		e.SetWaveform(s, w)
		return fmt.Sprintf("wave%d -> %d", s+1, w), nil
	}
}

func slotDetune(s synth.Slot) handler {
	return func(e *synth.Engine, m Message) (string, error) {
		e.SetDetune(s, m.Value)
		return fmt.Sprintf("detune%d -> %g", s+1, m.Value), nil
	}
}

func slotGain(s synth.Slot) handler {
	return func(e *synth.Engine, m Message) (string, error) {
		e.SetGain(s, m.Value)
		return fmt.Sprintf("gain%d -> %g", s+1, m.Value), nil
	}
}

func slotFM(s synth.Slot) handler {
	return func(e *synth.Engine, m Message) (string, error) {
		a, err := args(m, 3)
		if err != nil {
			return "", err
		}
		e.SetFM(s, a[0], a[1], a[2])
		return fmt.Sprintf("fm%d -> car:%g mod:%g index:%g", s+1, a[0], a[1], a[2]), nil
	}
}

func args(m Message, n int) ([]float64, error) {
	if len(m.Args) < n {
		return nil, fmt.Errorf("%w: %s needs %d, got %d", ErrMissingArgs, m.Type, n, len(m.Args))
	}

	return m.Args[:n], nil
}
