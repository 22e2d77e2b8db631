//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-synth/internal/webdemo"
)

var (
	host  *webdemo.Host
	funcs []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if host != nil {
			host.Close()
		}
		h, err := webdemo.NewHost(sr)
		if err != nil {
			return err.Error()
		}
		host = h
		return eventObject(h.Ready())
	}))

	api.Set("shutdown", export(func(args []js.Value) any {
		if host != nil {
			host.Close()
			host = nil
		}
		return js.Null()
	}))

	// message takes the worklet's {type, value, midi, velocity, args} objects.
	api.Set("message", export(func(args []js.Value) any {
		if host == nil || len(args) < 1 {
			return js.Null()
		}
		ev, err := host.Dispatch(decodeMessage(args[0]))
		if err != nil {
			return err.Error()
		}
		return eventObject(ev)
	}))

	// Direct calls mirror the control surface under its original names.
	direct := map[string]string{
		"set_wave":          webdemo.MsgWave,
		"set_wave1":         webdemo.MsgWave1,
		"set_wave2":         webdemo.MsgWave2,
		"set_amp":           webdemo.MsgAmp,
		"set_freq":          webdemo.MsgFreq,
		"set_poly":          webdemo.MsgPoly,
		"set_detune1":       webdemo.MsgDetune1,
		"set_detune2":       webdemo.MsgDetune2,
		"set_gain1":         webdemo.MsgGain1,
		"set_gain2":         webdemo.MsgGain2,
		"filter_env_amount": webdemo.MsgFilterEnvAmount,
		"lfo_set":           webdemo.MsgLFORate,
		"lfo_dest":          webdemo.MsgLFODest,
		"lfo_amount":        webdemo.MsgLFOAmount,
		"lfo_amount_semi":   webdemo.MsgLFOAmountSemi,
	}
	for name, typ := range direct {
		api.Set(name, export(func(args []js.Value) any {
			if host == nil || len(args) < 1 {
				return js.Null()
			}
			host.Dispatch(webdemo.Message{Type: typ, Value: args[0].Float()})
			return js.Null()
		}))
	}

	multi := map[string]string{
		"set_env":    webdemo.MsgEnv,
		"fm1":        webdemo.MsgFM1,
		"fm2":        webdemo.MsgFM2,
		"filter_set": webdemo.MsgFilter,
		"filter_env": webdemo.MsgFilterEnv,
	}
	for name, typ := range multi {
		api.Set(name, export(func(args []js.Value) any {
			if host == nil {
				return js.Null()
			}
			m := webdemo.Message{Type: typ, Args: make([]float64, len(args))}
			for i := range args {
				m.Args[i] = args[i].Float()
			}
			if _, err := host.Dispatch(m); err != nil {
				return err.Error()
			}
			return js.Null()
		}))
	}

	api.Set("note_on", export(func(args []js.Value) any {
		if host == nil || len(args) < 1 {
			return -1
		}
		vel := 1.0
		if len(args) > 1 {
			vel = args[1].Float()
		}
		return host.Engine().NoteOn(args[0].Int(), vel)
	}))

	api.Set("note_off", export(func(args []js.Value) any {
		if host != nil {
			host.Engine().NoteOff()
		}
		return js.Null()
	}))

	api.Set("note_off_midi", export(func(args []js.Value) any {
		if host != nil && len(args) > 0 {
			host.Engine().NoteOffMIDI(args[0].Int())
		}
		return js.Null()
	}))

	// render returns {samples, metrics}; metrics is null between reports.
	api.Set("render", export(func(args []js.Value) any {
		out := js.Global().Get("Object").New()
		if host == nil || len(args) < 1 {
			out.Set("samples", js.Global().Get("Float32Array").New(0))
			out.Set("metrics", js.Null())
			return out
		}
		block, ev, ok := host.Process(args[0].Int())
		out.Set("samples", float32Array(block))
		if ok {
			out.Set("metrics", eventObject(ev))
		} else {
			out.Set("metrics", js.Null())
		}
		return out
	}))

	api.Set("renderTone", export(func(args []js.Value) any {
		if host == nil || len(args) < 2 {
			return js.Global().Get("Float32Array").New(0)
		}
		return float32Array(host.RenderTone(args[0].Float(), args[1].Float()))
	}))

	js.Global().Set("AlgoSynth", api)
	select {}
}

func decodeMessage(v js.Value) webdemo.Message {
	m := webdemo.Message{Type: v.Get("type").String(), Velocity: 1}
	if x := v.Get("value"); x.Type() == js.TypeNumber {
		m.Value = x.Float()
	}
	if x := v.Get("midi"); x.Type() == js.TypeNumber {
		m.MIDI = x.Int()
	}
	if x := v.Get("velocity"); x.Type() == js.TypeNumber {
		m.Velocity = x.Float()
	}
	if x := v.Get("args"); x.Type() == js.TypeObject {
		m.Args = make([]float64, x.Length())
		for i := range m.Args {
			m.Args[i] = x.Index(i).Float()
		}
	}
	return m
}

func eventObject(ev webdemo.Event) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("type", ev.Type)
	switch ev.Type {
	case webdemo.EventMetrics:
		obj.Set("frames", ev.Frames)
		obj.Set("rms", ev.RMS)
		obj.Set("peak", ev.Peak)
	default:
		obj.Set("msg", ev.Msg)
	}
	return obj
}

func float32Array(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i := range buf {
		arr.SetIndex(i, buf[i])
	}
	return arr
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
