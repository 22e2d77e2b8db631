package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-synth/internal/audioout"
	"github.com/cwbudde/algo-synth/internal/midifile"
	"github.com/cwbudde/algo-synth/measure/meter"
	"github.com/cwbudde/algo-synth/synth"
)

type renderJob struct {
	cfg       config
	midiPath  string
	wave      int
	cutoff    float64
	resonance float64
}

func (j renderJob) events() ([]midifile.Event, error) {
	sr := float64(j.cfg.SampleRate)
	if j.midiPath != "" {
		return midifile.ReadFile(j.midiPath, sr)
	}

	var buf bytes.Buffer
	if err := midifile.WriteDemo(&buf); err != nil {
		return nil, err
	}

	return midifile.Read(&buf, sr)
}

func (j renderJob) engine() (*synth.Engine, error) {
	p := synth.DefaultParams()
	p.Polyphony = j.cfg.Polyphony
	p.FilterCutoffHz = j.cutoff
	p.FilterResonance = j.resonance
	for s := range p.Osc {
		p.Osc[s].Waveform = synth.Waveform(j.wave)
	}

	e, err := synth.New(synth.WithLogger(logger), synth.WithParams(p))
	if err != nil {
		return nil, err
	}

	if err := e.Init(float64(j.cfg.SampleRate), j.cfg.TableSize); err != nil {
		return nil, err
	}

	return e, nil
}

// prepare builds the engine and a sequencer over the job's events and
// returns the total frame count including the tail.
func (j renderJob) prepare() (*synth.Engine, *midifile.Sequencer, int, error) {
	events, err := j.events()
	if err != nil {
		return nil, nil, 0, err
	}

	engine, err := j.engine()
	if err != nil {
		return nil, nil, 0, err
	}

	tail := int(math.Ceil(j.cfg.TailSeconds * float64(j.cfg.SampleRate)))
	total := midifile.Length(events) + tail

	logger.Debug("render prepared",
		"events", len(events),
		"frames", total,
		"sample_rate", j.cfg.SampleRate,
		"block", j.cfg.BlockSize,
	)

	return engine, midifile.NewSequencer(events), total, nil
}

func (j renderJob) writeWAV() (err error) {
	engine, seq, total, err := j.prepare()
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	f, err := os.Create(j.cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	w, err := audioout.NewWAVWriter(f, j.cfg.SampleRate)
	if err != nil {
		return err
	}

	// One level report per second of audio.
	m, err := meter.New(max(j.cfg.SampleRate/j.cfg.BlockSize, 1))
	if err != nil {
		return err
	}

	block := make([]float32, j.cfg.BlockSize)
	var peak float32

	for seq.Frame() < total {
		buf := block[:min(len(block), total-seq.Frame())]
		seq.Render(engine, buf)

		if err := w.Write(buf); err != nil {
			return err
		}

		if lvl, ok := m.Process(buf); ok {
			peak = max(peak, lvl.Peak)
			logger.Debug("level",
				"second", seq.Frame()/j.cfg.SampleRate,
				"rms_dbfs", lvl.RMSdBFS(),
				"peak_dbfs", lvl.PeakdBFS(),
			)
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	logger.Info("wrote wav",
		"path", j.cfg.Output,
		"frames", w.Frames(),
		"seconds", float64(w.Frames())/float64(j.cfg.SampleRate),
		"peak_dbfs", meter.Level{Peak: peak}.PeakdBFS(),
		"clipped", w.Clipped(),
	)

	return nil
}

func (j renderJob) play() error {
	engine, seq, total, err := j.prepare()
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	src := audioout.SourceFunc(func(dst []float32) {
		seq.Render(engine, dst)
	})

	p, err := audioout.NewPlayer(src, j.cfg.SampleRate, j.cfg.BlockSize)
	if err != nil {
		return err
	}

	d := time.Duration(total) * time.Second / time.Duration(j.cfg.SampleRate)
	logger.Info("playing", "seconds", d.Seconds())
	time.Sleep(d)

	return p.Close()
}

func exportDemo(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return midifile.WriteDemo(f)
}
