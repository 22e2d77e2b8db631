package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-synth/synth"
)

// config holds host and render settings. Patch parameters are not part of it.
type config struct {
	SampleRate  int     `yaml:"sample_rate"`
	TableSize   int     `yaml:"table_size"`
	BlockSize   int     `yaml:"block_size"`
	Polyphony   int     `yaml:"polyphony"`
	TailSeconds float64 `yaml:"tail_seconds"`
	Output      string  `yaml:"output"`
}

func defaultConfig() config {
	return config{
		SampleRate:  48000,
		TableSize:   synth.DefaultTableSize,
		BlockSize:   256,
		Polyphony:   synth.DefaultParams().Polyphony,
		TailSeconds: 1,
		Output:      "out.wav",
	}
}

// loadConfig overlays the YAML file at path on the defaults. Unknown keys
// are rejected. An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// applyFlags copies the values of flags set on the command line over cfg.
func applyFlags(cfg *config, fs *flag.FlagSet, f *flags) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "sr":
			cfg.SampleRate = f.sampleRate
		case "table":
			cfg.TableSize = f.tableSize
		case "block":
			cfg.BlockSize = f.blockSize
		case "poly":
			cfg.Polyphony = f.polyphony
		case "tail":
			cfg.TailSeconds = f.tailSeconds
		case "o":
			cfg.Output = f.output
		}
	})
}

func (c config) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample_rate must be > 0: %d", c.SampleRate)
	case c.BlockSize <= 0:
		return fmt.Errorf("block_size must be > 0: %d", c.BlockSize)
	case c.TailSeconds < 0:
		return fmt.Errorf("tail_seconds must be >= 0: %g", c.TailSeconds)
	}

	return nil
}
