package synth

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-synth/dsp/filter/moog"
)

// Option configures an Engine at construction.
type Option func(*config) error

type config struct {
	logger        *slog.Logger
	params        Params
	filterVariant moog.Variant
}

func defaultConfig() config {
	return config{
		logger:        slog.New(slog.DiscardHandler),
		params:        DefaultParams(),
		filterVariant: moog.VariantHuovilainen,
	}
}

// WithLogger sets the logger for control-path events. Render never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return fmt.Errorf("synth: logger must not be nil")
		}

		cfg.logger = logger

		return nil
	}
}

// WithParams replaces the initial parameter store. Values are sanitized the
// same way the setters sanitize them.
func WithParams(p Params) Option {
	return func(cfg *config) error {
		cfg.params = p
		return nil
	}
}

// WithFilterVariant selects the ladder model used by every voice filter.
func WithFilterVariant(variant moog.Variant) Option {
	return func(cfg *config) error {
		if variant.String() == "unknown" {
			return fmt.Errorf("synth: invalid filter variant: %d", variant)
		}

		cfg.filterVariant = variant

		return nil
	}
}
