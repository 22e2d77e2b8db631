package moog

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultCutoffHz       = 1000.0
	defaultResonance      = 0.8
	defaultDrive          = 1.0
	defaultThermalVoltage = 5.0

	minCutoffHz       = 1.0
	maxCutoffRatio    = 0.49
	maxResonance      = 4.0
	minDrive          = 0.1
	maxDrive          = 24.0
	minThermalVoltage = 0.1
	maxThermalVoltage = 10.0

	stateLimit = 32.0
)

// Variant selects the nonlinear ladder processing model.
type Variant int

const (
	// VariantClassic runs four tanh stages with direct last-stage feedback.
	VariantClassic Variant = iota
	// VariantClassicLightweight replaces tanh with a rational approximation.
	VariantClassicLightweight
	// VariantHuovilainen applies Huovilainen tuning and resonance compensation.
	VariantHuovilainen
)

func (v Variant) String() string {
	switch v {
	case VariantClassic:
		return "classic"
	case VariantClassicLightweight:
		return "classic_lightweight"
	case VariantHuovilainen:
		return "huovilainen"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant         Variant
	cutoffHz        float64
	resonance       float64
	drive           float64
	thermalVoltage  float64
	normalizeOutput bool
}

func defaultConfig() config {
	return config{
		variant:        VariantHuovilainen,
		cutoffHz:       defaultCutoffHz,
		resonance:      defaultResonance,
		drive:          defaultDrive,
		thermalVoltage: defaultThermalVoltage,
	}
}

// WithVariant selects the nonlinear ladder variant.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if !validVariant(variant) {
			return fmt.Errorf("moog: invalid variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithCutoffHz sets cutoff in Hz. Must be finite and >= 1.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
			return err
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets feedback resonance in [0, 4].
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(resonance, 0, maxResonance, "resonance"); err != nil {
			return err
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithDrive sets nonlinear drive in [0.1, 24].
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(drive, minDrive, maxDrive, "drive"); err != nil {
			return err
		}

		cfg.drive = drive

		return nil
	}
}

// WithThermalVoltage sets thermal-voltage-style shaping in [0.1, 10].
func WithThermalVoltage(thermalVoltage float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(thermalVoltage, minThermalVoltage, maxThermalVoltage, "thermal voltage"); err != nil {
			return err
		}

		cfg.thermalVoltage = thermalVoltage

		return nil
	}
}

// WithNormalizeOutput enables passband compensation for the level lost to
// resonance feedback. Disabled by default.
func WithNormalizeOutput(enabled bool) Option {
	return func(cfg *config) error {
		cfg.normalizeOutput = enabled
		return nil
	}
}

// Filter is a nonlinear 4-stage Moog ladder low-pass processor.
type Filter struct {
	sampleRate float64

	variant         Variant
	cutoffHz        float64
	resonance       float64
	drive           float64
	thermalVoltage  float64
	normalizeOutput bool

	coefficient float64
	feedback    float64
	driveScale  float64
	outputScale float64

	stage      [4]float64
	tanhLast   [3]float64
	prevOutput float64
}

// New constructs a nonlinear Moog ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("moog: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate:      sampleRate,
		variant:         cfg.variant,
		cutoffHz:        cfg.cutoffHz,
		resonance:       cfg.resonance,
		drive:           cfg.drive,
		thermalVoltage:  cfg.thermalVoltage,
		normalizeOutput: cfg.normalizeOutput,
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	f.rebuild()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the nonlinear ladder variant.
func (f *Filter) Variant() Variant { return f.variant }

// CutoffHz returns the cutoff frequency in Hz.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the feedback resonance.
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns nonlinear drive.
func (f *Filter) Drive() float64 { return f.drive }

// ThermalVoltage returns the thermal-voltage-style shaping parameter.
func (f *Filter) ThermalVoltage() float64 { return f.thermalVoltage }

// NormalizeOutput reports whether resonance compensation is enabled.
func (f *Filter) NormalizeOutput() bool { return f.normalizeOutput }

// MaxCutoffHz returns the highest cutoff accepted at the current sample rate.
func (f *Filter) MaxCutoffHz() float64 { return f.sampleRate * maxCutoffRatio }

// SetVariant updates the ladder variant and rebuilds coefficients.
func (f *Filter) SetVariant(variant Variant) error {
	if !validVariant(variant) {
		return fmt.Errorf("moog: invalid variant: %d", variant)
	}

	f.variant = variant
	f.rebuild()

	return nil
}

// SetCutoffHz updates cutoff and rebuilds coefficients.
func (f *Filter) SetCutoffHz(cutoffHz float64) error {
	if err := f.validateCutoff(cutoffHz); err != nil {
		return err
	}

	f.cutoffHz = cutoffHz
	f.rebuild()

	return nil
}

// SetResonance updates resonance and rebuilds coefficients.
func (f *Filter) SetResonance(resonance float64) error {
	if err := validateFiniteRange(resonance, 0, maxResonance, "resonance"); err != nil {
		return err
	}

	f.resonance = resonance
	f.rebuild()

	return nil
}

// SetDrive updates nonlinear drive.
func (f *Filter) SetDrive(drive float64) error {
	if err := validateFiniteRange(drive, minDrive, maxDrive, "drive"); err != nil {
		return err
	}

	f.drive = drive
	f.driveScale = 0.5 * f.drive / f.thermalVoltage

	return nil
}

// SetThermalVoltage updates shaping and rebuilds coefficients.
func (f *Filter) SetThermalVoltage(thermalVoltage float64) error {
	if err := validateFiniteRange(thermalVoltage, minThermalVoltage, maxThermalVoltage, "thermal voltage"); err != nil {
		return err
	}

	f.thermalVoltage = thermalVoltage
	f.rebuild()

	return nil
}

// SetNormalizeOutput enables or disables resonance compensation.
func (f *Filter) SetNormalizeOutput(enabled bool) {
	f.normalizeOutput = enabled
	f.updateOutputScale()
}

// Tune sets cutoff and resonance from a modulation source. Cutoff is clamped
// to [1, MaxCutoffHz] and resonance to [0, 4]; non-finite values keep the
// current setting. Coefficients are rebuilt only when a value changed.
func (f *Filter) Tune(cutoffHz, resonance float64) {
	if !core.IsFinite(cutoffHz) {
		cutoffHz = f.cutoffHz
	}
	if !core.IsFinite(resonance) {
		resonance = f.resonance
	}

	cutoffHz = core.Clamp(cutoffHz, minCutoffHz, f.MaxCutoffHz())
	resonance = core.Clamp(resonance, 0, maxResonance)

	if cutoffHz == f.cutoffHz && resonance == f.resonance {
		return
	}

	f.cutoffHz = cutoffHz
	f.resonance = resonance
	f.rebuild()
}

// Reset clears ladder state.
func (f *Filter) Reset() {
	f.stage = [4]float64{}
	f.tanhLast = [3]float64{}
	f.prevOutput = 0
}

// ProcessSample processes one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	var out float64

	switch f.variant {
	case VariantClassic:
		out = f.processClassic(input, math.Tanh)
	case VariantClassicLightweight:
		out = f.processClassic(input, fastTanhApprox)
	case VariantHuovilainen:
		out = f.processHuovilainen(input)
	}

	return sanitizeOutput(out)
}

// ProcessInPlace processes a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

func (f *Filter) processClassic(input float64, tanhFn func(float64) float64) float64 {
	s := &f.stage
	t := &f.tanhLast
	g := f.coefficient
	shape := f.driveScale

	x := tanhFn(shape * (input - f.feedback*s[3]))

	s[0] = clipState(s[0] + g*(x-t[0]))
	t[0] = tanhFn(shape * s[0])

	s[1] = clipState(s[1] + g*(t[0]-t[1]))
	t[1] = tanhFn(shape * s[1])

	s[2] = clipState(s[2] + g*(t[1]-t[2]))
	t[2] = tanhFn(shape * s[2])

	s[3] = clipState(s[3] + g*(t[2]-tanhFn(shape*s[3])))
	f.prevOutput = s[3]

	return f.outputScale * s[3]
}

func (f *Filter) processHuovilainen(input float64) float64 {
	s := &f.stage
	t := &f.tanhLast
	g := f.coefficient
	shape := f.driveScale

	feedbackSample := 0.5 * (s[3] + f.prevOutput)
	x := math.Tanh(shape * (input - f.feedback*feedbackSample))

	s[0] = clipState(s[0] + g*(x-math.Tanh(shape*s[0])))
	t[0] = math.Tanh(shape * s[0])

	s[1] = clipState(s[1] + g*(t[0]-math.Tanh(shape*s[1])))
	t[1] = math.Tanh(shape * s[1])

	s[2] = clipState(s[2] + g*(t[1]-math.Tanh(shape*s[2])))
	t[2] = math.Tanh(shape * s[2])

	f.prevOutput = s[3]
	s[3] = clipState(s[3] + g*(t[2]-math.Tanh(shape*s[3])))

	return f.outputScale * s[3]
}

func (f *Filter) validate() error {
	if !validVariant(f.variant) {
		return fmt.Errorf("moog: invalid variant: %d", f.variant)
	}

	if err := f.validateCutoff(f.cutoffHz); err != nil {
		return err
	}

	if err := validateFiniteRange(f.resonance, 0, maxResonance, "resonance"); err != nil {
		return err
	}

	if err := validateFiniteRange(f.drive, minDrive, maxDrive, "drive"); err != nil {
		return err
	}

	return validateFiniteRange(f.thermalVoltage, minThermalVoltage, maxThermalVoltage, "thermal voltage")
}

func (f *Filter) validateCutoff(cutoffHz float64) error {
	if err := validateFiniteRange(cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
		return err
	}

	if limit := f.MaxCutoffHz(); cutoffHz > limit {
		return fmt.Errorf("moog: cutoff must be <= %f Hz: %f", limit, cutoffHz)
	}

	return nil
}

// rebuild derives coefficients from validated parameters.
func (f *Filter) rebuild() {
	fc := f.cutoffHz / f.sampleRate
	f.driveScale = 0.5 * f.drive / f.thermalVoltage
	f.feedback = f.resonance
	f.coefficient = 2 * f.thermalVoltage * (1 - math.Exp(-2*math.Pi*fc))

	if f.variant == VariantHuovilainen {
		fcr := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
		if fcr < 0 {
			fcr = 0
		}

		f.coefficient = 2 * f.thermalVoltage * (1 - math.Exp(-2*math.Pi*fcr*fc))

		resonanceComp := -3.9364*fc*fc + 1.8409*fc + 0.9968
		if resonanceComp < 0 {
			resonanceComp = 0
		}

		f.feedback = f.resonance * resonanceComp
	}

	f.updateOutputScale()
}

func (f *Filter) updateOutputScale() {
	f.outputScale = 1
	if f.normalizeOutput {
		f.outputScale = 1 + 0.5*f.resonance
	}
}

func validVariant(variant Variant) bool {
	return variant >= VariantClassic && variant <= VariantHuovilainen
}

func validateFiniteRange(value, min, max float64, name string) error {
	if !core.IsFinite(value) {
		return fmt.Errorf("moog: %s must be finite: %v", name, value)
	}

	if value < min || value > max {
		return fmt.Errorf("moog: %s must be in [%g, %g]: %f", name, min, max, value)
	}

	return nil
}

func sanitizeOutput(value float64) float64 {
	if !core.IsFinite(value) {
		return 0
	}

	return value
}

// clipState bounds a ladder stage and flushes decaying tails to zero.
func clipState(value float64) float64 {
	return core.FlushDenormals(core.Clamp(value, -stateLimit, stateLimit))
}

func fastTanhApprox(x float64) float64 {
	if x > 3 {
		return 1
	}

	if x < -3 {
		return -1
	}

	x2 := x * x

	return core.Clamp(x*(27+x2)/(27+9*x2), -1, 1)
}
