// Package harmonics measures the harmonic content of single-cycle
// wavetables and rendered audio blocks.
package harmonics

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/window"
)

// DefaultMaxHarmonics is used when a caller passes maxHarmonics <= 0.
const DefaultMaxHarmonics = 64

// ErrEmptyInput is returned for zero-length input.
var ErrEmptyInput = errors.New("harmonics: empty input")

// Result holds per-harmonic amplitudes and derived distortion figures.
type Result struct {
	// Harmonics[n-1] is the peak amplitude of harmonic n; index 0 is the
	// fundamental.
	Harmonics []float64
	// OddSum and EvenSum are the summed power of the odd (3, 5, ...) and
	// even (2, 4, ...) overtones.
	OddSum  float64
	EvenSum float64
	// THD is the overtone RMS relative to the fundamental.
	THD float64
}

// Fundamental returns the amplitude of harmonic 1.
func (r Result) Fundamental() float64 {
	if len(r.Harmonics) == 0 {
		return 0
	}

	return r.Harmonics[0]
}

// Ratio returns the amplitude of harmonic n relative to the fundamental.
func (r Result) Ratio(n int) float64 {
	if n < 1 || n > len(r.Harmonics) || r.Harmonics[0] == 0 {
		return 0
	}

	return r.Harmonics[n-1] / r.Harmonics[0]
}

// AnalyzeCycle measures one exact period of a waveform, such as a wavetable.
// The length must be a power of two.
func AnalyzeCycle(cycle []float64, maxHarmonics int) (Result, error) {
	n := len(cycle)
	if n == 0 {
		return Result{}, ErrEmptyInput
	}

	if !isPowerOf2(n) {
		return Result{}, fmt.Errorf("harmonics: cycle length must be a power of two: %d", n)
	}

	mag, err := magnitudeSpectrum(cycle, n)
	if err != nil {
		return Result{}, err
	}
	vecmath.ScaleBlock(mag, mag, 2/float64(n))

	maxHarmonics = harmonicLimit(maxHarmonics, n/2-1)
	amps := make([]float64, maxHarmonics)
	copy(amps, mag[1:maxHarmonics+1])

	return summarize(amps), nil
}

// AnalyzeBlock measures a rendered block whose fundamental is fundamentalHz
// using a Hann window. See AnalyzeBlockWindow.
func AnalyzeBlock(block []float64, sampleRate, fundamentalHz float64, maxHarmonics int) (Result, error) {
	return AnalyzeBlockWindow(block, sampleRate, fundamentalHz, maxHarmonics, window.TypeHann)
}

// AnalyzeBlockWindow measures a rendered block whose fundamental is
// fundamentalHz. The block is windowed with win and zero-padded to a power
// of two; each harmonic is read from the largest bin within two bins of its
// nominal position. TypeFlatTop keeps amplitudes accurate when harmonics
// fall between bins.
func AnalyzeBlockWindow(block []float64, sampleRate, fundamentalHz float64, maxHarmonics int, win window.Type) (Result, error) {
	if len(block) == 0 {
		return Result{}, ErrEmptyInput
	}

	if sampleRate <= 0 || fundamentalHz <= 0 || fundamentalHz >= sampleRate/2 {
		return Result{}, fmt.Errorf("harmonics: fundamental %g Hz must be in (0, %g)", fundamentalHz, sampleRate/2)
	}

	coeffs := window.Generate(win, len(block))

	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return Result{}, fmt.Errorf("harmonics: %w", err)
	}

	windowed, err := window.ApplyCoefficients(block, coeffs)
	if err != nil {
		return Result{}, fmt.Errorf("harmonics: %w", err)
	}

	fftSize := nextPowerOf2(len(block))

	mag, err := magnitudeSpectrum(windowed, fftSize)
	if err != nil {
		return Result{}, err
	}
	vecmath.ScaleBlock(mag, mag, 2/(gain*float64(len(block))))

	binHz := sampleRate / float64(fftSize)
	nyquistBin := fftSize / 2

	// Largest h with h*f0 strictly below Nyquist.
	limit := int(math.Ceil(sampleRate/2/fundamentalHz)) - 1
	maxHarmonics = harmonicLimit(maxHarmonics, limit)

	amps := make([]float64, maxHarmonics)
	for h := 1; h <= maxHarmonics; h++ {
		center := int(math.Round(float64(h) * fundamentalHz / binHz))
		lo := max(center-2, 1)
		hi := min(center+2, nyquistBin)

		for k := lo; k <= hi; k++ {
			amps[h-1] = math.Max(amps[h-1], mag[k])
		}
	}

	return summarize(amps), nil
}

func summarize(amps []float64) Result {
	r := Result{Harmonics: amps}

	for i := 1; i < len(amps); i++ {
		p := amps[i] * amps[i]
		if (i+1)%2 == 0 {
			r.EvenSum += p
		} else {
			r.OddSum += p
		}
	}

	if f := r.Fundamental(); f > 0 {
		r.THD = math.Sqrt(r.OddSum+r.EvenSum) / f
	}

	return r
}

// magnitudeSpectrum returns |X[k]| for k in [0, size/2] of x zero-padded to size.
func magnitudeSpectrum(x []float64, size int) ([]float64, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("harmonics: fft plan: %w", err)
	}

	in := make([]complex128, size)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("harmonics: fft: %w", err)
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

func harmonicLimit(requested, available int) int {
	if requested <= 0 {
		requested = DefaultMaxHarmonics
	}

	return max(min(requested, available), 1)
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
