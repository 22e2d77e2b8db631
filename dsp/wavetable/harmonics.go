package wavetable

// DefaultPartials is the number of partials summed for additive shapes.
const DefaultPartials = 32

// HarmonicSeries returns additive-synthesis coefficients with amplitude 1/n.
//
// The result is indexed by harmonic number minus one, so coeffs[0] is the
// fundamental. With oddOnly set, even harmonics are kept as explicit zeros and
// the series continues until partials odd harmonics have been collected; the
// returned slice then has length 2*partials-1.
func HarmonicSeries(partials int, oddOnly bool) []float64 {
	if partials <= 0 {
		return nil
	}

	highest := partials
	if oddOnly {
		highest = 2*partials - 1
	}

	coeffs := make([]float64, highest)
	for n := 1; n <= highest; n++ {
		if oddOnly && n%2 == 0 {
			continue
		}
		coeffs[n-1] = 1 / float64(n)
	}

	return coeffs
}
