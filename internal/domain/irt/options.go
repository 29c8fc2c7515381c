package irt

// Option applies a configuration option to the Fitter.
type Option func(*Fitter)

// WithMinSamples sets the smallest dataset either sub-model is fit on.
func WithMinSamples(n int) Option {
	return func(f *Fitter) {
		if n > 1 {
			f.minSamples = n
		}
	}
}

// WithMaxDifficulty sets the difficulty above which a fit is rejected.
func WithMaxDifficulty(d float64) Option {
	return func(f *Fitter) {
		if d > 0 {
			f.maxDifficulty = d
		}
	}
}
