package rating

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParallelism bounds how many per-contestant solves of one contest run
// at once. Results do not depend on it.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}
