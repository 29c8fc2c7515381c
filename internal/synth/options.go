package synth

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source. The same seed and sizes always produce
// the same contests.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithContests sets how many contests are produced.
func WithContests(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.contests = n
		}
	}
}

// WithOldContests sets how many of the leading contests predate the rating
// system.
func WithOldContests(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.oldContests = n
		}
	}
}

// WithContestants sets the size of the contestant pool.
func WithContestants(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.contestants = n
		}
	}
}

// WithTasks sets the number of tasks per contest (at most 26).
func WithTasks(n int) Option {
	return func(g *Generator) {
		if n > 0 && n <= 26 {
			g.tasks = n
		}
	}
}

// WithParticipation sets the chance a contestant enters a given contest.
func WithParticipation(p float64) Option {
	return func(g *Generator) {
		if p > 0 && p <= 1 {
			g.participation = p
		}
	}
}
