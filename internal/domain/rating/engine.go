// Package rating replays contest standings into per-contestant performance
// histories and derives ratings from them.
package rating

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/domain/numeric"
	"golang.org/x/sync/errgroup"
)

const (
	historyDecay       = 0.9
	firstContestSpread = 1.5
	perfScale          = 800.0
)

// PerformanceRecord is one contestant's result in one processed contest.
type PerformanceRecord struct {
	Contestant string
	ContestID  string
	// Raw is the solved performance.
	Raw float64
	// Capped is Raw limited to the contest's rating bound; ratings are
	// aggregated from it.
	Capped float64
}

// Update summarises one processed contest.
type Update struct {
	ContestID string
	// Qualified counts contestants that entered the performance solve.
	Qualified int
	// Evaluations is how many distinct midpoints the solve evaluated.
	Evaluations int
	Records     []PerformanceRecord
}

// Engine holds every contestant's performance history. It is not safe for
// concurrent use; contests must be processed one at a time in start order.
type Engine struct {
	history     map[string][]PerformanceRecord
	parallelism int
}

// New constructs an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		history:     make(map[string][]PerformanceRecord),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Empty reports whether no performance has been recorded yet. The caller
// uses it to flag the first contest ever processed.
func (e *Engine) Empty() bool {
	return len(e.history) == 0
}

// ProcessContest solves performances for the qualified contestants of one
// contest, given in rank order, and appends them to their histories.
// firstEver widens every performance around the default by 1.5x.
func (e *Engine) ProcessContest(contestID string, ranking []string, t contest.Type, firstEver bool) (Update, error) {
	if _, ok := contest.TypeOf(t.Kind); !ok {
		return Update{}, fmt.Errorf("%w: contest %s has kind %s", ErrUnratedContest, contestID, t.Kind)
	}
	seen := make(map[string]struct{}, len(ranking))
	qualified := make([]string, 0, len(ranking))
	for _, c := range ranking {
		if _, dup := seen[c]; dup {
			return Update{}, fmt.Errorf("%w: contest %s: %s", ErrDuplicateContestant, contestID, c)
		}
		seen[c] = struct{}{}
		r, _ := e.Rating(c)
		if r <= t.QualifiedBound {
			qualified = append(qualified, c)
		}
	}

	aPerfs := make([]float64, len(qualified))
	for i, c := range qualified {
		aPerfs[i] = e.APerf(c, t)
	}

	s := newScratch(aPerfs)
	perfs := make([]float64, len(qualified))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i := range qualified {
		g.Go(func() error {
			perfs[i] = s.solve(float64(i) + 0.5)
			return nil
		})
	}
	_ = g.Wait()

	upd := Update{
		ContestID:   contestID,
		Qualified:   len(qualified),
		Evaluations: s.size(),
		Records:     make([]PerformanceRecord, 0, len(qualified)),
	}
	for i, c := range qualified {
		perf := perfs[i]
		if firstEver {
			perf = (perf-t.DefaultPerf)*firstContestSpread + t.DefaultPerf
		}
		rec := PerformanceRecord{
			Contestant: c,
			ContestID:  contestID,
			Raw:        perf,
			Capped:     math.Min(perf, t.RatingBound),
		}
		e.history[c] = append(e.history[c], rec)
		upd.Records = append(upd.Records, rec)
	}
	return upd, nil
}

// CompetitionCount is the number of performances recorded for c.
func (e *Engine) CompetitionCount(c string) int {
	return len(e.history[c])
}

// Rating returns c's displayed rating. ok is false when c has never
// competed; such a contestant has no rating at all.
func (e *Engine) Rating(c string) (rating float64, ok bool) {
	recs := e.history[c]
	if len(recs) == 0 {
		return 0, false
	}
	var expSum, weightSum float64
	weight := 1.0
	for i := len(recs) - 1; i >= 0; i-- {
		expSum += math.Exp2(recs[i].Capped/perfScale) * weight
		weightSum += weight
		weight *= historyDecay
	}
	raw := math.Log2(expSum/weightSum) * perfScale
	return numeric.DisplayRating(raw, len(recs)), true
}

// APerf is the decayed average of c's raw performances, or the contest
// type's default for a newcomer.
func (e *Engine) APerf(c string, t contest.Type) float64 {
	recs := e.history[c]
	if len(recs) == 0 {
		return t.DefaultPerf
	}
	var perfSum, weightSum float64
	weight := 1.0
	for i := len(recs) - 1; i >= 0; i-- {
		perfSum += recs[i].Raw * weight
		weightSum += weight
		weight *= historyDecay
	}
	return perfSum / weightSum
}

// History returns a copy of c's performance records, oldest first.
func (e *Engine) History(c string) []PerformanceRecord {
	recs := e.history[c]
	out := make([]PerformanceRecord, len(recs))
	copy(out, recs)
	return out
}

// Contestants lists every contestant with at least one performance, sorted.
func (e *Engine) Contestants() []string {
	out := make([]string, 0, len(e.history))
	for c := range e.history {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Ratings snapshots the rating of every active contestant.
func (e *Engine) Ratings() map[string]float64 {
	out := make(map[string]float64, len(e.history))
	for c := range e.history {
		if r, ok := e.Rating(c); ok {
			out[c] = r
		}
	}
	return out
}
