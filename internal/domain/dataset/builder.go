// Package dataset turns contest standings into per-problem fit inputs.
//
// A Builder is fed contests in start order. For every contest it decides
// which rating and contest count stand for each contestant at contest time,
// extracts per-task outcomes and solve times, and accumulates them per
// problem. Problems that appear in several contests collect rows from all
// of them.
package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/internal/domain/numeric"
	"github.com/okian/ratefit/internal/domain/rating"
)

const (
	penaltyNanos = int64(5 * 60 * 1e9)
	nanosPerSec  = 1e9
)

// Skip reasons reported in Summary.Skipped.
const (
	SkipExisting     = "all problems already modelled"
	SkipNoRatings    = "no participant has a rating"
	SkipNoPartakers  = "no participants"
	SkipUnratedKind  = "contest type is unrated"
	SkipNoNewProblem = "no problems to model"
)

// row is one contestant's view of one problem, frozen at contest time.
type row struct {
	rating    float64
	prev      int
	isRated   bool
	retreated bool
	score     float64
	accepted  bool
	elapsed   int64 // contest-relative nanos of the scoring submission; -1 if none
	taskTime  int64 // nanos spent on this task; -1 if none
}

type problemRows struct {
	rows         []row
	experimental bool
}

// Job is the fit input for one problem.
type Job struct {
	Problem      irt.Problem
	Experimental bool
}

// Summary describes what AddContest did with one contest.
type Summary struct {
	ContestID string
	Type      contest.Type
	// Participants is the ranking passed to the rating engine.
	Participants int
	// Problems counts problems that received rows from this contest.
	Problems int
	// Skipped is non-empty when no rows were extracted.
	Skipped string
	// Emulated is true when ratings came from the engine instead of the
	// standings.
	Emulated bool
	// RatingUpdate is set when the engine processed the contest.
	RatingUpdate *rating.Update
}

// Builder accumulates problem datasets across contests. It is not safe for
// concurrent use.
type Builder struct {
	engine     *rating.Engine
	classifier *classify.Classifier
	existing   map[string]struct{}
	recompute  bool

	history     map[string]map[string]struct{}
	lastNonzero map[string]float64
	problems    map[string]*problemRows
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		existing:    map[string]struct{}{},
		history:     make(map[string]map[string]struct{}),
		lastNonzero: make(map[string]float64),
		problems:    make(map[string]*problemRows),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.engine == nil {
		b.engine = rating.New()
	}
	if b.classifier == nil {
		b.classifier = classify.Default()
	}
	return b
}

// Tasks lists a contest's tasks, falling back to the tasks seen in its
// standings when the contest does not list them.
func Tasks(c contest.Contest) []string {
	if len(c.Tasks) > 0 {
		return c.Tasks
	}
	seen := map[string]struct{}{}
	for _, s := range c.Standings {
		for task := range s.TaskResults {
			seen[task] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for task := range seen {
		out = append(out, task)
	}
	sort.Strings(out)
	return out
}

// Ranking lists the contestants that take part in the performance solve:
// everyone who submitted, restricted to rated participants when the
// contest is rated.
func Ranking(c contest.Contest, t contest.Type) []string {
	out := make([]string, 0, len(c.Standings))
	for _, s := range c.Standings {
		if !s.Retreated() && (s.IsRated || !t.IsRated) {
			out = append(out, s.Contestant)
		}
	}
	return out
}

// AddContest extracts problem rows from c. Standings must be normalized and
// contests must arrive in start order. Contestant histories and emulated
// ratings advance for every typed contest, including ones whose rows are
// skipped, so they depend only on the contest sequence.
func (b *Builder) AddContest(c contest.Contest, t contest.Type) (Summary, error) {
	sum := Summary{ContestID: c.ID, Type: t}
	if _, ok := contest.TypeOf(t.Kind); !ok {
		sum.Skipped = SkipUnratedKind
		return sum, nil
	}

	var problems []string
	allExisting := true
	for _, task := range Tasks(c) {
		if b.classifier.Prohibited(task) {
			continue
		}
		problems = append(problems, task)
		if _, ok := b.existing[task]; !ok {
			allExisting = false
		}
	}

	ranking := Ranking(c, t)
	sum.Participants = len(ranking)
	ratings, prev := b.covariates(c, t, ranking)

	switch {
	case len(problems) > 0 && allExisting:
		sum.Skipped = SkipExisting
	case len(c.Standings) == 0:
		sum.Skipped = SkipNoPartakers
	case !b.recompute && allZeroRatings(c.Standings):
		sum.Skipped = SkipNoRatings
	default:
		sum.Emulated = b.recompute && t.IsOld()
		b.extract(c, problems, ratings, prev, &sum)
	}

	if b.recompute && t.IsOld() && len(ranking) > 0 {
		upd, err := b.engine.ProcessContest(c.ID, ranking, t, b.engine.Empty())
		if err != nil {
			return sum, fmt.Errorf("rate contest %s: %w", c.ID, err)
		}
		sum.RatingUpdate = &upd
	}
	return sum, nil
}

func allZeroRatings(standings []contest.Standing) bool {
	for _, s := range standings {
		if s.OldRating != 0 {
			return false
		}
	}
	return true
}

// covariates returns the rating and previous contest count that stand for
// each standings row at contest time.
func (b *Builder) covariates(c contest.Contest, t contest.Type, ranking []string) (ratings []float64, prev []int) {
	ratings = make([]float64, len(c.Standings))
	prev = make([]int, len(c.Standings))
	if !b.recompute {
		for i, s := range c.Standings {
			ratings[i], prev[i] = s.OldRating, s.Competitions
		}
		return ratings, prev
	}

	if t.IsOld() {
		for i, s := range c.Standings {
			n := b.engine.CompetitionCount(s.Contestant)
			prev[i] = n
			if n > 0 {
				ratings[i], _ = b.engine.Rating(s.Contestant)
			}
		}
		return ratings, prev
	}

	for _, id := range ranking {
		h := b.history[id]
		if h == nil {
			h = make(map[string]struct{})
			b.history[id] = h
		}
		h[c.ID] = struct{}{}
	}
	for i, s := range c.Standings {
		r := s.OldRating
		if r == 0 {
			// A zero means the contestant did not take part; fall back to
			// the last rating we saw.
			r = b.lastNonzero[s.Contestant]
		} else {
			b.lastNonzero[s.Contestant] = r
		}
		ratings[i] = r
		prev[i] = len(b.history[s.Contestant]) - 1
	}
	return ratings, prev
}

func (b *Builder) extract(c contest.Contest, problems []string, ratings []float64, prev []int, sum *Summary) {
	times := make([]map[string]taskTiming, len(c.Standings))
	for i, s := range c.Standings {
		times[i] = timings(s)
	}

	for _, task := range problems {
		if _, ok := b.existing[task]; ok {
			continue
		}
		pr := b.problems[task]
		if pr == nil {
			pr = &problemRows{}
			b.problems[task] = pr
		}
		if sum.Emulated {
			pr.experimental = true
		}
		for i, s := range c.Standings {
			r := row{
				rating:    ratings[i],
				prev:      prev[i],
				isRated:   s.IsRated,
				retreated: s.Retreated(),
				elapsed:   -1,
				taskTime:  -1,
			}
			if tr, ok := s.TaskResults[task]; ok {
				r.score = tr.Score
				if tm, ok := times[i][task]; ok {
					r.elapsed = tm.elapsed
					r.taskTime = tm.taskTime
					r.accepted = tr.Status == contest.AcceptedStatus
				}
			}
			pr.rows = append(pr.rows, r)
		}
		sum.Problems++
	}
	if sum.Problems == 0 {
		sum.Skipped = SkipNoNewProblem
	}
}

type taskTiming struct {
	elapsed  int64
	taskTime int64
}

// timings computes, for every scoring task of a row, the time spent on it:
// the elapsed time of its scoring submission minus the previous scoring
// submission's, plus five minutes per penalty.
func timings(s contest.Standing) map[string]taskTiming {
	scored := []int64{0}
	for _, tr := range s.TaskResults {
		if tr.Score > 0 {
			scored = append(scored, tr.Elapsed)
		}
	}
	out := make(map[string]taskTiming, len(scored))
	for task, tr := range s.TaskResults {
		if tr.Score <= 0 {
			continue
		}
		var before int64
		for _, e := range scored {
			if e < tr.Elapsed && e > before {
				before = e
			}
		}
		out[task] = taskTiming{
			elapsed:  tr.Elapsed,
			taskTime: int64(tr.Penalty)*penaltyNanos + tr.Elapsed - before,
		}
	}
	return out
}

// Len is the number of problems with accumulated rows.
func (b *Builder) Len() int { return len(b.problems) }

// Jobs converts the accumulated rows into fit inputs, ordered by problem
// id. Problems nobody scored on are dropped and reported in unsolved.
func (b *Builder) Jobs() (jobs []Job, unsolved []string) {
	ids := make([]string, 0, len(b.problems))
	for id := range b.problems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		job, ok := b.job(id, b.problems[id])
		if !ok {
			unsolved = append(unsolved, id)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, unsolved
}

func (b *Builder) job(id string, pr *problemRows) (Job, bool) {
	var maxScore float64
	for _, r := range pr.rows {
		maxScore = math.Max(maxScore, r.score)
	}
	if maxScore == 0 {
		return Job{}, false
	}

	fastest := int64(math.MaxInt64)
	for _, r := range pr.rows {
		if r.elapsed >= 0 && r.elapsed < fastest {
			fastest = r.elapsed
		}
	}

	p := irt.Problem{ID: id, Kind: b.classifier.Kind(id)}
	if fastest != math.MaxInt64 {
		p.FastestSolve = float64(fastest) / nanosPerSec
	}
	for _, r := range pr.rows {
		if r.prev <= 0 || r.rating <= 0 {
			continue
		}
		ability, ok := numeric.InverseAdjustRating(r.rating, r.prev)
		if !ok {
			continue
		}
		sample := irt.Sample{
			Ability:   ability,
			Accepted:  r.accepted && r.score == maxScore,
			IsRated:   r.isRated,
			Retreated: r.retreated,
		}
		if r.taskTime > 0 {
			sample.SolveTime = float64(r.taskTime) / nanosPerSec
		}
		p.Samples = append(p.Samples, sample)
	}
	return Job{Problem: p, Experimental: pr.experimental}, true
}
