// Package synth generates synthetic contest histories for demos and tests.
//
// Contestants get a hidden ability. Each task gets a hidden difficulty and
// is solved with probability sigmoid(disc*(ability-difficulty)); solve
// times follow ln(t) = intercept + slope*ability + noise. Rated contests
// carry official ratings computed by replaying the earlier rated contests
// through the rating engine, so the estimator can be checked against the
// hidden parameters.
package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/domain/dataset"
	"github.com/okian/ratefit/internal/domain/rating"
	"github.com/okian/ratefit/pkg/logger"
)

const (
	defaultContests      = 12
	defaultOldContests   = 4
	defaultContestants   = 300
	defaultTasks         = 6
	defaultParticipation = 0.7

	firstStart      = int64(1_400_000_000)
	contestInterval = int64(7 * 24 * 3600)
	duration        = 100 * time.Minute

	// Discrimination shared by every task: a 400 point gap is 6:1 odds.
	discrimination = 0.00447940
	timeIntercept  = 7.5
	timeSlope      = -0.0004
	timeNoise      = 0.35
	retreatRate    = 0.05
	wrongRate      = 0.3
)

// namespace roots the deterministic contestant ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ratefit/synth"))

// Truth holds the hidden parameters behind a generated history.
type Truth struct {
	Abilities    map[string]float64
	Difficulties map[string]float64
}

// Generator produces contest histories.
type Generator struct {
	seed          uint64
	contests      int
	oldContests   int
	contestants   int
	tasks         int
	participation float64
	log           logger.Logger
}

// New returns a Generator with defaults adjusted by opts.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:          1,
		contests:      defaultContests,
		oldContests:   defaultOldContests,
		contestants:   defaultContestants,
		tasks:         defaultTasks,
		participation: defaultParticipation,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.Get().Named("synth")
	return g
}

// ContestantID is the id of the i-th synthetic contestant.
func ContestantID(i int) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("contestant-%d", i))).String()
}

// Generate builds the contest history, oldest first, and the hidden truth.
func (g *Generator) Generate(ctx context.Context) ([]contest.Contest, Truth, error) {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	truth := Truth{
		Abilities:    make(map[string]float64, g.contestants),
		Difficulties: make(map[string]float64),
	}
	ids := make([]string, g.contestants)
	for i := range ids {
		ids[i] = ContestantID(i)
		truth.Abilities[ids[i]] = 1200 + rng.NormFloat64()*600
	}

	engine := rating.New()
	rated, _ := contest.TypeOf(contest.NewABC)
	out := make([]contest.Contest, 0, g.contests)
	for n := 0; n < g.contests; n++ {
		if err := ctx.Err(); err != nil {
			return nil, Truth{}, err
		}
		c := contest.Contest{
			ID:               fmt.Sprintf("abc%03d", n+1),
			StartEpochSecond: firstStart + int64(n)*contestInterval,
			RateChange:       "-",
		}
		old := n < g.oldContests
		if !old {
			c.RateChange = " ~ 1999"
		}
		for k := 0; k < g.tasks; k++ {
			task := fmt.Sprintf("%s_%c", c.ID, 'a'+k)
			c.Tasks = append(c.Tasks, task)
			spread := float64(k) / math.Max(1, float64(g.tasks-1))
			truth.Difficulties[task] = -400 + spread*3200 + rng.NormFloat64()*150
		}

		for _, id := range ids {
			if rng.Float64() >= g.participation {
				continue
			}
			s := g.standing(rng, c, id, truth)
			if !old {
				if r, ok := engine.Rating(id); ok {
					s.OldRating = r
				}
				s.Competitions = engine.CompetitionCount(id)
				s.IsRated = s.OldRating <= rated.QualifiedBound
			}
			c.Standings = append(c.Standings, s)
		}
		rank(c.Standings)
		if err := contest.Normalize(&c); err != nil {
			return nil, Truth{}, err
		}

		if !old {
			if _, err := engine.ProcessContest(c.ID, dataset.Ranking(c, rated), rated, engine.Empty()); err != nil {
				return nil, Truth{}, fmt.Errorf("rate %s: %w", c.ID, err)
			}
		}
		out = append(out, c)
	}
	g.log.Info(ctx, "synthetic history generated",
		logger.Int("contests", len(out)),
		logger.Int("contestants", g.contestants),
		logger.Int64("seed", int64(g.seed)))
	return out, truth, nil
}

// standing simulates one contestant's contest. Tasks are attempted in
// order; each solve consumes its solve time and a wrong answer costs a
// penalty. Nothing is solved after the contest ends.
func (g *Generator) standing(rng *rand.Rand, c contest.Contest, id string, truth Truth) contest.Standing {
	s := contest.Standing{Contestant: id, TaskResults: map[string]contest.TaskResult{}}
	if rng.Float64() < retreatRate {
		return s
	}
	ability := truth.Abilities[id]
	var clock time.Duration
	for k, task := range c.Tasks {
		s.TotalSubmissions++
		p := 1 / (1 + math.Exp(-discrimination*(ability-truth.Difficulties[task])))
		if rng.Float64() >= p {
			s.TaskResults[task] = contest.TaskResult{Penalty: 1}
			continue
		}
		secs := math.Exp(timeIntercept + timeSlope*ability + rng.NormFloat64()*timeNoise)
		clock += time.Duration(secs * float64(time.Second))
		if clock > duration {
			break
		}
		penalty := 0
		if rng.Float64() < wrongRate {
			penalty = 1
			s.TotalSubmissions++
		}
		s.TaskResults[task] = contest.TaskResult{
			Score:   float64(100 * (k + 1)),
			Elapsed: int64(clock),
			Penalty: penalty,
			Status:  contest.AcceptedStatus,
		}
	}
	return s
}

// rank assigns competition ranks by score, then by penalised finish time.
func rank(rows []contest.Standing) {
	type key struct {
		score  float64
		finish int64
	}
	keys := make([]key, len(rows))
	for i, s := range rows {
		var k key
		var penalties int64
		for _, tr := range s.TaskResults {
			if tr.Score <= 0 {
				continue
			}
			k.score += tr.Score
			k.finish = max(k.finish, tr.Elapsed)
			penalties += int64(tr.Penalty)
		}
		k.finish += penalties * int64(5*time.Minute)
		keys[i] = k
	}
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if ka.score != kb.score {
			return ka.score > kb.score
		}
		return ka.finish < kb.finish
	})
	for pos, i := range order {
		r := pos + 1
		if pos > 0 && keys[order[pos-1]] == keys[i] {
			r = rows[order[pos-1]].Rank
		}
		rows[i].Rank = r
	}
}
