package dataset_test

import (
	"fmt"
	"testing"

	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/domain/dataset"
	"github.com/okian/ratefit/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

const second = int64(1e9)

func mustType(k contest.Kind) contest.Type {
	t, ok := contest.TypeOf(k)
	if !ok {
		panic(k.String())
	}
	return t
}

// field builds n rated rows with ratings rated+10*i. Every row scores full
// points on task "_a"; even rows also score on "_b".
func field(id string, n int, rated float64) contest.Contest {
	c := contest.Contest{ID: id, Tasks: []string{id + "_a", id + "_b"}}
	for i := 0; i < n; i++ {
		s := contest.Standing{
			Contestant:       fmt.Sprintf("u%03d", i),
			Rank:             i + 1,
			IsRated:          true,
			OldRating:        rated + float64(10*i),
			Competitions:     5,
			TotalSubmissions: 2,
			TaskResults: map[string]contest.TaskResult{
				id + "_a": {Score: 100, Elapsed: 100 * second, Penalty: 1, Status: contest.AcceptedStatus},
			},
		}
		if i%2 == 0 {
			s.TaskResults[id+"_b"] = contest.TaskResult{Score: 200, Elapsed: 300 * second, Status: contest.AcceptedStatus}
		} else {
			s.TaskResults[id+"_b"] = contest.TaskResult{Score: 50, Elapsed: 250 * second, Status: contest.AcceptedStatus}
		}
		c.Standings = append(c.Standings, s)
	}
	return c
}

func TestBuilder_Extract(t *testing.T) {
	Convey("Given a rated contest with official ratings", t, func() {
		b := dataset.New()
		sum, err := b.AddContest(field("abc200", 50, 1000), mustType(contest.NewABC))
		So(err, ShouldBeNil)
		So(sum.Skipped, ShouldBeEmpty)
		So(sum.Problems, ShouldEqual, 2)
		So(sum.Participants, ShouldEqual, 50)
		So(sum.RatingUpdate, ShouldBeNil)

		jobs, unsolved := b.Jobs()
		So(unsolved, ShouldBeEmpty)
		So(len(jobs), ShouldEqual, 2)
		a, bb := jobs[0].Problem, jobs[1].Problem
		So(a.ID, ShouldEqual, "abc200_a")

		Convey("Then every recurring contestant becomes a sample", func() {
			So(len(a.Samples), ShouldEqual, 50)
			So(jobs[0].Experimental, ShouldBeFalse)
		})

		Convey("Then solve times charge penalties and subtract earlier solves", func() {
			So(a.Samples[0].SolveTime, ShouldEqual, 400)
			So(bb.Samples[0].SolveTime, ShouldEqual, 200)
			So(bb.Samples[1].SolveTime, ShouldEqual, 150)
			So(a.FastestSolve, ShouldEqual, 100)
		})

		Convey("Then only full scores are accepts", func() {
			So(bb.Samples[0].Accepted, ShouldBeTrue)
			So(bb.Samples[1].Accepted, ShouldBeFalse)
		})

		Convey("Then higher ratings map to higher abilities", func() {
			So(a.Samples[49].Ability, ShouldBeGreaterThan, a.Samples[0].Ability)
		})
	})

	Convey("Given a contest nobody has a rating in", t, func() {
		c := field("arc001", 50, 0)
		for i := range c.Standings {
			c.Standings[i].OldRating = 0
		}
		b := dataset.New()
		sum, err := b.AddContest(c, mustType(contest.OldUnratedARC))
		So(err, ShouldBeNil)

		Convey("Then it is skipped", func() {
			So(sum.Skipped, ShouldEqual, dataset.SkipNoRatings)
			So(b.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given problems that already have models", t, func() {
		b := dataset.New(dataset.WithExisting([]string{"abc200_a", "abc200_b"}))
		sum, err := b.AddContest(field("abc200", 50, 1000), mustType(contest.NewABC))
		So(err, ShouldBeNil)

		Convey("Then the whole contest is skipped", func() {
			So(sum.Skipped, ShouldEqual, dataset.SkipExisting)
		})
	})

	Convey("Given a task nobody scored on and a prohibited task", t, func() {
		c := field("abc201", 50, 1000)
		c.Tasks = append(c.Tasks, "abc201_z", "arc047_d")
		b := dataset.New()
		_, err := b.AddContest(c, mustType(contest.NewABC))
		So(err, ShouldBeNil)
		jobs, unsolved := b.Jobs()

		Convey("Then the unsolved task is reported and the prohibited one ignored", func() {
			So(unsolved, ShouldResemble, []string{"abc201_z"})
			So(len(jobs), ShouldEqual, 2)
		})
	})

	Convey("Given the same problem in two contests", t, func() {
		b := dataset.New()
		_, err := b.AddContest(field("abc202", 50, 1000), mustType(contest.NewABC))
		So(err, ShouldBeNil)
		other := field("abc202", 30, 1200)
		other.ID = "arc100"
		_, err = b.AddContest(other, mustType(contest.NewARC))
		So(err, ShouldBeNil)

		Convey("Then rows from both are pooled", func() {
			jobs, _ := b.Jobs()
			So(len(jobs), ShouldEqual, 2)
			So(len(jobs[0].Problem.Samples), ShouldEqual, 80)
		})
	})
}

func TestBuilder_Recompute(t *testing.T) {
	Convey("Given two early contests replayed from scratch", t, func() {
		e := rating.New()
		b := dataset.New(dataset.WithEngine(e), dataset.WithRecompute(true))
		ct := mustType(contest.OldUnratedABC)

		first, err := b.AddContest(field("abc001", 50, 0), ct)
		So(err, ShouldBeNil)
		second, err := b.AddContest(field("abc002", 50, 0), ct)
		So(err, ShouldBeNil)

		Convey("Then the engine rates both contests", func() {
			So(first.RatingUpdate, ShouldNotBeNil)
			So(second.RatingUpdate, ShouldNotBeNil)
			So(e.CompetitionCount("u000"), ShouldEqual, 2)
			So(first.Emulated, ShouldBeTrue)
		})

		Convey("Then only contestants with emulated history are samples", func() {
			jobs, _ := b.Jobs()
			So(len(jobs), ShouldEqual, 4)
			So(jobs[0].Problem.ID, ShouldEqual, "abc001_a")
			So(jobs[0].Problem.Samples, ShouldBeEmpty)
			So(len(jobs[2].Problem.Samples), ShouldEqual, 50)
			So(jobs[2].Experimental, ShouldBeTrue)
		})
	})

	Convey("Given rated contests where a contestant shows a zero rating", t, func() {
		b := dataset.New(dataset.WithRecompute(true))
		ct := mustType(contest.NewABC)
		_, err := b.AddContest(field("abc100", 50, 1000), ct)
		So(err, ShouldBeNil)
		c := field("abc101", 50, 1000)
		c.Standings[0].OldRating = 0
		sum, err := b.AddContest(c, ct)
		So(err, ShouldBeNil)

		Convey("Then the last nonzero rating and the counted history are used", func() {
			So(sum.Emulated, ShouldBeFalse)
			So(sum.RatingUpdate, ShouldBeNil)
			jobs, _ := b.Jobs()
			// abc100 samples have no previous counted contest.
			So(jobs[0].Problem.Samples, ShouldBeEmpty)
			So(len(jobs[2].Problem.Samples), ShouldEqual, 50)
			So(jobs[2].Problem.Samples[0].Ability, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given early contests whose problems already have models", t, func() {
		ct := mustType(contest.OldUnratedARC)
		replay := func(opts ...dataset.Option) (*rating.Engine, []dataset.Summary) {
			e := rating.New()
			b := dataset.New(append(opts, dataset.WithEngine(e), dataset.WithRecompute(true))...)
			var sums []dataset.Summary
			for _, id := range []string{"arc001", "arc002"} {
				sum, err := b.AddContest(field(id, 50, 0), ct)
				So(err, ShouldBeNil)
				sums = append(sums, sum)
			}
			return e, sums
		}
		full, _ := replay()
		stored, sums := replay(dataset.WithExisting([]string{"arc001_a", "arc001_b"}))

		Convey("Then the stored contest still advances the emulated ratings", func() {
			So(sums[0].Skipped, ShouldEqual, dataset.SkipExisting)
			So(sums[0].RatingUpdate, ShouldNotBeNil)
			So(stored.CompetitionCount("u000"), ShouldEqual, 2)
			want, _ := full.Rating("u000")
			got, _ := stored.Rating("u000")
			So(got, ShouldEqual, want)
		})
	})

	Convey("Given rated contests whose first problems already have models", t, func() {
		ct := mustType(contest.NewABC)
		replay := func(opts ...dataset.Option) []dataset.Job {
			b := dataset.New(append(opts, dataset.WithRecompute(true))...)
			for _, id := range []string{"abc100", "abc101"} {
				_, err := b.AddContest(field(id, 50, 1000), ct)
				So(err, ShouldBeNil)
			}
			jobs, _ := b.Jobs()
			return jobs
		}
		full := replay()
		stored := replay(dataset.WithExisting([]string{"abc100_a", "abc100_b"}))

		Convey("Then the stored contest still counts toward contestant histories", func() {
			So(len(stored), ShouldEqual, 2)
			So(stored[0].Problem.ID, ShouldEqual, "abc101_a")
			So(len(stored[0].Problem.Samples), ShouldEqual, 50)
			So(len(stored[0].Problem.Samples), ShouldEqual, len(full[2].Problem.Samples))
		})
	})
}
