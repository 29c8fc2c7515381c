package synth_test

import (
	"context"
	"testing"

	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small generator", t, func() {
		gen := synth.New(
			synth.WithSeed(7),
			synth.WithContests(5),
			synth.WithOldContests(2),
			synth.WithContestants(60),
			synth.WithTasks(4),
		)

		contests, truth, err := gen.Generate(ctx)
		So(err, ShouldBeNil)

		Convey("Then contests are dated and typed in order", func() {
			So(len(contests), ShouldEqual, 5)
			for i := 1; i < len(contests); i++ {
				So(contests[i].StartEpochSecond, ShouldBeGreaterThan, contests[i-1].StartEpochSecond)
			}
			old, err := contests[0].ResolveType(nil)
			So(err, ShouldBeNil)
			So(old.Kind, ShouldEqual, contest.OldUnratedABC)
			rated, err := contests[4].ResolveType(nil)
			So(err, ShouldBeNil)
			So(rated.Kind, ShouldEqual, contest.NewABC)
			So(len(contests[0].Tasks), ShouldEqual, 4)
			So(contests[0].Tasks[3], ShouldEqual, "abc001_d")
		})

		Convey("Then standings are valid and rank ordered", func() {
			So(contest.NormalizeAll(contests), ShouldBeNil)
			for _, c := range contests {
				So(len(c.Standings), ShouldBeGreaterThan, 0)
				for i := 1; i < len(c.Standings); i++ {
					So(c.Standings[i].Rank, ShouldBeGreaterThanOrEqualTo, c.Standings[i-1].Rank)
				}
			}
		})

		Convey("Then only contests after the first rated one carry ratings", func() {
			for _, s := range contests[1].Standings {
				So(s.OldRating, ShouldEqual, 0)
			}
			for _, s := range contests[2].Standings {
				So(s.OldRating, ShouldEqual, 0)
			}
			rated := 0
			for _, s := range contests[4].Standings {
				if s.OldRating > 0 {
					rated++
					So(s.Competitions, ShouldBeGreaterThan, 0)
				}
			}
			So(rated, ShouldBeGreaterThan, 0)
		})

		Convey("Then the hidden truth covers every contestant and task", func() {
			So(len(truth.Abilities), ShouldEqual, 60)
			So(len(truth.Difficulties), ShouldEqual, 20)
			_, ok := truth.Abilities[synth.ContestantID(0)]
			So(ok, ShouldBeTrue)
		})

		Convey("Then the same seed reproduces the history", func() {
			again, _, err := synth.New(
				synth.WithSeed(7),
				synth.WithContests(5),
				synth.WithOldContests(2),
				synth.WithContestants(60),
				synth.WithTasks(4),
			).Generate(ctx)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, contests)
		})
	})
}

func TestContestantID(t *testing.T) {
	Convey("Contestant ids are stable and distinct", t, func() {
		So(synth.ContestantID(3), ShouldEqual, synth.ContestantID(3))
		So(synth.ContestantID(3), ShouldNotEqual, synth.ContestantID(4))
		So(len(synth.ContestantID(0)), ShouldEqual, 36)
	})
}
