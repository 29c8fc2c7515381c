package irt_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/ratefit/internal/domain/irt"
	. "github.com/smartystreets/goconvey/convey"
)

// thresholdField returns n contestants spread evenly over [0, 4000] that
// accept iff their ability is at least cut.
func thresholdField(n int, cut float64) []irt.Sample {
	out := make([]irt.Sample, n)
	for i := range out {
		a := float64(i) * 4000 / float64(n-1)
		out[i] = irt.Sample{Ability: a, Accepted: a >= cut, IsRated: true}
	}
	return out
}

func hasRejection(res irt.Result, sub irt.SubModel, target error) bool {
	for _, r := range res.Rejections {
		if r.SubModel == sub && errors.Is(r.Err, target) {
			return true
		}
	}
	return false
}

func TestFitDifficulty(t *testing.T) {
	Convey("Given a field that accepts exactly above 2000", t, func() {
		res := irt.NewFitter().Fit(irt.Problem{ID: "abc100_c", Samples: thresholdField(100, 2000)})

		Convey("Then the difficulty lands on the threshold", func() {
			So(res.Model.HasDifficulty(), ShouldBeTrue)
			So(math.Abs(*res.Model.Difficulty-2000), ShouldBeLessThanOrEqualTo, 50)
			So(*res.Model.Discrimination, ShouldAlmostEqual, math.Log(6)/400, 1e-15)
		})

		Convey("Then the likelihood covers every contestant", func() {
			So(*res.Model.IRTUsers, ShouldEqual, 100)
			So(*res.Model.IRTLogLikelihood, ShouldBeLessThan, 0)
			So(*res.Model.IRTLogLikelihood, ShouldBeGreaterThan, 100*math.Log(0.5))
		})

		Convey("Then the time model is rejected without solve times", func() {
			So(res.Model.HasTimeModel(), ShouldBeFalse)
			So(hasRejection(res, irt.SubModelTime, irt.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given a lower difficulty cap", t, func() {
		res := irt.NewFitter(irt.WithMaxDifficulty(1000)).Fit(irt.Problem{Samples: thresholdField(100, 2000)})

		Convey("Then the fit is rejected as unreliable but still scored", func() {
			So(res.Model.HasDifficulty(), ShouldBeFalse)
			So(hasRejection(res, irt.SubModelDifficulty, irt.ErrUnreliableFit), ShouldBeTrue)
			So(*res.Model.IRTUsers, ShouldEqual, 100)
		})
	})
}

func TestFitRejections(t *testing.T) {
	Convey("Given fewer samples than required", t, func() {
		samples := thresholdField(30, 2000)
		for i := range samples {
			samples[i].SolveTime = 100 + float64(i)
		}
		res := irt.NewFitter().Fit(irt.Problem{Samples: samples})

		Convey("Then both sub-models are omitted", func() {
			So(res.Model.Difficulty, ShouldBeNil)
			So(res.Model.Discrimination, ShouldBeNil)
			So(res.Model.Slope, ShouldBeNil)
			So(res.Model.Intercept, ShouldBeNil)
			So(hasRejection(res, irt.SubModelDifficulty, irt.ErrInsufficientData), ShouldBeTrue)
			So(hasRejection(res, irt.SubModelTime, irt.ErrInsufficientData), ShouldBeTrue)
		})

		Convey("Then the baseline likelihood is reported", func() {
			So(*res.Model.IRTUsers, ShouldEqual, 30)
			So(*res.Model.IRTLogLikelihood, ShouldAlmostEqual, 30*math.Log(0.5), 1e-9)
		})
	})

	Convey("Given a problem everybody solved", t, func() {
		res := irt.NewFitter().Fit(irt.Problem{Samples: thresholdField(60, -1)})

		Convey("Then the outcome is degenerate", func() {
			So(hasRejection(res, irt.SubModelDifficulty, irt.ErrDegenerateOutcome), ShouldBeTrue)
			So(res.Rejections[len(res.Rejections)-1].Reason(), ShouldEqual, "degenerate_outcome")
		})
	})

	Convey("Given a very easy problem with many unrated contestants", t, func() {
		samples := thresholdField(60, 2000)
		for i := range samples {
			samples[i].IsRated = i%2 == 0
		}

		Convey("Then only rated contestants count towards the minimum", func() {
			res := irt.NewFitter().Fit(irt.Problem{Kind: irt.VeryEasy, Samples: samples})
			So(hasRejection(res, irt.SubModelDifficulty, irt.ErrInsufficientData), ShouldBeTrue)
			So(*res.Model.IRTUsers, ShouldEqual, 30)

			res = irt.NewFitter().Fit(irt.Problem{Kind: irt.Normal, Samples: samples})
			So(res.Model.HasDifficulty(), ShouldBeTrue)
		})
	})
}

func TestFitTimeModel(t *testing.T) {
	Convey("Given solve times that shrink exponentially with ability", t, func() {
		samples := make([]irt.Sample, 200)
		for i := range samples {
			a := float64(i) * 20
			noise := 0.05
			if i%2 == 1 {
				noise = -0.05
			}
			samples[i] = irt.Sample{
				Ability:   a,
				Accepted:  true,
				SolveTime: math.Exp(-0.001*a + 8 + noise),
			}
		}
		res := irt.NewFitter().Fit(irt.Problem{Samples: samples})

		Convey("Then the slope is recovered", func() {
			So(res.Model.HasTimeModel(), ShouldBeTrue)
			So(*res.Model.Slope, ShouldBeBetween, -0.0012, -0.0008)
			So(*res.Model.Intercept, ShouldAlmostEqual, 8, 0.1)
			So(*res.Model.Variance, ShouldBeGreaterThan, 0)
			So(*res.Model.Variance, ShouldBeLessThan, 0.01)
		})
	})

	Convey("Given solve times that grow with ability", t, func() {
		samples := make([]irt.Sample, 50)
		for i := range samples {
			samples[i] = irt.Sample{Ability: float64(i) * 10, Accepted: true, SolveTime: 100 + float64(i)}
		}
		res := irt.NewFitter().Fit(irt.Problem{Samples: samples})

		Convey("Then the time model is unreliable", func() {
			So(res.Model.HasTimeModel(), ShouldBeFalse)
			So(hasRejection(res, irt.SubModelTime, irt.ErrUnreliableFit), ShouldBeTrue)
		})
	})

	Convey("Given solves faster than half the field's fastest", t, func() {
		samples := make([]irt.Sample, 45)
		for i := range samples {
			samples[i] = irt.Sample{Ability: float64(i) * 50, Accepted: true, SolveTime: 1000 - float64(i)}
		}

		Convey("Then they are excluded from the time dataset", func() {
			res := irt.NewFitter().Fit(irt.Problem{Samples: samples, FastestSolve: 2100})
			So(hasRejection(res, irt.SubModelTime, irt.ErrInsufficientData), ShouldBeTrue)

			res = irt.NewFitter().Fit(irt.Problem{Samples: samples})
			So(res.Model.HasTimeModel(), ShouldBeTrue)
		})
	})
}

func TestFitWithRetreat(t *testing.T) {
	Convey("Given an easiest problem where a fifth of the field left early", t, func() {
		samples := thresholdField(200, 1500)
		for i := range samples {
			if i%5 == 0 {
				samples[i].Accepted = false
				samples[i].Retreated = true
			}
		}
		res := irt.NewFitter().Fit(irt.Problem{ID: "agc001_a", Kind: irt.AgcEasiest, Samples: samples})

		Convey("Then a difficulty and retreat probability are fitted", func() {
			So(res.Model.HasDifficulty(), ShouldBeTrue)
			So(res.Retreat, ShouldBeGreaterThanOrEqualTo, 0)
			So(res.Retreat, ShouldBeLessThan, 0.5)
		})

		Convey("Then only contestants that stayed are scored", func() {
			So(*res.Model.IRTUsers, ShouldEqual, 160)
		})
	})
}

func TestLogLikelihood(t *testing.T) {
	Convey("Without parameters every outcome is a coin flip", t, func() {
		logl, n := irt.LogLikelihood([]float64{1, 2, 3}, []bool{true, false, true}, nil)
		So(n, ShouldEqual, 3)
		So(logl, ShouldAlmostEqual, 3*math.Log(0.5), 1e-12)
	})
}
