package irt

import (
	"fmt"
	"math"

	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/internal/domain/numeric"
)

// Default rejection thresholds.
const (
	DefaultMinSamples    = 40
	DefaultMaxDifficulty = 6000.0
)

// Result is the output of one fit.
type Result struct {
	Model      model.ProblemModel
	Rejections []Rejection
	// Retreat is the fitted probability of leaving without trying. Only
	// AgcEasiest problems estimate it.
	Retreat float64
}

// Fitter fits problem models. It holds only thresholds and is safe for
// concurrent use.
type Fitter struct {
	minSamples    int
	maxDifficulty float64
}

// NewFitter returns a Fitter with default thresholds adjusted by opts.
func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		minSamples:    DefaultMinSamples,
		maxDifficulty: DefaultMaxDifficulty,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit estimates the time and difficulty sub-models of p. A rejected
// sub-model is left nil and reported in Result.Rejections.
func (f *Fitter) Fit(p Problem) Result {
	var res Result
	f.fitTime(p, &res)
	f.fitDifficulty(p, &res)
	return res
}

func (f *Fitter) reject(res *Result, sub SubModel, err error) {
	res.Rejections = append(res.Rejections, Rejection{SubModel: sub, Err: err})
}

func (f *Fitter) fitTime(p Problem, res *Result) {
	fastest := p.FastestSolve
	if fastest <= 0 {
		fastest = fastestSolve(p.Samples)
	}
	var xs, ys []float64
	for _, s := range p.Samples {
		if !s.Accepted || s.SolveTime <= 0 || s.SolveTime <= fastest/2 {
			continue
		}
		xs = append(xs, s.Ability)
		ys = append(ys, math.Log(s.SolveTime))
	}
	if len(xs) < f.minSamples {
		f.reject(res, SubModelTime, fmt.Errorf("%w: %d solve times", ErrInsufficientData, len(xs)))
		return
	}
	slope, intercept, err := numeric.SingleRegression(xs, ys)
	if err != nil {
		f.reject(res, SubModelTime, fmt.Errorf("%w: %v", ErrDegenerateOutcome, err))
		return
	}
	if slope >= 0 {
		f.reject(res, SubModelTime, fmt.Errorf("%w: slope %g is not negative", ErrUnreliableFit, slope))
		return
	}
	residuals := make([]float64, len(xs))
	for i := range xs {
		residuals[i] = slope*xs[i] + intercept - ys[i]
	}
	variance, err := numeric.SampleVariance(residuals)
	if err != nil {
		f.reject(res, SubModelTime, fmt.Errorf("%w: %v", ErrInsufficientData, err))
		return
	}
	res.Model.Slope = model.Float(slope)
	res.Model.Intercept = model.Float(intercept)
	res.Model.Variance = model.Float(variance)
}

func fastestSolve(samples []Sample) float64 {
	fastest := math.Inf(1)
	for _, s := range samples {
		if s.Accepted && s.SolveTime > 0 && s.SolveTime < fastest {
			fastest = s.SolveTime
		}
	}
	if math.IsInf(fastest, 1) {
		return 0
	}
	return fastest
}

// difficultyDataset picks the samples that inform the difficulty of a
// problem of kind k.
func difficultyDataset(k Kind, samples []Sample) []Sample {
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		switch k {
		case VeryEasy:
			if s.IsRated && !s.Retreated {
				out = append(out, s)
			}
		case AgcEasiest:
			out = append(out, s)
		default:
			if !s.Retreated {
				out = append(out, s)
			}
		}
	}
	return out
}

func split(samples []Sample) (abilities []float64, accepted []bool, accepts int) {
	abilities = make([]float64, len(samples))
	accepted = make([]bool, len(samples))
	for i, s := range samples {
		abilities[i] = s.Ability
		accepted[i] = s.Accepted
		if s.Accepted {
			accepts++
		}
	}
	return abilities, accepted, accepts
}

func (f *Fitter) fitDifficulty(p Problem, res *Result) {
	data := difficultyDataset(p.Kind, p.Samples)
	abilities, accepted, accepts := split(data)

	var err error
	switch {
	case len(data) < f.minSamples:
		err = fmt.Errorf("%w: %d contestants", ErrInsufficientData, len(data))
	case accepts == len(data):
		err = fmt.Errorf("%w: every contestant accepted", ErrDegenerateOutcome)
	case accepts == 0:
		err = fmt.Errorf("%w: no contestant accepted", ErrDegenerateOutcome)
	}
	if err != nil {
		f.reject(res, SubModelDifficulty, err)
		logl, n := LogLikelihood(abilities, accepted, nil)
		res.Model.IRTLogLikelihood = model.Float(logl)
		res.Model.IRTUsers = model.Int(n)
		return
	}

	var params Params
	if p.Kind == AgcEasiest {
		params, res.Retreat = FitWithRetreat(abilities, accepted)
	} else {
		params = FitDifficulty(abilities, float64(accepts))
	}

	switch {
	case params.Discrimination < 0:
		f.reject(res, SubModelDifficulty, fmt.Errorf("%w: negative discrimination %g", ErrUnreliableFit, params.Discrimination))
	case params.Difficulty > f.maxDifficulty:
		f.reject(res, SubModelDifficulty, fmt.Errorf("%w: difficulty %g above %g", ErrUnreliableFit, params.Difficulty, f.maxDifficulty))
	default:
		res.Model.Difficulty = model.Float(params.Difficulty)
		res.Model.Discrimination = model.Float(params.Discrimination)
	}

	// Retreats carry no information about the problem, so the 3PL fit is
	// scored on the contestants that stayed.
	if p.Kind == AgcEasiest {
		var stayed []Sample
		for _, s := range data {
			if !s.Retreated {
				stayed = append(stayed, s)
			}
		}
		abilities, accepted, _ = split(stayed)
	}
	logl, n := LogLikelihood(abilities, accepted, &params)
	res.Model.IRTLogLikelihood = model.Float(logl)
	res.Model.IRTUsers = model.Int(n)
}
