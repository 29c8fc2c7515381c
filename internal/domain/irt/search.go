package irt

import (
	"math"

	"github.com/okian/ratefit/internal/domain/numeric"
)

// Search bounds for the difficulty and the retreat grid.
const (
	difficultyLow  = -10000
	difficultyHigh = 10000
	retreatStep    = 0.025
	retreatSteps   = 20 // r in [0, 0.5)
)

// Discrimination is the fixed IRT slope. It matches the rating engine's
// pairwise model: 6^(d/400) == e^(Discrimination*d).
var Discrimination = math.Log(6.0) / 400.0

// Params is a fitted difficulty model.
type Params struct {
	Difficulty     float64
	Discrimination float64
}

// AcceptProbability is P(accept) for a contestant of the given ability.
func (p Params) AcceptProbability(ability float64) float64 {
	return numeric.SafeSigmoid(p.Discrimination * (ability - p.Difficulty))
}

// FitDifficulty binary-searches the integer difficulty at which the
// expected number of accepts among abilities matches target.
func FitDifficulty(abilities []float64, target float64) Params {
	lb, ub := difficultyLow, difficultyHigh
	for ub-lb > 1 {
		m := floorHalf(lb + ub)
		if expectedAccepts(abilities, float64(m)) < target {
			ub = m
		} else {
			lb = m
		}
	}
	return Params{Difficulty: float64(lb), Discrimination: Discrimination}
}

func expectedAccepts(abilities []float64, difficulty float64) float64 {
	var sum float64
	for _, x := range abilities {
		sum += 1.0 / (1.0 + math.Pow(6.0, (difficulty-x)/400.0))
	}
	return sum
}

// floorHalf is floor(v/2), also for negative v.
func floorHalf(v int) int {
	if v < 0 && v%2 != 0 {
		return v/2 - 1
	}
	return v / 2
}

// FitWithRetreat grid-searches the probability that a contestant left
// without trying. For each candidate the difficulty is refit on the accept
// count scaled up by the participation rate, and the candidate with the
// highest log-likelihood wins.
func FitWithRetreat(abilities []float64, accepted []bool) (params Params, retreat float64) {
	var accepts float64
	for _, a := range accepted {
		if a {
			accepts++
		}
	}
	best := math.Inf(-1)
	for k := 0; k < retreatSteps; k++ {
		r := float64(k) * retreatStep
		participate := 1 - r
		cand := FitDifficulty(abilities, accepts/participate)
		var logl float64
		for i, x := range abilities {
			p := participate * cand.AcceptProbability(x)
			if accepted[i] {
				logl += numeric.SafeLog(p)
			} else {
				logl += numeric.SafeLog(1 - p)
			}
		}
		if logl > best {
			best = logl
			params, retreat = cand, r
		}
	}
	return params, retreat
}

// LogLikelihood scores accepted against abilities under params. With nil
// params every outcome is a coin flip, giving n*ln(0.5).
func LogLikelihood(abilities []float64, accepted []bool, params *Params) (logl float64, n int) {
	n = len(abilities)
	if params == nil {
		return float64(n) * math.Log(0.5), n
	}
	for i, x := range abilities {
		p := params.AcceptProbability(x)
		if accepted[i] {
			logl += numeric.SafeLog(p)
		} else {
			logl += numeric.SafeLog(1 - p)
		}
	}
	return logl, n
}
