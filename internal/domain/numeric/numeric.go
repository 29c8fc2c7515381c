// Package numeric holds the shared math used by the rating engine and the
// difficulty fitter: clamped log and sigmoid, single-variable least squares,
// and the displayed-rating transform with its inverse.
package numeric

import (
	"math"
)

// Clamp constants. Both searches visit degenerate extremes while the
// interval is still wide, so neither function may produce -Inf or overflow.
const (
	logFloor        = 1e-100
	sigmoidExponent = 750
)

// SafeLog returns ln(max(x, 1e-100)).
func SafeLog(x float64) float64 {
	return math.Log(math.Max(x, logFloor))
}

// SafeSigmoid returns 1/(1+e^-x) with the exponent capped at 750.
func SafeSigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(math.Min(-x, sigmoidExponent)))
}

// SingleRegression fits y = slope*x + intercept by ordinary least squares.
func SingleRegression(xs, ys []float64) (slope, intercept float64, err error) {
	if len(xs) != len(ys) {
		return 0, 0, ErrLengthMismatch
	}
	if len(xs) < 2 {
		return 0, 0, ErrTooFewPoints
	}
	n := float64(len(xs))
	var xSum, ySum, xySum, sqxSum float64
	for i := range xs {
		xSum += xs[i]
		ySum += ys[i]
		xySum += xs[i] * ys[i]
		sqxSum += xs[i] * xs[i]
	}
	denom := n*sqxSum - xSum*xSum
	if denom == 0 {
		return 0, 0, ErrDegenerate
	}
	slope = (n*xySum - xSum*ySum) / denom
	intercept = (sqxSum*ySum - xySum*xSum) / denom
	return slope, intercept, nil
}

// SampleVariance returns the unbiased (n-1) variance of xs.
func SampleVariance(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, ErrTooFewPoints
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs)-1), nil
}
