// Package irt fits per-problem difficulty and solve-time models from the
// abilities and outcomes of the contestants who saw the problem.
package irt

import "fmt"

// Kind selects which contestants inform a problem's difficulty.
type Kind int

// Problem kinds.
const (
	// Normal problems use every contestant that submitted anything.
	Normal Kind = iota
	// VeryEasy problems are skipped by strong unrated contestants, so only
	// rated, non-retreated contestants count.
	VeryEasy
	// AgcEasiest problems have retreats mixed into their negatives and are
	// fit with an extra retreat probability.
	AgcEasiest
)

// String returns the snake_case kind name.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case VeryEasy:
		return "very_easy"
	case AgcEasiest:
		return "agc_easiest"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sample is one contestant's data point for a problem.
type Sample struct {
	// Ability is the raw (undisplayed) rating before the contest.
	Ability   float64
	Accepted  bool
	IsRated   bool
	Retreated bool
	// SolveTime is in seconds; zero or negative means the contestant has
	// no solve time for this problem.
	SolveTime float64
}

// Problem is the input of one fit.
type Problem struct {
	ID      string
	Kind    Kind
	Samples []Sample
	// FastestSolve is the fastest solve in seconds across the whole field,
	// including contestants without an ability. Zero derives it from
	// Samples.
	FastestSolve float64
}

// SubModel names the part of a ProblemModel a rejection applies to.
type SubModel string

// Sub-models.
const (
	SubModelDifficulty SubModel = "difficulty"
	SubModelTime       SubModel = "time"
)

// Rejection records why a sub-model was left out.
type Rejection struct {
	SubModel SubModel
	Err      error
}

func (r Rejection) String() string {
	return string(r.SubModel) + ": " + r.Err.Error()
}

// Reason returns a short label for the rejection's error kind.
func (r Rejection) Reason() string {
	return reasonOf(r.Err)
}
