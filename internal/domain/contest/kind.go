// Package contest defines contest types, standings rows, and the checks
// applied to them where they enter the system.
package contest

import (
	"fmt"
	"strings"
)

// Kind enumerates the contest types the rating engine distinguishes.
type Kind int

// Contest kinds. Unrated contests carry no parameters and are never fed to
// the rating engine.
const (
	Unrated Kind = iota
	OldUnratedABC
	OldUnratedARC
	OldABC
	NewABC
	NewARC
	AGC
)

var kindNames = map[Kind]string{
	Unrated:       "unrated",
	OldUnratedABC: "old_unrated_abc",
	OldUnratedARC: "old_unrated_arc",
	OldABC:        "old_abc",
	NewABC:        "new_abc",
	NewARC:        "new_arc",
	AGC:           "agc",
}

// String returns the snake_case name used in config and JSON.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Unrated, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Type is the parameter bundle of a contest kind.
type Type struct {
	Kind Kind
	// QualifiedBound is the highest rating that still takes part in the
	// performance solve.
	QualifiedBound float64
	// RatingBound caps the performance used for rating aggregation.
	RatingBound float64
	// DefaultPerf stands in for the average performance of newcomers.
	DefaultPerf float64
	// IsRated is true for officially rated contests.
	IsRated bool
}

// TypeOf returns the parameters for k. ok is false for Unrated and for
// values outside the enumeration.
func TypeOf(k Kind) (t Type, ok bool) {
	switch k {
	case OldUnratedABC:
		return Type{Kind: k, QualifiedBound: 1199, RatingBound: 1600, DefaultPerf: 800, IsRated: false}, true
	case OldUnratedARC:
		return Type{Kind: k, QualifiedBound: 9999, RatingBound: 9999, DefaultPerf: 1200, IsRated: false}, true
	case OldABC:
		return Type{Kind: k, QualifiedBound: 1199, RatingBound: 1600, DefaultPerf: 800, IsRated: true}, true
	case NewABC:
		return Type{Kind: k, QualifiedBound: 1999, RatingBound: 2400, DefaultPerf: 800, IsRated: true}, true
	case NewARC:
		return Type{Kind: k, QualifiedBound: 2799, RatingBound: 3200, DefaultPerf: 1200, IsRated: true}, true
	case AGC:
		return Type{Kind: k, QualifiedBound: 9999, RatingBound: 9999, DefaultPerf: 1600, IsRated: true}, true
	case Unrated:
		return Type{Kind: Unrated}, false
	default:
		return Type{Kind: k}, false
	}
}

// IsOld reports whether the kind predates the official rating system, in
// which case ratings for its participants have to be emulated.
func (t Type) IsOld() bool {
	switch t.Kind {
	case OldUnratedABC, OldUnratedARC:
		return true
	case OldABC, NewABC, NewARC, AGC, Unrated:
		return false
	default:
		return false
	}
}
