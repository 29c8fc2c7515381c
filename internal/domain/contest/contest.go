package contest

import (
	"fmt"
	"sort"
	"strings"
)

// AcceptedStatus is the task status code for an accepted submission.
const AcceptedStatus = 1

// TaskResult is one contestant's outcome on one task.
type TaskResult struct {
	Score float64 `json:"score"`
	// Elapsed is nanoseconds from contest start to the scoring submission.
	Elapsed int64 `json:"elapsed"`
	// Penalty counts wrong submissions before the scoring one.
	Penalty int `json:"penalty"`
	Status  int `json:"status"`
}

// Standing is one row of a contest's final standings.
type Standing struct {
	Contestant       string                `json:"user_screen_name"`
	Rank             int                   `json:"rank"`
	IsRated          bool                  `json:"is_rated"`
	OldRating        float64               `json:"old_rating"`
	Competitions     int                   `json:"competitions"`
	TotalSubmissions int                   `json:"total_submissions"`
	TaskResults      map[string]TaskResult `json:"task_results"`
}

// Retreated reports whether the contestant joined but submitted nothing.
func (s Standing) Retreated() bool {
	return s.TotalSubmissions == 0
}

// Contest is a finished contest with its standings.
type Contest struct {
	ID               string     `json:"id"`
	StartEpochSecond int64      `json:"start_epoch_second"`
	RateChange       string     `json:"rate_change"`
	Kind             string     `json:"kind,omitempty"`
	Tasks            []string   `json:"tasks"`
	Standings        []Standing `json:"standings"`
}

// ResolveType returns the contest's type. An explicit Kind wins over
// inference from RateChange.
func (c Contest) ResolveType(oldSponsored map[string]struct{}) (Type, error) {
	k := InferKind(c.ID, c.RateChange, oldSponsored)
	if strings.TrimSpace(c.Kind) != "" {
		parsed, err := ParseKind(c.Kind)
		if err != nil {
			return Type{}, fmt.Errorf("contest %s: %w", c.ID, err)
		}
		k = parsed
	}
	t, _ := TypeOf(k)
	return t, nil
}

// SortByStart orders contests by start time, keeping input order for
// contests that start together.
func SortByStart(contests []Contest) {
	sort.SliceStable(contests, func(i, j int) bool {
		return contests[i].StartEpochSecond < contests[j].StartEpochSecond
	})
}
