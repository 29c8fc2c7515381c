// Package model contains the problem model shape persisted between runs.
package model

// ProblemModel is the fitted model of one problem. Optional sub-models are
// nil when they were not estimated or were rejected.
type ProblemModel struct {
	// Time model: ln(seconds) = Slope*ability + Intercept.
	Slope     *float64 `json:"slope,omitempty"`
	Intercept *float64 `json:"intercept,omitempty"`
	Variance  *float64 `json:"variance,omitempty"`

	// IRT model: P(accept) = sigmoid(Discrimination*(ability-Difficulty)).
	Difficulty     *float64 `json:"difficulty,omitempty"`
	Discrimination *float64 `json:"discrimination,omitempty"`

	IRTLogLikelihood *float64 `json:"irt_loglikelihood,omitempty"`
	IRTUsers         *int     `json:"irt_users,omitempty"`

	// IsExperimental marks models fitted on emulated ratings.
	IsExperimental bool `json:"is_experimental"`
}

// HasDifficulty reports whether the IRT sub-model is present.
func (m ProblemModel) HasDifficulty() bool {
	return m.Difficulty != nil && m.Discrimination != nil
}

// HasTimeModel reports whether the time sub-model is present.
func (m ProblemModel) HasTimeModel() bool {
	return m.Slope != nil && m.Intercept != nil
}

// Models maps problem ids to their models.
type Models map[string]ProblemModel

// Merge copies every entry of src into m, overwriting entries with the same
// problem id and leaving the rest untouched.
func (m Models) Merge(src Models) {
	for id, pm := range src {
		m[id] = pm
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
