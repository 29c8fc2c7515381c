// Package classify maps problem ids to the dataset rules used when fitting
// them.
package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/ratefit/internal/domain/irt"
)

// Default rules. Early beginner problems are exempt from the very-easy rule
// because strong contestants did not yet skip them.
var (
	DefaultVeryEasyRules   = []string{`^abc(\d{3}).*[ab]$ >= 42`}
	DefaultAgcEasiestRules = []string{`^agc.*_a$`}
	// DefaultProhibited lists marathon-style problems whose scores are not
	// accept/reject outcomes.
	DefaultProhibited = []string{
		"codefestival_2016_final_j",
		"discovery_2016_final_e",
		"arc047_d",
		"arc022_4",
		"tenka1_2013_qualB_d",
	}
)

const minSeparator = " >= "

// Rule matches a problem id against a pattern. When the pattern has a
// capture group and Min is set, the captured number must be at least Min.
type Rule struct {
	Pattern *regexp.Regexp
	Min     int
	HasMin  bool
}

// ParseRule parses "pattern" or "pattern >= N".
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	var r Rule
	if i := strings.LastIndex(s, minSeparator); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[i+len(minSeparator):]))
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %q: bad minimum: %v", ErrInvalidRule, s, err)
		}
		r.Min, r.HasMin = n, true
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return Rule{}, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if r.HasMin && re.NumSubexp() < 1 {
		return Rule{}, fmt.Errorf("%w: %q: minimum needs a capture group", ErrInvalidRule, s)
	}
	r.Pattern = re
	return r, nil
}

// Match reports whether id satisfies the rule.
func (r Rule) Match(id string) bool {
	m := r.Pattern.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	if !r.HasMin {
		return true
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n >= r.Min
}

// Classifier assigns an irt.Kind to problem ids and filters prohibited
// problems.
type Classifier struct {
	veryEasy   []Rule
	agcEasiest []Rule
	prohibited map[string]struct{}
}

// New builds a Classifier from rule strings. Nil slices select the
// defaults; empty non-nil slices disable a rule set.
func New(veryEasy, agcEasiest, prohibited []string) (*Classifier, error) {
	if veryEasy == nil {
		veryEasy = DefaultVeryEasyRules
	}
	if agcEasiest == nil {
		agcEasiest = DefaultAgcEasiestRules
	}
	if prohibited == nil {
		prohibited = DefaultProhibited
	}
	c := &Classifier{prohibited: make(map[string]struct{}, len(prohibited))}
	var err error
	if c.veryEasy, err = parseRules(veryEasy); err != nil {
		return nil, err
	}
	if c.agcEasiest, err = parseRules(agcEasiest); err != nil {
		return nil, err
	}
	for _, id := range prohibited {
		if id = strings.TrimSpace(id); id != "" {
			c.prohibited[id] = struct{}{}
		}
	}
	return c, nil
}

// Default returns a Classifier with the default rules.
func Default() *Classifier {
	c, err := New(nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func parseRules(in []string) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for _, s := range in {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Kind returns the dataset rule for a problem. Very-easy rules win over
// agc-easiest rules.
func (c *Classifier) Kind(problemID string) irt.Kind {
	if matchAny(c.veryEasy, problemID) {
		return irt.VeryEasy
	}
	if matchAny(c.agcEasiest, problemID) {
		return irt.AgcEasiest
	}
	return irt.Normal
}

// Prohibited reports whether a problem must never be fitted.
func (c *Classifier) Prohibited(problemID string) bool {
	_, ok := c.prohibited[problemID]
	return ok
}

func matchAny(rules []Rule, id string) bool {
	for _, r := range rules {
		if r.Match(id) {
			return true
		}
	}
	return false
}
