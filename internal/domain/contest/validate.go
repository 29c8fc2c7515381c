package contest

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize validates a contest and puts its standings in rank order.
// Contestants sharing a rank are ordered by contestant id so replay does
// not depend on the order rows arrived in.
func Normalize(c *Contest) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidContest)
	}
	seen := make(map[string]struct{}, len(c.Standings))
	for i, s := range c.Standings {
		if strings.TrimSpace(s.Contestant) == "" {
			return fmt.Errorf("%w: contest %s row %d: missing contestant", ErrInvalidStandings, c.ID, i)
		}
		if s.Rank < 1 {
			return fmt.Errorf("%w: contest %s contestant %s: rank %d", ErrInvalidStandings, c.ID, s.Contestant, s.Rank)
		}
		if _, dup := seen[s.Contestant]; dup {
			return fmt.Errorf("%w: contest %s: contestant %s listed twice", ErrInvalidStandings, c.ID, s.Contestant)
		}
		seen[s.Contestant] = struct{}{}
	}
	sort.SliceStable(c.Standings, func(i, j int) bool {
		a, b := c.Standings[i], c.Standings[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Contestant < b.Contestant
	})
	return nil
}

// NormalizeAll normalizes every contest and rejects duplicate contest ids.
func NormalizeAll(contests []Contest) error {
	ids := make(map[string]struct{}, len(contests))
	for i := range contests {
		if err := Normalize(&contests[i]); err != nil {
			return err
		}
		if _, dup := ids[contests[i].ID]; dup {
			return fmt.Errorf("%w: duplicate contest %s", ErrInvalidContest, contests[i].ID)
		}
		ids[contests[i].ID] = struct{}{}
	}
	return nil
}
