package rating

import (
	"math"
	"sync"
)

// Search bounds and logistic base shared with the difficulty fitter.
const (
	searchLow    = -10000.0
	searchHigh   = 10000.0
	logisticBase = 6.0
	logisticStep = 400.0
)

// scratch memoises expected-rank evaluations for one contest. The binary
// searches of every contestant start from the same interval, so they share
// most midpoints. A scratch is never reused across contests.
type scratch struct {
	aPerfs []float64

	mu    sync.RWMutex
	cache map[float64]float64
}

func newScratch(aPerfs []float64) *scratch {
	return &scratch{
		aPerfs: aPerfs,
		cache:  make(map[float64]float64),
	}
}

// expectedRank is the number of qualified contestants expected to beat a
// contestant performing at p.
func (s *scratch) expectedRank(p float64) float64 {
	s.mu.RLock()
	v, ok := s.cache[p]
	s.mu.RUnlock()
	if ok {
		return v
	}
	var sum float64
	for _, a := range s.aPerfs {
		sum += 1.0 / (1.0 + math.Pow(logisticBase, (p-a)/logisticStep))
	}
	s.mu.Lock()
	s.cache[p] = sum
	s.mu.Unlock()
	return sum
}

// solve binary-searches the performance whose expected rank equals target,
// to integer precision.
func (s *scratch) solve(target float64) float64 {
	lb, ub := searchLow, searchHigh
	for math.RoundToEven(lb) < math.RoundToEven(ub) {
		m := (lb + ub) / 2
		if s.expectedRank(m) < target {
			ub = m
		} else {
			lb = m
		}
	}
	return math.RoundToEven(lb)
}

func (s *scratch) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
