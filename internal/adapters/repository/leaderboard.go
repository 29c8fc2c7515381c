package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/okian/ratefit/internal/domain/types"
	"github.com/okian/ratefit/pkg/metrics"
)

// ratingScale is the fixed-point scale applied to ratings.
const ratingScale = 1_000_000

type ratingFP int64

func toFixedPoint(x float64) ratingFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*ratingScale >= math.MaxInt64:
		return ratingFP(math.MaxInt64)
	case x*ratingScale <= math.MinInt64:
		return ratingFP(math.MinInt64)
	}
	return ratingFP(math.Round(x * ratingScale))
}

func toFloat(x ratingFP) float64 {
	return float64(x) / ratingScale
}

type node struct {
	id     string
	rating ratingFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aRating ratingFP, aID string, bRating ratingFP, bID string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the id, giving a balanced shape that is still the same
// on every run.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, r ratingFP) *node {
	if n == nil {
		return &node{id: id, rating: r, prio: priority(id), size: 1}
	}
	if less(r, id, n.rating, n.id) {
		n.left = insert(n.left, id, r)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, r)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countAbove counts nodes rated strictly higher than r.
func countAbove(n *node, r ratingFP) int {
	count := 0
	for n != nil {
		if n.rating > r {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type record struct {
	rating       ratingFP
	competitions int
}

// Leaderboard is an in-memory treap ranking contestants by displayed
// rating. It is safe for concurrent use.
//
// Ordering: rating DESC, then contestant ASC. "less" means ranks earlier,
// so in-order traversal yields the leaderboard from best to worst. Ranks
// use competition ranking: equal ratings share a rank and the next rank
// skips past them.
type Leaderboard struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
}

// NewLeaderboard returns an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{byID: make(map[string]record)}
}

// Replace swaps the whole leaderboard for ratings. competitions may be nil.
func (l *Leaderboard) Replace(ctx context.Context, ratings map[string]float64, competitions map[string]int) {
	var root *node
	byID := make(map[string]record, len(ratings))
	for id, rating := range ratings {
		r := toFixedPoint(rating)
		byID[id] = record{rating: r, competitions: competitions[id]}
		root = insert(root, id, r)
	}
	l.mu.Lock()
	l.root, l.byID = root, byID
	l.mu.Unlock()
	metrics.UpdateLeaderboardEntries(len(byID))
}

// Rank returns a contestant's entry, or ErrNotFound.
func (l *Leaderboard) Rank(ctx context.Context, contestant string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.byID[contestant]
	if !ok {
		metrics.RecordErrorByComponent("leaderboard", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return types.Entry{
		Rank:         countAbove(l.root, rec.rating) + 1,
		Contestant:   contestant,
		Rating:       toFloat(rec.rating),
		Competitions: rec.competitions,
	}, nil
}

// TopN returns the n best entries.
func (l *Leaderboard) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if n < 1 {
		metrics.RecordErrorByComponent("leaderboard", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	nodes := make([]*node, 0, min(n, len(l.byID)))
	collectTopN(l.root, n, &nodes)
	out := make([]types.Entry, len(nodes))
	for i, nd := range nodes {
		rank := i + 1
		if i > 0 && nd.rating == nodes[i-1].rating {
			rank = out[i-1].Rank
		}
		out[i] = types.Entry{
			Rank:         rank,
			Contestant:   nd.id,
			Rating:       toFloat(nd.rating),
			Competitions: l.byID[nd.id].competitions,
		}
	}
	return out, nil
}

// Count returns the number of ranked contestants.
func (l *Leaderboard) Count(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}
