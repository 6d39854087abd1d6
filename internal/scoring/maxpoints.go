// Package scoring is the scenario scoring and results aggregation engine.
// It is pure: every function works on an already loaded graph, performs no
// I/O and keeps no state between calls.
package scoring

import "incident-training-service/internal/domain"

// MaxPoints returns the maximum score attainable for q. Correct options are
// additive; when no option is marked correct the best single weight is used.
func MaxPoints(q domain.Question) int {
	if len(q.Options) == 0 {
		return 0
	}
	sum, best, anyCorrect := 0, 0, false
	for _, opt := range q.Options {
		if opt.IsCorrect {
			anyCorrect = true
			sum += opt.Weight
		}
		if opt.Weight > best {
			best = opt.Weight
		}
	}
	if anyCorrect {
		return max(sum, 0)
	}
	return best
}

// ExpectedMaxPoints prefers a freshly computed non-zero value over the
// persisted MaxPoints, which may be stale.
func ExpectedMaxPoints(q domain.Question) int {
	if fresh := MaxPoints(q); fresh > 0 {
		return fresh
	}
	return max(q.MaxPoints, 0)
}

// MaxPointsIndex maps question ids to their maximum attainable points for one
// scenario. It is built per call and never shared.
type MaxPointsIndex struct {
	points map[string]int
}

// NewMaxPointsIndex seeds the index from questions.
func NewMaxPointsIndex(questions []domain.Question) *MaxPointsIndex {
	idx := &MaxPointsIndex{points: make(map[string]int, len(questions))}
	for _, q := range questions {
		idx.points[q.ID] = ExpectedMaxPoints(q)
	}
	return idx
}

// Lookup returns the indexed value for questionID.
func (idx *MaxPointsIndex) Lookup(questionID string) (int, bool) {
	v, ok := idx.points[questionID]
	return v, ok
}

// Resolve returns the max points for questionID, backfilling the index when
// the question is missing: from linked when it yields a positive value,
// otherwise from the points observed for the response.
func (idx *MaxPointsIndex) Resolve(questionID string, linked *domain.Question, observed int) int {
	if v, ok := idx.points[questionID]; ok {
		return v
	}
	v := max(observed, 0)
	if linked != nil {
		if m := ExpectedMaxPoints(*linked); m > 0 {
			v = m
		}
	}
	idx.points[questionID] = v
	return v
}
