package duel

import (
	"math"
)

// DefaultMaxSampleAttempts caps rejected redraws across one whole allocation.
// It is a circuit breaker against pathological collision rates, not a
// correctness guarantee; tune it through DuelConfig.MaxSampleAttempts.
const DefaultMaxSampleAttempts = 500

// Rand is the random source the allocator draws indices from. *math/rand.Rand
// satisfies it; tests inject deterministic or adversarial sources.
type Rand interface {
	Intn(n int) int
}

// Allocate selects an ordered, duplicate-free list of exactly n questions
// from the per-category pools, proportionally to the category weights.
//
// Targets are round-half-away-from-zero of weight/sum*n; rounding drift is
// absorbed entirely by the first category in iteration order (the order of
// the weights slice).
//
// The result is category-major in weights order, not globally shuffled.
func Allocate(rng Rand, weights []CategoryWeight, pool map[string][]QuestionRef, n int, maxAttempts int) ([]QuestionRef, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSampleAttempts
	}

	sum := 0
	for _, w := range weights {
		if w.Weight > 0 {
			sum += w.Weight
		}
	}
	if sum == 0 {
		return nil, &ConfigurationError{}
	}

	targets := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		targets[i] = roundHalfAwayFromZero(float64(w.Weight) / float64(sum) * float64(n))
		total += targets[i]
	}

	// Rebalance: the whole signed drift lands on the first category.
	if total != n && len(targets) > 0 {
		targets[0] += n - total
	}

	for i, w := range weights {
		if have := len(pool[w.CategoryID]); have < targets[i] {
			return nil, &InsufficientQuestionsError{
				CategoryID: w.CategoryID,
				Need:       targets[i],
				Have:       have,
			}
		}
	}

	attempts := 0
	chosen := make(map[string]struct{}, n)
	out := make([]QuestionRef, 0, n)
	for i, w := range weights {
		candidates := pool[w.CategoryID]
		for picked := 0; picked < targets[i]; {
			q := candidates[rng.Intn(len(candidates))]
			if _, dup := chosen[q.QuestionID]; dup {
				attempts++
				if attempts >= maxAttempts {
					return nil, &DuplicateExhaustionError{Attempts: maxAttempts}
				}
				continue
			}
			chosen[q.QuestionID] = struct{}{}
			out = append(out, q)
			picked++
		}
	}

	if len(out) != n {
		return nil, &CountMismatchError{Want: n, Got: len(out)}
	}
	return out, nil
}

func roundHalfAwayFromZero(x float64) int {
	if x < 0 {
		return int(math.Ceil(x - 0.5))
	}
	return int(math.Floor(x + 0.5))
}
