package assets

import (
	"fmt"
	"math"
	"math/rand"
)

// Choose draws one item with probability proportional to its weight.
// Zero-weight items are never drawn.
func Choose[T any](rng *rand.Rand, items []T, weights []float64) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyCatalog
	}
	if len(items) != len(weights) {
		return zero, fmt.Errorf("choose: %d items but %d weights", len(items), len(weights))
	}

	total := 0.0
	last := -1
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 || math.IsInf(w, 0) {
			return zero, fmt.Errorf("%w: weight %v at index %d", ErrDegenerateWeights, w, i)
		}
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return zero, fmt.Errorf("%w: no positive weight among %d items", ErrDegenerateWeights, len(items))
	}

	target := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		cumulative += w
		if target < cumulative {
			return items[i], nil
		}
	}
	// Rounding can leave target at the very top of the range.
	return items[last], nil
}
