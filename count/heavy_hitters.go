package count

import (
	"fmt"
	"iter"

	"github.com/kwertop/freqsketch"
)

// Estimator is a sketch that can be queried for heavy hitters
type Estimator[K any] interface {
	Width() uint
	Estimate(key K) int64
}

// HeavyHitters estimates every key of _candidates_ and returns the _k_ largest
// estimates, largest first. The sketch must be wider than 8*k for the result to meet
// the Count-Sketch top-k guarantee; narrower sketches are rejected.
// Candidates must be unique.
func HeavyHitters[K comparable](sketch Estimator[K], candidates iter.Seq[K], k int) ([]Element[K, int64], error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k should be greater than 0, got %d", freqsketch.ErrInvalidParameter, k)
	}
	if sketch.Width() <= 8*uint(k) {
		return nil, fmt.Errorf("%w: sketch width %d should exceed 8*k = %d", freqsketch.ErrInvalidParameter, sketch.Width(), 8*k)
	}
	selector, err := NewSelector[K, int64](k)
	if err != nil {
		return nil, err
	}
	for key := range candidates {
		if _, err := selector.Insert(key, sketch.Estimate(key), k); err != nil {
			return nil, err
		}
	}
	return selector.Values(), nil
}
