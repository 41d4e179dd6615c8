package count

import (
	"container/heap"
	"fmt"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

// TopK tracks the heavy hitters of a stream as it is ingested.
// _k_ is the number of top elements to track
// _sketch_ is the count sketch keeping the estimated counts
// _heap_ holds the k keys with the largest estimate seen at their last update
type TopK[K comparable] struct {
	k      uint
	sketch *CountSketch[K]
	heap   *minHeap[K, int64]
}

// NewTopK creates a TopK over a fresh CountSketch sized for _epsilon_ and _gamma_
func NewTopK[K comparable](k uint, epsilon, gamma float64, digest hash.Digest[K], opts ...Option) (*TopK[K], error) {
	sketch, err := NewCountSketchFromEstimates(epsilon, gamma, digest, opts...)
	if err != nil {
		return nil, err
	}
	return NewTopKWithSketch(k, sketch)
}

// NewTopKWithSketch creates a TopK that ingests into _sketch_. The sketch must be
// wider than 8*k.
func NewTopKWithSketch[K comparable](k uint, sketch *CountSketch[K]) (*TopK[K], error) {
	if k == 0 {
		return nil, fmt.Errorf("%w: k should be greater than 0", freqsketch.ErrInvalidParameter)
	}
	if sketch.Width() <= 8*k {
		return nil, fmt.Errorf("%w: sketch width %d should exceed 8*k = %d", freqsketch.ErrInvalidParameter, sketch.Width(), 8*k)
	}
	return &TopK[K]{k, sketch, newMinHeap[K, int64](int(k))}, nil
}

// Insert adds _count_ occurrences of _key_ to the sketch and re-ranks the key
func (t *TopK[K]) Insert(key K, count int64) {
	estimate := t.sketch.UpdateAndEstimate(key, count)
	if i, ok := t.heap.indexOf(key); ok {
		t.heap.entries[i].Priority = estimate
		heap.Fix(t.heap, i)
		return
	}
	if uint(t.heap.Len()) < t.k {
		heap.Push(t.heap, Element[K, int64]{key, estimate})
		return
	}
	if estimate > t.heap.entries[0].Priority {
		heap.Pop(t.heap)
		heap.Push(t.heap, Element[K, int64]{key, estimate})
	}
}

// Estimate returns the sketch estimate of _key_
func (t *TopK[K]) Estimate(key K) int64 {
	return t.sketch.Estimate(key)
}

// Values returns the tracked keys, largest estimate first
func (t *TopK[K]) Values() []Element[K, int64] {
	s := Selector[K, int64]{heap: t.heap, capacity: int(t.k)}
	return s.Values()
}
