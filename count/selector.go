package count

import (
	"cmp"
	"container/heap"
	"fmt"
	"iter"
	"slices"

	"github.com/kwertop/freqsketch"
)

// Selector keeps the entries with the largest priority among those offered, at most
// _capacity_ of them. Keys are unique. Top returns the smallest entry held, which is
// the next one to be evicted.
// A Selector is scratch state for a single query and must not be shared between goroutines.
type Selector[K comparable, P cmp.Ordered] struct {
	heap     *minHeap[K, P]
	capacity int
}

// NewSelector creates an empty Selector holding at most _capacity_ entries
func NewSelector[K comparable, P cmp.Ordered](capacity int) (*Selector[K, P], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: selector capacity should be greater than 0, got %d", freqsketch.ErrInvalidParameter, capacity)
	}
	return &Selector[K, P]{newMinHeap[K, P](capacity), capacity}, nil
}

// Size returns the number of entries held
func (s *Selector[K, P]) Size() int {
	return s.heap.Len()
}

// Contains reports whether _key_ is held
func (s *Selector[K, P]) Contains(key K) bool {
	_, ok := s.heap.indexOf(key)
	return ok
}

// Top returns the entry with the smallest priority
func (s *Selector[K, P]) Top() (Element[K, P], error) {
	if s.heap.Len() == 0 {
		return Element[K, P]{}, fmt.Errorf("%w: top of an empty selector", freqsketch.ErrEmptyStructure)
	}
	return s.heap.entries[0], nil
}

// Push inserts (_key_, _priority_) unconditionally
func (s *Selector[K, P]) Push(key K, priority P) error {
	if s.heap.Len() >= s.capacity {
		return fmt.Errorf("%w: selector already holds %d entries", freqsketch.ErrCapacityExceeded, s.capacity)
	}
	if s.Contains(key) {
		return fmt.Errorf("%w: %v", freqsketch.ErrDuplicateKey, key)
	}
	heap.Push(s.heap, Element[K, P]{key, priority})
	return nil
}

// Pop removes and returns the entry with the smallest priority
func (s *Selector[K, P]) Pop() (Element[K, P], error) {
	if s.heap.Len() == 0 {
		return Element[K, P]{}, fmt.Errorf("%w: pop of an empty selector", freqsketch.ErrEmptyStructure)
	}
	return heap.Pop(s.heap).(Element[K, P]), nil
}

// Insert offers (_key_, _priority_) to a top-_k_ selection. The entry is kept while
// fewer than _k_ are held, or in place of the smallest entry when _priority_ is
// strictly larger; otherwise it is dropped. Insert reports whether the entry was kept.
// A failed Insert leaves the selector unchanged.
func (s *Selector[K, P]) Insert(key K, priority P, k int) (bool, error) {
	if s.heap.Len() > k {
		return false, fmt.Errorf("%w: %w: selector holds %d entries, more than k=%d",
			freqsketch.ErrInvariantViolation, freqsketch.ErrCapacityExceeded, s.heap.Len(), k)
	}
	if s.Contains(key) {
		return false, fmt.Errorf("%w: %v", freqsketch.ErrDuplicateKey, key)
	}
	if s.heap.Len() < k {
		if err := s.Push(key, priority); err != nil {
			return false, err
		}
		return true, nil
	}
	if s.heap.Len() == 0 || priority <= s.heap.entries[0].Priority {
		return false, nil
	}
	// evict the minimum and insert with a single sift down
	delete(s.heap.position, s.heap.entries[0].Key)
	s.heap.entries[0] = Element[K, P]{key, priority}
	s.heap.position[key] = 0
	heap.Fix(s.heap, 0)
	return true, nil
}

// All yields every entry held, in no particular order
func (s *Selector[K, P]) All() iter.Seq2[K, P] {
	return func(yield func(K, P) bool) {
		for _, e := range s.heap.entries {
			if !yield(e.Key, e.Priority) {
				return
			}
		}
	}
}

// Values returns the entries held from the largest priority to the smallest
func (s *Selector[K, P]) Values() []Element[K, P] {
	results := slices.Clone(s.heap.entries)
	slices.SortStableFunc(results, func(a, b Element[K, P]) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return results
}
