package count

import "cmp"

// Element is an entry of a Selector or TopK
type Element[K comparable, P cmp.Ordered] struct {
	Key      K
	Priority P
}

// minHeap is a container/heap min-heap on priority that also tracks where every
// key sits, so lookups and re-prioritisation by key are O(1) and O(log n)
type minHeap[K comparable, P cmp.Ordered] struct {
	entries  []Element[K, P]
	position map[K]int
}

func newMinHeap[K comparable, P cmp.Ordered](capacity int) *minHeap[K, P] {
	capacity = min(capacity, 4096)
	return &minHeap[K, P]{
		entries:  make([]Element[K, P], 0, capacity),
		position: make(map[K]int, capacity),
	}
}

func (h *minHeap[K, P]) Len() int {
	return len(h.entries)
}

func (h *minHeap[K, P]) Less(i, j int) bool {
	return h.entries[i].Priority < h.entries[j].Priority
}

func (h *minHeap[K, P]) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.position[h.entries[i].Key] = i
	h.position[h.entries[j].Key] = j
}

func (h *minHeap[K, P]) Push(x any) {
	e := x.(Element[K, P])
	h.position[e.Key] = len(h.entries)
	h.entries = append(h.entries, e)
}

func (h *minHeap[K, P]) Pop() any {
	n := len(h.entries)
	e := h.entries[n-1]
	h.entries = h.entries[:n-1]
	delete(h.position, e.Key)
	return e
}

func (h *minHeap[K, P]) indexOf(key K) (int, bool) {
	i, ok := h.position[key]
	return i, ok
}
