package count

import (
	"slices"
	"unsafe"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

// CountSketch is the in-memory Count-Sketch. Its counters form a depth x width grid
// stored row-major in _counters_; nothing is stored per key.
// A CountSketch must not be mutated concurrently, see SyncCountSketch.
type CountSketch[K any] struct {
	AbstractCountSketch[K]
	counters    []int64
	storageSize uint64
}

// NewCountSketch creates a CountSketch with _width_ counters in each of _depth_ rows.
// Keys are reduced by _digest_ before hashing.
func NewCountSketch[K any](width, depth uint, digest hash.Digest[K], opts ...Option) (*CountSketch[K], error) {
	abstractSketch, err := makeAbstractCountSketch(width, depth, digest, makeOptions(opts))
	if err != nil {
		return nil, err
	}
	return newCountSketch(abstractSketch), nil
}

// NewCountSketchFromEstimates creates a CountSketch whose estimates are off by more
// than _epsilon_ (relative to the L2 norm of the counts) with probability at most _gamma_
func NewCountSketchFromEstimates[K any](epsilon, gamma float64, digest hash.Digest[K], opts ...Option) (*CountSketch[K], error) {
	width, err := freqsketch.ErrorMarginToWidth(epsilon)
	if err != nil {
		return nil, err
	}
	depth, err := freqsketch.FailureProbToDepth(gamma)
	if err != nil {
		return nil, err
	}
	return NewCountSketch(width, depth, digest, opts...)
}

// NewCountSketchWithFamilies creates a CountSketch over caller supplied hash families.
// The dimensions are taken from _index_.
func NewCountSketchWithFamilies[K any](digest hash.Digest[K], index hash.IndexFamily, signs hash.SignFamily) (*CountSketch[K], error) {
	abstractSketch, err := makeAbstractCountSketchWithFamilies(digest, index, signs)
	if err != nil {
		return nil, err
	}
	return newCountSketch(abstractSketch), nil
}

func newCountSketch[K any](abstractSketch *AbstractCountSketch[K]) *CountSketch[K] {
	cs := &CountSketch[K]{
		AbstractCountSketch: *abstractSketch,
		counters:            make([]int64, abstractSketch.width*abstractSketch.depth),
	}
	cs.storageSize = uint64(unsafe.Sizeof(*cs)) +
		uint64(len(cs.counters))*uint64(unsafe.Sizeof(int64(0))) +
		cs.familiesSize()
	return cs
}

// Update adds _count_ occurrences of _key_. Negative counts retract earlier ones.
func (cs *CountSketch[K]) Update(key K, count int64) {
	digest := cs.digest(key)
	for r := uint(0); r < cs.depth; r++ {
		c, sign := cs.cell(r, digest)
		cs.counters[r*cs.width+c] += sign * count
	}
}

// Estimate returns the median over rows of the signed counter _key_ maps to
func (cs *CountSketch[K]) Estimate(key K) int64 {
	var buf [medianStackSize]int64
	values := rowBuffer(buf[:], cs.depth)
	digest := cs.digest(key)
	for r := uint(0); r < cs.depth; r++ {
		c, sign := cs.cell(r, digest)
		values[r] = sign * cs.counters[r*cs.width+c]
	}
	return median(values)
}

// UpdateAndEstimate adds _count_ occurrences of _key_ and returns the estimate after
// the update, hashing the key once per row instead of twice
func (cs *CountSketch[K]) UpdateAndEstimate(key K, count int64) int64 {
	var buf [medianStackSize]int64
	values := rowBuffer(buf[:], cs.depth)
	digest := cs.digest(key)
	for r := uint(0); r < cs.depth; r++ {
		c, sign := cs.cell(r, digest)
		i := r*cs.width + c
		cs.counters[i] += sign * count
		values[r] = sign * cs.counters[i]
	}
	return median(values)
}

// StorageSize returns the bytes held by the sketch: the counter grid, the struct
// itself and the hash family descriptors
func (cs *CountSketch[K]) StorageSize() uint64 {
	return cs.storageSize
}

// Reset zeroes every counter, keeping the hash families
func (cs *CountSketch[K]) Reset() {
	clear(cs.counters)
}

// Equals checks if two CountSketch have the same dimensions and counters
func (cs *CountSketch[K]) Equals(cs1 *CountSketch[K]) bool {
	if cs.width != cs1.width || cs.depth != cs1.depth {
		return false
	}
	return slices.Equal(cs.counters, cs1.counters)
}
