/*
Package count implements the frequency estimation structures of freqsketch.

 1. Count-Sketch: a depth x width grid of signed counters. Every row hashes a key to
    one column and one sign; updates add sign*count to that cell and estimates take the
    median over rows of sign*cell. Refer: http://www.cs.princeton.edu/courses/archive/spring04/cos598B/bib/CharikarCF.pdf
 2. Selector: a bounded min-heap keeping the k entries with the largest priority, with
    a key index that rejects duplicates.
 3. Top-K: a streaming heavy hitter tracker combining the two.

The package implements both in-mem and Redis backed count sketches. The in-memory
structures are not safe for concurrent mutation; SyncCountSketch and
ShardedCountSketch add the locking for callers that need it.
*/
package count

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

// BaseCountSketch is what every count sketch exposes regardless of where its counters live
type BaseCountSketch interface {
	Width() uint
	Depth() uint
}

// AbstractCountSketch holds the dimensions and hash families shared by the
// in-memory and the Redis backed sketches
type AbstractCountSketch[K any] struct {
	width    uint
	depth    uint
	seed     uint64
	signBits uint
	digest   hash.Digest[K]
	index    hash.IndexFamily
	signs    hash.SignFamily
}

// Option configures how a sketch derives its hash families
type Option func(*options)

type options struct {
	seed     uint64
	seeded   bool
	signBits uint
}

// WithSeed derives the hash families from _seed_ instead of a random one. Sketches
// built with equal seeds and dimensions hash every key identically.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithBitTableSigns draws signs from random tables of 2^_bits_ bits per row instead of
// the universal sign family
func WithBitTableSigns(bits uint) Option {
	return func(o *options) {
		o.signBits = bits
	}
}

func makeOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
		o.seeded = true
	}
	return o
}

func makeAbstractCountSketch[K any](width, depth uint, digest hash.Digest[K], o options) (*AbstractCountSketch[K], error) {
	if err := freqsketch.ValidateDimensions(width, depth); err != nil {
		return nil, err
	}
	if digest == nil {
		return nil, fmt.Errorf("%w: digest should not be nil", freqsketch.ErrInvalidParameter)
	}
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	index, err := hash.NewUniversalIndex(depth, width, rng)
	if err != nil {
		return nil, err
	}
	var signs hash.SignFamily
	if o.signBits > 0 {
		signs, err = hash.NewBitTableSign(depth, o.signBits, rng)
	} else {
		signs, err = hash.NewUniversalSign(depth, rng)
	}
	if err != nil {
		return nil, err
	}
	return &AbstractCountSketch[K]{
		width:    width,
		depth:    depth,
		seed:     o.seed,
		signBits: o.signBits,
		digest:   digest,
		index:    index,
		signs:    signs,
	}, nil
}

func makeAbstractCountSketchWithFamilies[K any](digest hash.Digest[K], index hash.IndexFamily, signs hash.SignFamily) (*AbstractCountSketch[K], error) {
	if digest == nil || index == nil || signs == nil {
		return nil, fmt.Errorf("%w: digest and hash families should not be nil", freqsketch.ErrInvalidParameter)
	}
	if err := freqsketch.ValidateDimensions(index.Width(), index.Rows()); err != nil {
		return nil, err
	}
	if index.Rows() != signs.Rows() {
		return nil, fmt.Errorf("%w: index family has %d rows, sign family %d", freqsketch.ErrInvalidParameter, index.Rows(), signs.Rows())
	}
	return &AbstractCountSketch[K]{
		width:  index.Width(),
		depth:  index.Rows(),
		digest: digest,
		index:  index,
		signs:  signs,
	}, nil
}

// Width returns the number of counters per row
func (cs *AbstractCountSketch[K]) Width() uint {
	return cs.width
}

// Depth returns the number of rows
func (cs *AbstractCountSketch[K]) Depth() uint {
	return cs.depth
}

// Seed returns the seed the hash families were drawn from. It is 0 for sketches built
// from caller supplied families.
func (cs *AbstractCountSketch[K]) Seed() uint64 {
	return cs.seed
}

func (cs *AbstractCountSketch[K]) cell(row uint, digest uint64) (uint, int64) {
	return cs.index.Index(row, digest), cs.signs.Sign(row, digest)
}

func (cs *AbstractCountSketch[K]) familiesSize() uint64 {
	var size uint64
	if s, ok := cs.index.(hash.Sizer); ok {
		size += s.StorageSize()
	}
	if s, ok := cs.signs.(hash.Sizer); ok {
		size += s.StorageSize()
	}
	return size
}

// medianStackSize is the depth up to which per-row estimates stay on the stack
const medianStackSize = 32

func rowBuffer(buf []int64, depth uint) []int64 {
	if depth <= uint(len(buf)) {
		return buf[:depth]
	}
	return make([]int64, depth)
}

// median sorts _values_ in place. For an even count it returns the mean of the two
// middle values, truncated toward zero.
func median(values []int64) int64 {
	slices.Sort(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	a, b := values[n/2-1], values[n/2]
	if (a < 0) != (b < 0) {
		return (a + b) / 2
	}
	return a/2 + b/2 + (a%2+b%2)/2
}
