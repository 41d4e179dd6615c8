/*
Package hash provides the hash families a Count-Sketch draws its rows from.

Every row of a sketch needs its own index function, mapping a key to a column, and its
own sign function, mapping a key to -1 or +1. The error bound of the sketch holds only
if the functions of one row are pairwise independent and rows are independent of each
other, so the families here seed every row separately.

Families operate on 64-bit digests rather than keys. A key type takes part by providing a
Digest; String, Bytes and Integer cover the common cases.
*/
package hash

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
	"unsafe"

	"github.com/kwertop/freqsketch"
)

// IndexFamily maps a digest to a column in [0, Width()) for each of Rows() rows
type IndexFamily interface {
	Rows() uint
	Width() uint
	Index(row uint, digest uint64) uint
}

// SignFamily maps a digest to -1 or +1 for each of Rows() rows
type SignFamily interface {
	Rows() uint
	Sign(row uint, digest uint64) int64
}

// Sizer is implemented by families that can report their memory footprint in bytes
type Sizer interface {
	StorageSize() uint64
}

// mersenne61 is the prime 2^61 - 1
const mersenne61 = 1<<61 - 1

// universal is a Carter-Wegman family h(x) = (a*x + b) mod p with one (a, b) per row
type universal struct {
	a []uint64
	b []uint64
}

func newUniversal(rows uint, rng *rand.Rand) universal {
	u := universal{make([]uint64, rows), make([]uint64, rows)}
	for r := range u.a {
		u.a[r] = 1 + rng.Uint64N(mersenne61-1)
		u.b[r] = rng.Uint64N(mersenne61)
	}
	return u
}

func (u universal) hash(row uint, digest uint64) uint64 {
	return mulAddMod61(u.a[row], mod61(digest), u.b[row])
}

func (u universal) storageSize() uint64 {
	return uint64(len(u.a)+len(u.b)) * uint64(unsafe.Sizeof(uint64(0)))
}

func mod61(x uint64) uint64 {
	x = (x & mersenne61) + (x >> 61)
	if x >= mersenne61 {
		x -= mersenne61
	}
	return x
}

// mulAddMod61 computes (a*x + b) mod 2^61-1 for a, x, b below the modulus
func mulAddMod61(a, x, b uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	// 2^61 is 1 modulo the prime, so the product folds to its 61-bit limbs
	r := (hi<<3 | lo>>61) + (lo & mersenne61) + b
	r = (r & mersenne61) + (r >> 61)
	if r >= mersenne61 {
		r -= mersenne61
	}
	return r
}

// UniversalIndex is a pairwise independent IndexFamily
type UniversalIndex struct {
	universal
	width uint64
}

// NewUniversalIndex draws _rows_ independent index functions onto [0, _width_) from _rng_
func NewUniversalIndex(rows, width uint, rng *rand.Rand) (*UniversalIndex, error) {
	if rows == 0 || width == 0 {
		return nil, fmt.Errorf("%w: rows and width should be greater than 0, got %d and %d", freqsketch.ErrInvalidParameter, rows, width)
	}
	return &UniversalIndex{newUniversal(rows, rng), uint64(width)}, nil
}

func (h *UniversalIndex) Rows() uint  { return uint(len(h.a)) }
func (h *UniversalIndex) Width() uint { return uint(h.width) }

func (h *UniversalIndex) Index(row uint, digest uint64) uint {
	return uint(h.hash(row, digest) % h.width)
}

func (h *UniversalIndex) StorageSize() uint64 {
	return uint64(unsafe.Sizeof(*h)) + h.storageSize()
}

// UniversalSign is a pairwise independent SignFamily taking the low bit of a universal hash
type UniversalSign struct {
	universal
}

// NewUniversalSign draws _rows_ independent sign functions from _rng_
func NewUniversalSign(rows uint, rng *rand.Rand) (*UniversalSign, error) {
	if rows == 0 {
		return nil, fmt.Errorf("%w: rows should be greater than 0", freqsketch.ErrInvalidParameter)
	}
	return &UniversalSign{newUniversal(rows, rng)}, nil
}

func (s *UniversalSign) Rows() uint { return uint(len(s.a)) }

func (s *UniversalSign) Sign(row uint, digest uint64) int64 {
	return 1 - 2*int64(s.hash(row, digest)&1)
}

func (s *UniversalSign) StorageSize() uint64 {
	return uint64(unsafe.Sizeof(*s)) + s.storageSize()
}
