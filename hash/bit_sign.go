package hash

import (
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"github.com/kwertop/freqsketch"
)

// MaxSignTableBits bounds the table of a BitTableSign to 2^24 bits (2 MiB) per row
const MaxSignTableBits = 24

// BitTableSign draws every row's sign from a table of random bits. A universal hash
// picks the bit, so two keys get independent signs unless they land on the same bit,
// which happens with probability 2^-bits.
type BitTableSign struct {
	slots  *UniversalIndex
	tables []*bitset.BitSet
}

// NewBitTableSign builds _rows_ tables of 2^_bits_ random bits from _rng_
func NewBitTableSign(rows, bits uint, rng *rand.Rand) (*BitTableSign, error) {
	if bits == 0 || bits > MaxSignTableBits {
		return nil, fmt.Errorf("%w: sign table bits should be in [1, %d], got %d", freqsketch.ErrInvalidParameter, MaxSignTableBits, bits)
	}
	size := uint(1) << bits
	slots, err := NewUniversalIndex(rows, size, rng)
	if err != nil {
		return nil, err
	}
	tables := make([]*bitset.BitSet, rows)
	for r := range tables {
		words := make([]uint64, (size+63)/64)
		for w := range words {
			words[w] = rng.Uint64()
		}
		tables[r] = bitset.From(words)
	}
	return &BitTableSign{slots, tables}, nil
}

func (s *BitTableSign) Rows() uint { return s.slots.Rows() }

func (s *BitTableSign) Sign(row uint, digest uint64) int64 {
	if s.tables[row].Test(s.slots.Index(row, digest)) {
		return 1
	}
	return -1
}

func (s *BitTableSign) StorageSize() uint64 {
	size := uint64(unsafe.Sizeof(*s)) + s.slots.StorageSize()
	for _, t := range s.tables {
		size += uint64(t.BinaryStorageSize())
	}
	return size
}
