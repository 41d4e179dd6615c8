package hash

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/kwertop/freqsketch"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestMulAddMod61(t *testing.T) {
	p := new(big.Int).SetUint64(mersenne61)
	r := newRand(1)
	cases := [][3]uint64{{0, 0, 0}, {mersenne61 - 1, mersenne61 - 1, mersenne61 - 1}, {1, mersenne61 - 1, 1}}
	for i := 0; i < 1000; i++ {
		cases = append(cases, [3]uint64{r.Uint64N(mersenne61), r.Uint64N(mersenne61), r.Uint64N(mersenne61)})
	}
	for _, c := range cases {
		want := new(big.Int).Mul(new(big.Int).SetUint64(c[0]), new(big.Int).SetUint64(c[1]))
		want.Add(want, new(big.Int).SetUint64(c[2]))
		want.Mod(want, p)
		if got := mulAddMod61(c[0], c[1], c[2]); got != want.Uint64() {
			t.Errorf("(%d*%d+%d) mod p should be %d, found %d", c[0], c[1], c[2], want.Uint64(), got)
		}
	}
	if mod61(^uint64(0)) != (^uint64(0))%mersenne61 {
		t.Errorf("mod61 of max uint64 should be %d, found %d", (^uint64(0))%mersenne61, mod61(^uint64(0)))
	}
}

func TestUniversalIndexRange(t *testing.T) {
	index, err := NewUniversalIndex(5, 100, newRand(7))
	if err != nil {
		t.Fatalf("index family creation should succeed, error: %v", err)
	}
	if index.Rows() != 5 || index.Width() != 100 {
		t.Errorf("index family should have 5 rows of width 100")
	}
	hits := make([]int, 100)
	for k := 0; k < 10000; k++ {
		for row := uint(0); row < 5; row++ {
			c := index.Index(row, Integer(k))
			if c >= 100 {
				t.Fatalf("column should be below 100, found %d", c)
			}
			if row == 0 {
				hits[c]++
			}
		}
	}
	for c, h := range hits {
		if h == 0 {
			t.Errorf("column %d should receive some keys out of 10000", c)
		}
	}
}

func TestUniversalSignBalance(t *testing.T) {
	signs, err := NewUniversalSign(4, newRand(11))
	if err != nil {
		t.Fatalf("sign family creation should succeed, error: %v", err)
	}
	for row := uint(0); row < signs.Rows(); row++ {
		var sum int64
		for k := 0; k < 10000; k++ {
			s := signs.Sign(row, Integer(k))
			if s != 1 && s != -1 {
				t.Fatalf("sign should be -1 or +1, found %d", s)
			}
			sum += s
		}
		if sum < -600 || sum > 600 {
			t.Errorf("signs of row %d should be balanced, sum %d over 10000 keys", row, sum)
		}
	}
}

func TestFamiliesReproducible(t *testing.T) {
	i1, _ := NewUniversalIndex(3, 1000, newRand(99))
	i2, _ := NewUniversalIndex(3, 1000, newRand(99))
	i3, _ := NewUniversalIndex(3, 1000, newRand(100))
	same, differ := true, false
	for k := 0; k < 100; k++ {
		for row := uint(0); row < 3; row++ {
			d := Integer(k)
			same = same && i1.Index(row, d) == i2.Index(row, d)
			differ = differ || i1.Index(row, d) != i3.Index(row, d)
		}
	}
	if !same {
		t.Errorf("families drawn from the same seed should be identical")
	}
	if !differ {
		t.Errorf("families drawn from different seeds should differ")
	}
}

func TestFamilyErrors(t *testing.T) {
	if _, err := NewUniversalIndex(0, 10, newRand(1)); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("zero rows should fail with ErrInvalidParameter, found %v", err)
	}
	if _, err := NewUniversalIndex(3, 0, newRand(1)); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("zero width should fail with ErrInvalidParameter, found %v", err)
	}
	if _, err := NewUniversalSign(0, newRand(1)); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("zero rows should fail with ErrInvalidParameter, found %v", err)
	}
}

func TestBitTableSign(t *testing.T) {
	signs, err := NewBitTableSign(3, 10, newRand(3))
	if err != nil {
		t.Fatalf("bit table creation should succeed, error: %v", err)
	}
	if signs.Rows() != 3 {
		t.Errorf("bit table should have 3 rows, found %d", signs.Rows())
	}
	var sum int64
	for k := 0; k < 10000; k++ {
		s := signs.Sign(1, Integer(k))
		if s != 1 && s != -1 {
			t.Fatalf("sign should be -1 or +1, found %d", s)
		}
		sum += s
	}
	if sum < -2000 || sum > 2000 {
		t.Errorf("signs should be roughly balanced, sum %d over 10000 keys", sum)
	}
	if signs.StorageSize() < 3*(1<<10)/8 {
		t.Errorf("storage size should cover the tables, found %d", signs.StorageSize())
	}
	for _, bits := range []uint{0, MaxSignTableBits + 1} {
		if _, err := NewBitTableSign(3, bits, newRand(3)); !errors.Is(err, freqsketch.ErrInvalidParameter) {
			t.Errorf("%d bits should fail with ErrInvalidParameter, found %v", bits, err)
		}
	}
}
