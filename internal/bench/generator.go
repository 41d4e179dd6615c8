package bench

import (
	"math"
	"math/rand/v2"
)

// Histogram is the exact count of every key in a generated stream
type Histogram map[int64]int64

// Total returns the number of samples in the histogram
func (h Histogram) Total() int64 {
	var total int64
	for _, c := range h {
		total += c
	}
	return total
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
}

// NormalHistogram draws _samples_ keys from a normal distribution rounded to integers
func NormalHistogram(samples int, mean, stddev float64, seed uint64) Histogram {
	r := newRand(seed)
	h := make(Histogram)
	for i := 0; i < samples; i++ {
		h[int64(math.Round(r.NormFloat64()*stddev+mean))]++
	}
	return h
}

// ZipfHistogram draws _samples_ keys in [0, imax] with P(k) proportional to (v+k)^-s
func ZipfHistogram(samples int, s, v float64, imax uint64, seed uint64) Histogram {
	z := rand.NewZipf(newRand(seed), s, v, imax)
	h := make(Histogram)
	for i := 0; i < samples; i++ {
		h[int64(z.Uint64())]++
	}
	return h
}
