/*
Package freqsketch implements frequency estimation over high volume key streams.

 1. Count-Sketch: a randomized summary answering "how many times has key K been seen"
    with error bounded by epsilon with probability 1 - gamma, using a fixed grid of
    signed counters. Refer: http://www.cs.princeton.edu/courses/archive/spring04/cos598B/bib/CharikarCF.pdf
 2. Selector: a bounded min-heap that keeps the k entries with the largest priority,
    used to extract heavy hitters from per-key estimates.

The sketches live in package count, the hash families they draw from in package hash.
This package holds what they share: errors, parameter derivation and the Redis client.
*/
package freqsketch

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// widthConstant is c in width = ceil(c / epsilon^2). With c = 16 a single row misses
// the epsilon bound with probability at most 1/16 (Chebyshev), so the median of
// ceil(log2(1/gamma)) rows misses it with probability at most gamma (Chernoff).
const widthConstant = 16.0

// MaxWidth and MaxDepth bound the grid a sketch may allocate
const (
	MaxWidth = 1 << 32
	MaxDepth = 1 << 11
)

// ErrorMarginToWidth returns the number of counters per row needed for relative
// error _epsilon_
func ErrorMarginToWidth(epsilon float64) (uint, error) {
	if !(epsilon > 0) || math.IsInf(epsilon, 1) {
		return 0, fmt.Errorf("%w: epsilon should be greater than 0, got %v", ErrInvalidParameter, epsilon)
	}
	width := math.Ceil(widthConstant / (epsilon * epsilon))
	if width > MaxWidth {
		return 0, fmt.Errorf("%w: epsilon %v needs width %.0f, more than %d", ErrInvalidParameter, epsilon, width, uint64(MaxWidth))
	}
	return uint(width), nil
}

// FailureProbToDepth returns the number of rows needed for the error bound to fail
// with probability at most _gamma_
func FailureProbToDepth(gamma float64) (uint, error) {
	if !(gamma > 0 && gamma < 1) {
		return 0, fmt.Errorf("%w: gamma should be in (0, 1), got %v", ErrInvalidParameter, gamma)
	}
	inverse := 1 / gamma
	if math.IsInf(inverse, 1) {
		return 0, fmt.Errorf("%w: gamma %v is too small, 1/gamma overflows", ErrInvalidParameter, gamma)
	}
	depth := math.Max(1, math.Ceil(math.Log2(inverse)))
	if depth > MaxDepth {
		return 0, fmt.Errorf("%w: gamma %v needs depth %.0f, more than %d", ErrInvalidParameter, gamma, depth, MaxDepth)
	}
	return uint(depth), nil
}

// ValidateDimensions checks that a _width_ x _depth_ grid of counters can be allocated
// and indexed
func ValidateDimensions(width, depth uint) error {
	if width == 0 || depth == 0 {
		return fmt.Errorf("%w: width and depth should be greater than 0, got %d and %d", ErrInvalidParameter, width, depth)
	}
	if uint64(width) > MaxWidth || depth > MaxDepth {
		return fmt.Errorf("%w: width and depth should be at most %d and %d, got %d and %d", ErrInvalidParameter, uint64(MaxWidth), MaxDepth, width, depth)
	}
	if width > uint(math.MaxInt)/depth {
		return fmt.Errorf("%w: %d x %d counters overflow the grid index", ErrInvalidParameter, width, depth)
	}
	return nil
}

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateRandomString returns _n_ random letters, used to name Redis keys
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.IntN(len(letterBytes))]
	}
	return string(b)
}
