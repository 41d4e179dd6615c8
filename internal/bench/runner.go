/*
Package bench measures Count-Sketch accuracy and update cost on generated key streams.

A run feeds a Histogram into a sketch, one Update per distinct key, then checks the
FindApproxTop guarantee: every key reported among the estimated top k must have a true
count greater than (1 - epsilon) times the k-th largest true count.
*/
package bench

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/count"
	"github.com/kwertop/freqsketch/hash"
)

// Result describes one run
type Result struct {
	Epsilon       float64
	Width         uint
	Depth         uint
	SizeBytes     uint64
	UpdateLatency time.Duration
	// Violations counts reported keys below (1 - epsilon) * n_k
	Violations int
	// MeanRelativeError averages |estimate - count| / count over the reported keys
	MeanRelativeError float64
}

// Passed reports whether the top-k guarantee held
func (r Result) Passed() bool {
	return r.Violations == 0
}

func (r Result) String() string {
	return fmt.Sprintf("epsilon: %v, width: %d, depth: %d, size: %d KB, update latency: %v, violations: %d, mean relative error: %.4f",
		r.Epsilon, r.Width, r.Depth, r.SizeBytes/1024, r.UpdateLatency, r.Violations, r.MeanRelativeError)
}

// RunInvariant sizes a sketch from _epsilon_ and _gamma_ and checks the top _k_ keys
func RunInvariant(hist Histogram, epsilon, gamma float64, k int, seed uint64) (Result, error) {
	sketch, err := count.NewCountSketchFromEstimates(epsilon, gamma, hash.Integer[int64], count.WithSeed(seed))
	if err != nil {
		return Result{}, err
	}
	return run(hist, sketch, epsilon, k, false)
}

// RunDepth checks the top _k_ keys with an explicit _depth_. With _combined_ the stream
// is ingested through UpdateAndEstimate instead of Update.
func RunDepth(hist Histogram, epsilon float64, depth uint, k int, seed uint64, combined bool) (Result, error) {
	width, err := freqsketch.ErrorMarginToWidth(epsilon)
	if err != nil {
		return Result{}, err
	}
	sketch, err := count.NewCountSketch(width, depth, hash.Integer[int64], count.WithSeed(seed))
	if err != nil {
		return Result{}, err
	}
	return run(hist, sketch, epsilon, k, combined)
}

func run(hist Histogram, sketch *count.CountSketch[int64], epsilon float64, k int, combined bool) (Result, error) {
	if len(hist) == 0 {
		return Result{}, fmt.Errorf("empty histogram")
	}
	if k <= 0 || sketch.Width() <= 8*uint(k) {
		return Result{}, fmt.Errorf("%w: top-%d needs a sketch wider than %d, got width %d", freqsketch.ErrInvalidParameter, k, 8*k, sketch.Width())
	}
	start := time.Now()
	for key, c := range hist {
		if combined {
			sketch.UpdateAndEstimate(key, c)
		} else {
			sketch.Update(key, c)
		}
	}
	elapsed := time.Since(start)

	estimated, err := count.NewSelector[int64, int64](k)
	if err != nil {
		return Result{}, err
	}
	actual, _ := count.NewSelector[int64, int64](k)
	for key, c := range hist {
		if _, err := estimated.Insert(key, sketch.Estimate(key), k); err != nil {
			return Result{}, err
		}
		if _, err := actual.Insert(key, c, k); err != nil {
			return Result{}, err
		}
	}
	smallest, err := actual.Top()
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Epsilon:       epsilon,
		Width:         sketch.Width(),
		Depth:         sketch.Depth(),
		SizeBytes:     sketch.StorageSize(),
		UpdateLatency: elapsed / time.Duration(len(hist)),
	}
	bound := (1 - epsilon) * float64(smallest.Priority)
	var relErr float64
	for key, est := range estimated.All() {
		if float64(hist[key]) <= bound {
			result.Violations++
		}
		relErr += math.Abs(float64(est-hist[key])) / float64(hist[key])
	}
	result.MeanRelativeError = relErr / float64(estimated.Size())
	return result, nil
}

// CompareRedis ingests _hist_ into an in-memory sketch and a Redis sketch sharing
// _seed_, and returns the number of keys whose estimates differ. The Redis sketch is
// deleted afterwards; a failed delete is reported as the error.
func CompareRedis(ctx context.Context, hist Histogram, epsilon, gamma float64, seed uint64) (mismatches int, err error) {
	local, err := count.NewCountSketchFromEstimates(epsilon, gamma, hash.Integer[int64], count.WithSeed(seed))
	if err != nil {
		return 0, err
	}
	remote, err := count.NewCountSketchRedisFromEstimates(ctx, epsilon, gamma, hash.Integer[int64], count.WithSeed(seed))
	if err != nil {
		return 0, err
	}
	defer func() {
		if deleteErr := remote.Delete(ctx); deleteErr != nil && err == nil {
			err = deleteErr
		}
	}()
	for key, c := range hist {
		local.Update(key, c)
		if err := remote.Update(ctx, key, c); err != nil {
			return 0, err
		}
	}
	for key := range hist {
		est, err := remote.Estimate(ctx, key)
		if err != nil {
			return 0, err
		}
		if est != local.Estimate(key) {
			mismatches++
		}
	}
	return mismatches, nil
}
