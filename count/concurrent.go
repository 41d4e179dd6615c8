package count

import (
	"fmt"
	"sync"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

// SyncCountSketch guards a CountSketch with a single lock, for callers that ingest
// from several goroutines. Estimates share a read lock.
type SyncCountSketch[K any] struct {
	lock   sync.RWMutex
	sketch *CountSketch[K]
}

// NewSyncCountSketch wraps _sketch_, which must not be used directly afterwards
func NewSyncCountSketch[K any](sketch *CountSketch[K]) *SyncCountSketch[K] {
	return &SyncCountSketch[K]{sketch: sketch}
}

func (s *SyncCountSketch[K]) Width() uint { return s.sketch.Width() }
func (s *SyncCountSketch[K]) Depth() uint { return s.sketch.Depth() }

func (s *SyncCountSketch[K]) StorageSize() uint64 {
	return s.sketch.StorageSize()
}

func (s *SyncCountSketch[K]) Update(key K, count int64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sketch.Update(key, count)
}

func (s *SyncCountSketch[K]) Estimate(key K) int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sketch.Estimate(key)
}

func (s *SyncCountSketch[K]) UpdateAndEstimate(key K, count int64) int64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sketch.UpdateAndEstimate(key, count)
}

// ShardedCountSketch spreads keys over independent CountSketch shards, each behind its
// own lock, so writers touching different shards never contend. A key always lands on
// the same shard, so its estimate comes from that shard alone.
type ShardedCountSketch[K any] struct {
	digest hash.Digest[K]
	shards []*SyncCountSketch[K]
}

// NewShardedCountSketch creates _shards_ sketches of _width_ x _depth_. With WithSeed
// every shard derives its own seed from the given one.
func NewShardedCountSketch[K any](shards int, width, depth uint, digest hash.Digest[K], opts ...Option) (*ShardedCountSketch[K], error) {
	if shards <= 0 {
		return nil, fmt.Errorf("%w: shards should be greater than 0, got %d", freqsketch.ErrInvalidParameter, shards)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	sharded := &ShardedCountSketch[K]{digest: digest, shards: make([]*SyncCountSketch[K], shards)}
	for i := range sharded.shards {
		so := o
		if so.seeded {
			so.seed = hash.Mix(o.seed + uint64(i))
		} else {
			so = makeOptions(nil)
			so.signBits = o.signBits
		}
		abstractSketch, err := makeAbstractCountSketch(width, depth, digest, so)
		if err != nil {
			return nil, err
		}
		sharded.shards[i] = NewSyncCountSketch(newCountSketch(abstractSketch))
	}
	return sharded, nil
}

func (s *ShardedCountSketch[K]) shard(key K) *SyncCountSketch[K] {
	return s.shards[hash.Mix(s.digest(key))%uint64(len(s.shards))]
}

// Shards returns the number of shards
func (s *ShardedCountSketch[K]) Shards() int { return len(s.shards) }

func (s *ShardedCountSketch[K]) Width() uint { return s.shards[0].Width() }
func (s *ShardedCountSketch[K]) Depth() uint { return s.shards[0].Depth() }

// StorageSize sums the storage of all shards
func (s *ShardedCountSketch[K]) StorageSize() uint64 {
	var size uint64
	for _, shard := range s.shards {
		size += shard.StorageSize()
	}
	return size
}

func (s *ShardedCountSketch[K]) Update(key K, count int64) {
	s.shard(key).Update(key, count)
}

func (s *ShardedCountSketch[K]) Estimate(key K) int64 {
	return s.shard(key).Estimate(key)
}

func (s *ShardedCountSketch[K]) UpdateAndEstimate(key K, count int64) int64 {
	return s.shard(key).UpdateAndEstimate(key, count)
}
