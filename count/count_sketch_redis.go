package count

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
	"github.com/redis/go-redis/v9"
)

// every row is a Redis hash from column to counter, absent columns count as 0.
// Counters are read back with HGET: integer replies become Lua numbers (doubles) inside
// a script, which would round counters beyond 2^53.
var (
	updateScript = redis.NewScript(`
		for i = 1, #KEYS do
			redis.call('HINCRBY', KEYS[i], ARGV[2*i-1], ARGV[2*i])
		end
		return true
	`)
	updateAndEstimateScript = redis.NewScript(`
		local values = {}
		for i = 1, #KEYS do
			redis.call('HINCRBY', KEYS[i], ARGV[2*i-1], ARGV[2*i])
			values[i] = redis.call('HGET', KEYS[i], ARGV[2*i-1])
		end
		return values
	`)
	estimateScript = redis.NewScript(`
		local values = {}
		for i = 1, #KEYS do
			values[i] = redis.call('HGET', KEYS[i], ARGV[i]) or '0'
		end
		return values
	`)
)

// CountSketchRedis is the Redis backed implementation of BaseCountSketch. Several
// processes attached to the same _metadataKey_ ingest into one grid; each Update runs
// as a single script, so concurrent updates never interleave within an event.
// Redis is used as shared memory: nothing here makes the counters durable.
// _key_ prefixes the Redis keys of the rows
// _metadataKey_ holds dimensions and seed so other processes can rebuild the hash families
type CountSketchRedis[K any] struct {
	AbstractCountSketch[K]
	client      *redis.Client
	key         string
	metadataKey string
	rowKeys     []string
}

// NewCountSketchRedis creates a CountSketchRedis with _width_ counters in each of
// _depth_ rows, using the client made by freqsketch.MakeRedisClient
func NewCountSketchRedis[K any](ctx context.Context, width, depth uint, digest hash.Digest[K], opts ...Option) (*CountSketchRedis[K], error) {
	client := freqsketch.GetRedisClient()
	if client == nil {
		return nil, fmt.Errorf("freqsketch: redis client isn't initialized, call MakeRedisClient first")
	}
	abstractSketch, err := makeAbstractCountSketch(width, depth, digest, makeOptions(opts))
	if err != nil {
		return nil, err
	}
	sketch := newCountSketchRedis(client, abstractSketch, freqsketch.GenerateRandomString(16), freqsketch.GenerateRandomString(16))
	metadata := map[string]interface{}{
		"rows":     strconv.FormatUint(uint64(sketch.depth), 10),
		"columns":  strconv.FormatUint(uint64(sketch.width), 10),
		"seed":     strconv.FormatUint(sketch.seed, 10),
		"signBits": strconv.FormatUint(uint64(sketch.signBits), 10),
		"key":      sketch.key,
	}
	if err := client.HSet(ctx, sketch.metadataKey, metadata).Err(); err != nil {
		return nil, fmt.Errorf("freqsketch: error creating count sketch redis, error: %v", err)
	}
	return sketch, nil
}

// NewCountSketchRedisFromEstimates creates a CountSketchRedis sized for _epsilon_ and _gamma_
// as NewCountSketchFromEstimates does
func NewCountSketchRedisFromEstimates[K any](ctx context.Context, epsilon, gamma float64, digest hash.Digest[K], opts ...Option) (*CountSketchRedis[K], error) {
	width, err := freqsketch.ErrorMarginToWidth(epsilon)
	if err != nil {
		return nil, err
	}
	depth, err := freqsketch.FailureProbToDepth(gamma)
	if err != nil {
		return nil, err
	}
	return NewCountSketchRedis(ctx, width, depth, digest, opts...)
}

// NewCountSketchRedisFromKey attaches to the sketch whose metadata is stored at
// _metadataKey_. The digest must be the one the sketch was created with.
func NewCountSketchRedisFromKey[K any](ctx context.Context, metadataKey string, digest hash.Digest[K]) (*CountSketchRedis[K], error) {
	client := freqsketch.GetRedisClient()
	if client == nil {
		return nil, fmt.Errorf("freqsketch: redis client isn't initialized, call MakeRedisClient first")
	}
	values, err := client.HGetAll(ctx, metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("freqsketch: error creating count sketch from redis key, error: %v", err)
	}
	rows, _ := strconv.ParseUint(values["rows"], 10, 64)
	columns, _ := strconv.ParseUint(values["columns"], 10, 64)
	signBits, _ := strconv.ParseUint(values["signBits"], 10, 64)
	seed, err := strconv.ParseUint(values["seed"], 10, 64)
	if rows == 0 || columns == 0 || err != nil || values["key"] == "" {
		return nil, fmt.Errorf("%w: no count sketch metadata at redis key %s", freqsketch.ErrInvalidParameter, metadataKey)
	}
	o := options{seed: seed, seeded: true, signBits: uint(signBits)}
	abstractSketch, err := makeAbstractCountSketch(uint(columns), uint(rows), digest, o)
	if err != nil {
		return nil, err
	}
	return newCountSketchRedis(client, abstractSketch, values["key"], metadataKey), nil
}

func newCountSketchRedis[K any](client *redis.Client, abstractSketch *AbstractCountSketch[K], key, metadataKey string) *CountSketchRedis[K] {
	rowKeys := make([]string, abstractSketch.depth)
	for r := range rowKeys {
		rowKeys[r] = key + ":" + strconv.Itoa(r)
	}
	return &CountSketchRedis[K]{
		AbstractCountSketch: *abstractSketch,
		client:              client,
		key:                 key,
		metadataKey:         metadataKey,
		rowKeys:             rowKeys,
	}
}

// MetadataKey returns the Redis key other processes attach with
func (cs *CountSketchRedis[K]) MetadataKey() string {
	return cs.metadataKey
}

// Update adds _count_ occurrences of _key_
func (cs *CountSketchRedis[K]) Update(ctx context.Context, key K, count int64) error {
	args, _ := cs.updateArgs(key, count)
	err := updateScript.Run(ctx, cs.client, cs.rowKeys, args...).Err()
	if err != nil {
		return fmt.Errorf("freqsketch: error while updating key %v in redis, error: %v", key, err)
	}
	return nil
}

// Estimate returns the median over rows of the signed counter _key_ maps to
func (cs *CountSketchRedis[K]) Estimate(ctx context.Context, key K) (int64, error) {
	digest := cs.digest(key)
	args := make([]interface{}, cs.depth)
	signs := make([]int64, cs.depth)
	for r := uint(0); r < cs.depth; r++ {
		c, sign := cs.cell(r, digest)
		args[r] = strconv.FormatUint(uint64(c), 10)
		signs[r] = sign
	}
	raw, err := estimateScript.Run(ctx, cs.client, cs.rowKeys, args...).StringSlice()
	if err != nil {
		return 0, fmt.Errorf("freqsketch: error while estimating key %v in redis, error: %v", key, err)
	}
	return signedMedian(raw, signs)
}

// UpdateAndEstimate adds _count_ occurrences of _key_ and returns the estimate after
// the update in one round trip
func (cs *CountSketchRedis[K]) UpdateAndEstimate(ctx context.Context, key K, count int64) (int64, error) {
	args, signs := cs.updateArgs(key, count)
	raw, err := updateAndEstimateScript.Run(ctx, cs.client, cs.rowKeys, args...).StringSlice()
	if err != nil {
		return 0, fmt.Errorf("freqsketch: error while updating key %v in redis, error: %v", key, err)
	}
	return signedMedian(raw, signs)
}

// Delete removes the rows and the metadata of the sketch from Redis
func (cs *CountSketchRedis[K]) Delete(ctx context.Context) error {
	keys := append([]string{cs.metadataKey}, cs.rowKeys...)
	if err := cs.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("freqsketch: error deleting count sketch %s, error: %v", cs.metadataKey, err)
	}
	return nil
}

// updateArgs returns the (column, signed delta) script arguments of every row and the signs
func (cs *CountSketchRedis[K]) updateArgs(key K, count int64) ([]interface{}, []int64) {
	digest := cs.digest(key)
	args := make([]interface{}, 0, 2*cs.depth)
	signs := make([]int64, cs.depth)
	for r := uint(0); r < cs.depth; r++ {
		c, sign := cs.cell(r, digest)
		args = append(args, strconv.FormatUint(uint64(c), 10), strconv.FormatInt(sign*count, 10))
		signs[r] = sign
	}
	return args, signs
}

func signedMedian(raw []string, signs []int64) (int64, error) {
	if len(raw) != len(signs) {
		return 0, fmt.Errorf("freqsketch: expected %d counters from redis, got %d", len(signs), len(raw))
	}
	values := make([]int64, len(raw))
	for r := range raw {
		v, err := strconv.ParseInt(raw[r], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("freqsketch: malformed counter %q in redis, error: %v", raw[r], err)
		}
		values[r] = signs[r] * v
	}
	return median(values), nil
}
