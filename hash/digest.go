package hash

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
)

// Digest reduces a key to 64 bits. It is the only capability a key type needs for a
// sketch to be built over it: the index and sign families work on digests.
type Digest[K any] func(key K) uint64

// metroSeed seeds metro hash for byte slice keys
const metroSeed = 1373

// Integral is the set of key types hashed by Integer
type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// String digests string keys with xxhash
func String(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Bytes digests byte slice keys with metro hash
func Bytes(key []byte) uint64 {
	return metro.Hash64(key, metroSeed)
}

// Integer digests integer keys with the murmur3 64-bit finalizer. The finalizer is a
// bijection, so distinct integers never share a digest.
func Integer[T Integral](key T) uint64 {
	return fmix64(uint64(key))
}

// Mix scrambles an existing digest. Used where a second hash of the same key must not
// correlate with the row families, e.g. shard routing.
func Mix(digest uint64) uint64 {
	return fmix64(digest ^ 0x9e3779b97f4a7c15)
}

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
