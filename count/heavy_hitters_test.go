package count

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

func TestHeavyHitters(t *testing.T) {
	cs, _ := NewCountSketch(1<<16, 5, hash.String, WithSeed(seed))
	var keys []string
	for i := 0; i < 20; i++ {
		key := "key-" + strconv.Itoa(i)
		keys = append(keys, key)
		cs.Update(key, int64(1000*(i+1)))
	}
	hitters, err := HeavyHitters[string](cs, slices.Values(keys), 5)
	if err != nil {
		t.Fatalf("heavy hitters should succeed, error: %v", err)
	}
	if len(hitters) != 5 {
		t.Fatalf("there should be 5 heavy hitters, found %d", len(hitters))
	}
	for i, h := range hitters {
		want := 19 - i
		if h.Key != "key-"+strconv.Itoa(want) || h.Priority != int64(1000*(want+1)) {
			t.Errorf("heavy hitter %d should be (key-%d, %d), found (%s, %d)", i, want, 1000*(want+1), h.Key, h.Priority)
		}
	}
}

func TestHeavyHittersErrors(t *testing.T) {
	narrow, _ := NewCountSketch(80, 5, hash.String)
	if _, err := HeavyHitters[string](narrow, slices.Values([]string{"foo"}), 10); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("a sketch not wider than 8*k should fail with ErrInvalidParameter, found %v", err)
	}
	if _, err := HeavyHitters[string](narrow, slices.Values([]string{"foo"}), 0); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("k of 0 should fail with ErrInvalidParameter, found %v", err)
	}
	wide, _ := NewCountSketch(1000, 5, hash.String)
	if _, err := HeavyHitters[string](wide, slices.Values([]string{"foo", "bar", "foo"}), 10); !errors.Is(err, freqsketch.ErrDuplicateKey) {
		t.Errorf("duplicate candidates should fail with ErrDuplicateKey, found %v", err)
	}
}

func TestHeavyHittersSharded(t *testing.T) {
	sharded, _ := NewShardedCountSketch(4, 4096, 5, hash.String, WithSeed(seed))
	sharded.Update("foo", 50)
	sharded.Update("bar", 30)
	sharded.Update("baz", 10)
	hitters, err := HeavyHitters[string](sharded, slices.Values([]string{"foo", "bar", "baz"}), 2)
	if err != nil {
		t.Fatalf("heavy hitters should succeed, error: %v", err)
	}
	if len(hitters) != 2 || hitters[0].Key != "foo" || hitters[1].Key != "bar" {
		t.Errorf("heavy hitters should be foo and bar, found %v", hitters)
	}
}
