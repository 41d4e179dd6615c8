package count

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/hash"
)

var items = []string{
	"apple",
	"orange",
	"banana",
	"carrot",
	"apple",
	"grape",
	"apple",
	"carrot",
	"apple",
	"banana",
	"plum",
	"plum",
	"peach",
	"apple",
	"carrot",
	"peach",
	"mango",
	"apple",
	"grape",
	"melon",
	"pineapple",
	"kiwi",
	"banana",
	"grape",
	"apple",
	"kiwi",
	"pineapple",
	"mango",
	"plum",
	"peach",
	"banana",
}

const (
	errorRate = 0.05
	gamma     = 0.01
)

func TestTopKBasic(t *testing.T) {
	k := uint(2)
	topkSingleEntry, err := NewTopK(k, errorRate, gamma, hash.String, WithSeed(seed))
	if err != nil {
		t.Fatalf("topk creation should succeed, error: %v", err)
	}

	frequencyMap := make(map[string]int)

	for i := range items {
		topkSingleEntry.Insert(items[i], 1)
		frequencyMap[items[i]]++
	}

	topkBatchEntry, _ := NewTopK(k, errorRate, gamma, hash.String, WithSeed(seed))
	for key, val := range frequencyMap {
		topkBatchEntry.Insert(key, int64(val))
	}

	val1 := topkSingleEntry.Values()
	val2 := topkBatchEntry.Values()

	if !reflect.DeepEqual(val1, val2) {
		t.Error("both topk data structures should be equal")
	}
	want := []Element[string, int64]{{"apple", 7}, {"banana", 4}}
	if !reflect.DeepEqual(val1, want) {
		t.Errorf("top 2 should be %v, found %v", want, val1)
	}
}

func TestTopKAllElements(t *testing.T) {
	topk, _ := NewTopK(11, errorRate, gamma, hash.String, WithSeed(seed))

	frequencyMap := make(map[string]int)
	for i := range items {
		topk.Insert(items[i], 1)
		frequencyMap[items[i]]++
	}

	val := topk.Values()
	if len(val) != len(frequencyMap) {
		t.Fatalf("topk should hold all %d elements, found %d", len(frequencyMap), len(val))
	}
	for i := range val {
		if val[i].Priority != int64(frequencyMap[val[i].Key]) {
			t.Errorf("frequency doesn't match for %s. Instead found %d and %d", val[i].Key, val[i].Priority, frequencyMap[val[i].Key])
		}
		if i > 0 && val[i].Priority > val[i-1].Priority {
			t.Errorf("values should be sorted by decreasing count")
		}
	}
	if topk.Estimate("apple") != 7 {
		t.Errorf("estimate of apple should be 7, found %d", topk.Estimate("apple"))
	}
}

func TestTopKThree(t *testing.T) {
	topk, _ := NewTopK(3, errorRate, gamma, hash.String, WithSeed(seed))
	for i := range items {
		topk.Insert(items[i], 1)
	}
	val := topk.Values()
	if len(val) != 3 || val[0].Key != "apple" || val[1].Key != "banana" || val[2].Priority != 3 {
		t.Errorf("top 3 should be apple, banana and a key seen 3 times, found %v", val)
	}
}

func TestTopKRetraction(t *testing.T) {
	topk, _ := NewTopK(2, errorRate, gamma, hash.String, WithSeed(seed))
	topk.Insert("foo", 10)
	topk.Insert("bar", 5)
	topk.Insert("foo", -8)
	val := topk.Values()
	if val[0].Key != "bar" || val[1].Key != "foo" || val[1].Priority != 2 {
		t.Errorf("retracted foo should rank below bar, found %v", val)
	}
}

func TestNewTopKErrors(t *testing.T) {
	if _, err := NewTopK(0, errorRate, gamma, hash.String); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("k of 0 should fail with ErrInvalidParameter, found %v", err)
	}
	narrow, _ := NewCountSketch(40, 3, hash.String)
	if _, err := NewTopKWithSketch(5, narrow); !errors.Is(err, freqsketch.ErrInvalidParameter) {
		t.Errorf("a sketch not wider than 8*k should fail with ErrInvalidParameter, found %v", err)
	}
}
