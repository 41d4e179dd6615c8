package hash

import (
	"testing"
)

func TestDigestDeterministic(t *testing.T) {
	if String("apple") != String("apple") {
		t.Errorf("string digest should be deterministic")
	}
	if String("apple") == String("banana") {
		t.Errorf("distinct strings should have distinct digests")
	}
	if Bytes([]byte("apple")) != Bytes([]byte("apple")) {
		t.Errorf("bytes digest should be deterministic")
	}
	if Integer(42) != Integer(int64(42)) {
		t.Errorf("integer digest should not depend on the integer type")
	}
}

func TestIntegerDistinct(t *testing.T) {
	seen := make(map[uint64]int, 1<<16)
	for i := 0; i < 1<<16; i++ {
		d := Integer(i)
		if j, ok := seen[d]; ok {
			t.Fatalf("integers %d and %d should not share a digest", i, j)
		}
		seen[d] = i
	}
	if Integer(0) != 0 {
		t.Errorf("finalizer should map 0 to 0, found %d", Integer(0))
	}
}

func TestMix(t *testing.T) {
	if Mix(String("apple")) == String("apple") {
		t.Errorf("mixed digest should differ from the digest")
	}
	if Mix(1) == Mix(2) {
		t.Errorf("mix should be injective on small inputs")
	}
}
