package sim

import (
	"math"
	"testing"
)

// TestRandomStream_SameSeedSameDraws verifies two streams with the same seed
// produce identical draw sequences.
func TestRandomStream_SameSeedSameDraws(t *testing.T) {
	a := NewRandomStream(42)
	b := NewRandomStream(42)

	for i := 0; i < 1000; i++ {
		if got, want := a.Uniform(), b.Uniform(); got != want {
			t.Fatalf("draw %d: %v != %v", i, got, want)
		}
		if got, want := a.Exponential(0.5), b.Exponential(0.5); got != want {
			t.Fatalf("exp draw %d: %v != %v", i, got, want)
		}
	}
	if a.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", a.Seed())
	}
}

// TestRandomStream_DifferentSeedsDiverge verifies distinct seeds produce
// distinct sequences.
func TestRandomStream_DifferentSeedsDiverge(t *testing.T) {
	a := NewRandomStream(1)
	b := NewRandomStream(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Uniform() != b.Uniform() {
			same = false
			break
		}
	}
	if same {
		t.Error("streams with different seeds produced identical draws")
	}
}

// TestRandomStream_JitterBounds verifies Jitter stays within
// [1-magnitude, 1+magnitude].
func TestRandomStream_JitterBounds(t *testing.T) {
	s := NewRandomStream(7)
	for i := 0; i < 10000; i++ {
		j := s.Jitter(0.1)
		if j < 0.9 || j > 1.1 {
			t.Fatalf("jitter %v out of [0.9, 1.1]", j)
		}
	}
}

// TestRandomStream_ExponentialMean sanity-checks the sample mean of the
// exponential draw against 1/rate.
func TestRandomStream_ExponentialMean(t *testing.T) {
	s := NewRandomStream(99)
	const rate = 0.25
	const n = 200000

	var sum float64
	for i := 0; i < n; i++ {
		v := s.Exponential(rate)
		if v < 0 {
			t.Fatalf("negative exponential draw %v", v)
		}
		sum += v
	}
	mean := sum / n
	if math.Abs(mean-1.0/rate) > 0.1 {
		t.Errorf("sample mean %v, want ~%v", mean, 1.0/rate)
	}
}
