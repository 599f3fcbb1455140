package sim

import "math/rand"

// RandomStream wraps one seeded generator per run. All stochastic draws
// (inter-arrival gaps, jitter) come from this single stream in a fixed order
// relative to event processing, so two runs with the same seed and the same
// configuration reproduce identical event sequences bit-for-bit.
//
// NOT thread-safe. Each Simulator owns its own stream.
type RandomStream struct {
	seed int64
	rng  *rand.Rand
}

// NewRandomStream creates a RandomStream from a seed value.
func NewRandomStream(seed int64) *RandomStream {
	return &RandomStream{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed this stream was created with.
func (s *RandomStream) Seed() int64 {
	return s.seed
}

// Uniform returns a draw from [0, 1).
func (s *RandomStream) Uniform() float64 {
	return s.rng.Float64()
}

// Exponential returns an exponentially-distributed draw with the given rate
// (mean 1/rate). The rate must be positive; callers guard against zero rates
// before drawing.
func (s *RandomStream) Exponential(rate float64) float64 {
	return s.rng.ExpFloat64() / rate
}

// Jitter returns a multiplicative factor uniformly drawn from
// [1-magnitude, 1+magnitude].
func (s *RandomStream) Jitter(magnitude float64) float64 {
	return 1.0 + magnitude*(2.0*s.rng.Float64()-1.0)
}
