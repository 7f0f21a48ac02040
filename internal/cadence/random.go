// Package cadence computes human-like typing delays, duration budgets and simulated mistakes.
package cadence

import (
	"math/rand"
	"time"
)

// Rand is the random source threaded through the pacer and the mistake simulator.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a source seeded with seed, or with the current time when seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// between draws uniformly from [lo, hi).
func between(rnd Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}

// intBetween draws uniformly from [lo, hi], both inclusive.
func intBetween(rnd Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.Intn(hi-lo+1)
}
