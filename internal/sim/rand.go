// Package sim provides a seeded, reproducible random generator and an
// invariant checker for property-based testing of pkg/reactor: every
// run is reproducible from its seed, so a failing property can always
// be replayed.
package sim

import (
	"math/rand"
	"sync"
)

// DeterministicRand is a seedable random source safe for concurrent use,
// so a failing property can always be reproduced by re-running with the
// same Seed().
type DeterministicRand struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewDeterministicRand creates a random source seeded with seed.
func NewDeterministicRand(seed int64) *DeterministicRand {
	return &DeterministicRand{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed this generator was constructed with.
func (r *DeterministicRand) Seed() int64 {
	return r.seed
}

// Intn returns a random integer in [0, n).
func (r *DeterministicRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a random float in [0.0, 1.0).
func (r *DeterministicRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bool returns a random boolean.
func (r *DeterministicRand) Bool() bool {
	return r.Float64() < 0.5
}

// Chance returns true with the given probability (0.0 to 1.0).
func (r *DeterministicRand) Chance(probability float64) bool {
	if probability <= 0.0 {
		return false
	}
	if probability >= 1.0 {
		return true
	}
	return r.Float64() < probability
}

// Shuffle randomizes the order of n elements via swap, the hook the fuzz
// tests use to randomize the order in which rules are registered.
func (r *DeterministicRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// String generates a random identifier-safe string of the given length.
func (r *DeterministicRand) String(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[r.Intn(len(charset))]
	}
	return string(b)
}
