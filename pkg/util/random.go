package util

import (
	"math/rand"
	"sync"
)

// LockedRand is a math/rand generator safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand seeds a generator. Seed 0 picks a random seed.
func NewLockedRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &LockedRand{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a value in [0, n).
func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

// Float64 returns a value in [0, 1).
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
