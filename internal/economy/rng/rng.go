// Package rng provides the injectable randomness used by investment returns,
// crime rolls, cycle jitter and shock injection. Components never reach for
// ambient global randomness so that outcomes are reproducible in tests.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the subset of randomness the engine consumes.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard-normal draw.
	NormFloat64() float64
	// IntN returns a uniform draw in [0, n).
	IntN(n int) int
}

type locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a seeded Source safe for concurrent use by batch jobs.
func New(seed int64) Source {
	return &locked{r: rand.New(rand.NewSource(seed))}
}

// Default returns a time-seeded Source.
func Default() Source {
	return New(time.Now().UnixNano())
}

func (l *locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *locked) NormFloat64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.NormFloat64()
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
