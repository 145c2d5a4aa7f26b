// Package generator provides the random source used for slot shuffles and spawn jitter.
package generator

import (
	"math/rand"
	"time"
)

// Generator wraps a seeded pseudo-random source. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed so runs can be replayed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Permutation returns a uniformly random ordering of [0, n).
func (g *Generator) Permutation(n int) []int {
	if n <= 0 {
		return nil
	}
	return g.rnd.Perm(n)
}

// Pick returns a uniformly random index in [0, n).
func (g *Generator) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return g.rnd.Intn(n)
}

// Jitter scales base by a random factor in [1-spread, 1+spread].
func (g *Generator) Jitter(base, spread float64) float64 {
	if spread <= 0 {
		return base
	}
	if spread > 1 {
		spread = 1
	}
	factor := 1 + (g.rnd.Float64()*2-1)*spread
	return base * factor
}
