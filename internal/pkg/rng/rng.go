// Package rng provides an injectable source of uniform randomness.
//
// The battle engine draws at most one uniform value per resolved action, so
// a fixed Source sequence makes every resolution deterministic and
// replayable under test.
package rng

import "math/rand/v2"

//go:generate mockgen -destination=mock/mock.go -package=rngmock github.com/pokearena/battle-api/internal/pkg/rng Source

// Source yields uniform random values in [0, 1)
type Source interface {
	Float64() float64
}

// Real implements Source using math/rand
type Real struct{}

// Float64 returns a uniform value in [0, 1)
func (r *Real) Float64() float64 {
	return rand.Float64()
}

// New returns a new real source
func New() Source {
	return &Real{}
}

// Seeded returns a deterministic source for a fixed seed. The returned
// source is not safe for concurrent use; keep it on a single goroutine.
func Seeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, 0))
}

// Fixed implements Source replaying a fixed sequence, for tests. The
// sequence wraps around when exhausted.
type Fixed struct {
	Values []float64
	next   int
}

// Float64 returns the next value in the sequence
func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}
