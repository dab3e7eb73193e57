// Package rng provides the PRNG collaborator assumed by the simulation
// core: uniform(0,1), standard-normal, and Poisson draws from a single
// reseedable stream per realization.
package rng

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is a per-realization random source. It is not safe for concurrent
// use; the single-threaded invariant of §5 makes that unnecessary.
type Stream struct {
	src    rand.Source
	rnd    *rand.Rand
	normal distuv.Normal
}

// New creates a stream seeded with seed. Realization i should use a
// distinct seed from realization i-1 so that repeats are independent.
func New(seed int64) *Stream {
	src := rand.NewSource(uint64(seed))
	r := rand.New(src)
	return &Stream{
		src: src,
		rnd: r,
		normal: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   src,
		},
	}
}

// Uniform01 draws u ~ Uniform[0,1).
func (s *Stream) Uniform01() float64 {
	return s.rnd.Float64()
}

// Normal draws x ~ N(mu, sigma^2).
func (s *Stream) Normal(mu, sigma float64) float64 {
	s.normal.Mu = mu
	s.normal.Sigma = sigma
	return s.normal.Rand()
}

// Poisson draws a non-negative integer from Poisson(lambda).
// lambda <= 0 always returns 0.
func (s *Stream) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: lambda, Src: s.src}
	return int(p.Rand())
}

// IntN draws a uniform integer in [0, n).
func (s *Stream) IntN(n int) int {
	return s.rnd.Intn(n)
}

// Shuffle permutes a slice of length n in place using swap(i, j).
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.rnd.Shuffle(n, swap)
}
