package vmath

import (
	"sync/atomic"

	"github.com/lixenwraith/powermode/core"
)

// Rand is the randomness capability injected into effect code
type Rand interface {
	Intn(n int) int
}

// FastRand is a xorshift64 generator; not safe for concurrent use
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Sign returns +1 or -1 with equal probability
func Sign(rng Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// RandomPoint returns a point uniformly distributed inside r
func RandomPoint(r core.Rect, rng Rand) core.Point {
	return core.Point{
		X: r.Left + rng.Intn(r.Width()),
		Y: r.Top + rng.Intn(r.Height()),
	}
}

// SeedSource hands out independent seeds so each concurrent context owns its generator
type SeedSource struct {
	base    uint64
	counter atomic.Uint64
}

func NewSeedSource(base uint64) *SeedSource {
	return &SeedSource{base: base}
}

// Next returns a splitmix64-scrambled seed, distinct per call
func (s *SeedSource) Next() uint64 {
	z := s.base + s.counter.Add(1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// NewRand returns a fresh generator seeded from the source
func (s *SeedSource) NewRand() *FastRand {
	return NewFastRand(s.Next())
}
