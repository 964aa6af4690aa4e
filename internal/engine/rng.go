package engine

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the injected randomness for probabilistic outcomes. The
// transition function never reads ambient randomness, so a seeded source
// makes every playthrough replayable.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// cryptoRNG is the default production source.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// Top 53 bits give a uniform float in [0,1).
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultRNG returns a non-deterministic source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a reproducible source for tests and replays.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// bernoulli draws a success under probability p. p <= 0 never hits and
// p >= 1 always hits without consuming a draw, keeping edge cases exact.
func bernoulli(p float64, rng RandomSource) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}
