package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Float64 returns a uniformly distributed float in [0, 1)
	Float64() float64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Float64 returns a cryptographically random float in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read never fails on supported platforms
		return 0
	}
	// 53 random mantissa bits
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Uniform draws from [lo, hi)
func Uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
