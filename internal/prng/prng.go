// Package prng is the deterministic pseudo-random stream behind every
// generated analysis. A Source is keyed by a string seed and replays the same
// sequence for the same seed; it holds no global state and is not safe for
// concurrent use.
package prng

import "unicode/utf16"

const (
	multiplier = 1103515245
	increment  = 12345
	modulus    = 1 << 31
)

type Source struct {
	hash int32
}

// New seeds a Source with the 31-polynomial rolling hash of seed, computed
// over UTF-16 code units with 32-bit wraparound.
func New(seed string) *Source {
	return &Source{hash: SeedHash(seed)}
}

func SeedHash(seed string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(c)
	}
	return h
}

// Next advances the linear congruential generator and returns a value in
// [0, 1).
func (s *Source) Next() float64 {
	next := (uint64(int64(s.hash))*multiplier + increment) & (modulus - 1)
	s.hash = int32(next)
	return float64(next) / modulus
}

// Intn returns floor(Next() * n), i.e. a uniform index in [0, n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
