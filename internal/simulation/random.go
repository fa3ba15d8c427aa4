package simulation

import (
	"math/rand/v2"
	"strings"
)

const (
	plateLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	plateDigits  = "0123456789"
)

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Chance reports true with probability p.
func Chance(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

func RandomChoice[T any](rng *rand.Rand, choices []T) T {
	return choices[rng.IntN(len(choices))]
}

// RandomPlate returns a plate like "KXR-042". I and O are left out of the
// letters so they are not mistaken for digits.
func RandomPlate(rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(7)
	for i := 0; i < 3; i++ {
		b.WriteByte(plateLetters[rng.IntN(len(plateLetters))])
	}
	b.WriteByte('-')
	for i := 0; i < 3; i++ {
		b.WriteByte(plateDigits[rng.IntN(len(plateDigits))])
	}
	return b.String()
}
