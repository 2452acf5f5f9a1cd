package service

import "math/rand"

// Random is the source for response selection and probabilistic gates.
// *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) Intn(n int) int   { return rand.Intn(n) }

// DefaultRandom uses the goroutine-safe top-level math/rand source.
func DefaultRandom() Random {
	return globalRandom{}
}

func pick(rnd Random, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[rnd.Intn(len(items))]
}
