// Package randutil provides the single seeded PRNG source the GGA's
// selection/crossover/mutation draw from, so a run with a fixed seed is
// byte-for-byte reproducible (spec.md §9). The CSP search draws no
// random numbers; its tie breaks are by id.
package randutil

import "math/rand"

// New returns a PRNG seeded with the given value. Every seed, 0
// included, yields a fixed sequence: this package never reads the
// clock, and no caller in this module replaces a 0 seed with one.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
