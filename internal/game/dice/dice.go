// Package dice provides the randomness abstraction shared by every battle draw:
// accuracy rolls, critical hits, speed-tie coin flips, damage variance and
// move-selection exploration all go through a Source.
package dice

import "math"

// Resolution is the number of discrete steps used when mapping a Source draw
// onto a probability or a continuous range.
const Resolution = 10000

// Source is the randomness provider for battle draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Percent rolls a percentile die.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, 100].
func Percent(src Source) int {
	return src.Intn(100) + 1
}

// Chance reports whether an event with probability p occurs.
// p is quantised to 1/Resolution; p <= 0 never occurs and p >= 1 always does,
// and neither consumes a draw.
//
// Precondition: src must be non-nil.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	threshold := int(math.Round(p * Resolution))
	return src.Intn(Resolution) < threshold
}

// CoinFlip returns true on heads.
//
// Precondition: src must be non-nil.
func CoinFlip(src Source) bool {
	return src.Intn(2) == 0
}

// Uniform draws a value from the closed interval [lo, hi].
//
// Precondition: src must be non-nil; lo <= hi.
// Postcondition: lo <= result <= hi.
func Uniform(src Source, lo, hi float64) float64 {
	step := src.Intn(Resolution + 1)
	return lo + (hi-lo)*float64(step)/Resolution
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0; src must be non-nil.
// Postcondition: 0 <= result < n.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
