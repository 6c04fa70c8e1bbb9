// Package dice provides the randomness abstraction used to roll item drops.
package dice

// Source is the randomness provider for drop rolls.
//
// Implementations returned by NewCryptoSource are safe for concurrent use.
// Streams returned by NewStream are not; each goroutine must own its stream.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}
