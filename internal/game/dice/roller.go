package dice

// Chance rolls a single Bernoulli trial with success probability p.
//
// Precondition: src must be non-nil.
// Postcondition: p <= 0 never succeeds and p >= 1 always succeeds without
// consuming randomness; otherwise succeeds iff src.Float64() < p.
func Chance(p float64, src Source) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
