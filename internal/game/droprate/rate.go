// Package droprate implements single-item drop statistics on the geometric
// distribution: the chance of a drop within a number of kills, the kills
// needed for a target confidence, and central kill intervals.
package droprate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrInvalidRate is returned when a drop rate is not in (0, 1].
	ErrInvalidRate = errors.New("droprate: rate must be in (0, 1]")
	// ErrInvalidProbability is returned when a confidence or interval width
	// is not strictly between 0 and 1.
	ErrInvalidProbability = errors.New("droprate: probability parameter must be in (0, 1)")
)

// DefaultInterval is the interval width used when a caller has no preference.
const DefaultInterval = 0.95

// Rate is the per-kill probability of a specific drop.
type Rate float64

// Validate reports whether r is a usable drop rate.
//
// Postcondition: Returns nil iff 0 < r <= 1; wraps ErrInvalidRate otherwise.
func (r Rate) Validate() error {
	f := float64(r)
	if math.IsNaN(f) || f <= 0 || f > 1 {
		return fmt.Errorf("%w, got %v", ErrInvalidRate, f)
	}
	return nil
}

// String renders r as a "1/N" fraction when 1/r is a whole number and as a
// decimal otherwise.
func (r Rate) String() string {
	f := float64(r)
	if f > 0 && f <= 1 {
		inv := 1 / f
		if rounded := math.Round(inv); math.Abs(inv-rounded) <= 1e-9*inv {
			return "1/" + strconv.FormatFloat(rounded, 'f', 0, 64)
		}
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Kills is a number of kills (trials).
type Kills int64

// Infinite is the sentinel returned when no finite kill count exists.
const Infinite Kills = math.MaxInt64

// String renders k, using "∞" for Infinite.
func (k Kills) String() string {
	if k == Infinite {
		return "∞"
	}
	return strconv.FormatInt(int64(k), 10)
}

// Bounds is a central interval of kill counts.
type Bounds struct {
	Lower Kills
	Upper Kills
}

// Unbounded is the sentinel Bounds returned for invalid input.
var Unbounded = Bounds{Lower: Infinite, Upper: Infinite}

// IsUnbounded reports whether b is the invalid-input sentinel.
func (b Bounds) IsUnbounded() bool {
	return b == Unbounded
}

// Contains reports whether Lower <= k <= Upper.
func (b Bounds) Contains(k Kills) bool {
	return b.Lower <= k && k <= b.Upper
}

// String renders b as "lower to upper".
func (b Bounds) String() string {
	return b.Lower.String() + " to " + b.Upper.String()
}

// ValidateProbability reports whether p is usable as a confidence or interval
// width.
//
// Postcondition: Returns nil iff 0 < p < 1; wraps ErrInvalidProbability otherwise.
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return fmt.Errorf("%w, got %v", ErrInvalidProbability, p)
	}
	return nil
}
