package simulator

import (
	"math"
	"slices"
	"sort"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
)

// ItemInterval is the single-item kill interval of one drop.
type ItemInterval struct {
	Name   string
	Rate   droprate.Rate
	Bounds droprate.Bounds
}

// Stats summarizes the simulated kill counts.
type Stats struct {
	Trials int
	Mean   float64
	StdDev float64
	Min    droprate.Kills
	Median droprate.Kills
	Max    droprate.Kills
}

func (s *Simulator) sortedSample() []droprate.Kills {
	s.sortOnce.Do(func() {
		s.sorted = slices.Clone(s.sample)
		slices.Sort(s.sorted)
	})
	return s.sorted
}

// quantile returns the smallest sampled kill count x such that at least a
// fraction p of the trials finished within x kills.
//
// Precondition: 0 < p < 1.
func (s *Simulator) quantile(p float64) droprate.Kills {
	sorted := s.sortedSample()
	n := len(sorted)
	idx := int(math.Ceil(p*float64(n))) - 1
	idx = max(0, min(idx, n-1))
	return sorted[idx]
}

// CombinedExpectedKills returns the mean kills to collect every drop,
// rounded up.
func (s *Simulator) CombinedExpectedKills() droprate.Kills {
	return ceilKills(s.mean)
}

// CombinedKillsForConfidence returns the kills within which a fraction
// confidence of the simulated runs collected every drop.
//
// Postcondition: Returns Infinite and an error wrapping
// droprate.ErrInvalidProbability when confidence is not in (0, 1).
func (s *Simulator) CombinedKillsForConfidence(confidence float64) (droprate.Kills, error) {
	if err := droprate.ValidateProbability(confidence); err != nil {
		return droprate.Infinite, err
	}
	return s.quantile(confidence), nil
}

// IndividualDropRateIntervals returns, in drop order, the single-item kill
// interval of each drop. These are marginal intervals computed in closed form
// and do not depend on the simulated sample.
//
// Postcondition: On an invalid confidence every item carries
// droprate.Unbounded and the error wraps droprate.ErrInvalidProbability.
func (s *Simulator) IndividualDropRateIntervals(confidence float64) ([]ItemInterval, error) {
	out := make([]ItemInterval, len(s.drops))
	verr := droprate.ValidateProbability(confidence)
	for i, d := range s.drops {
		out[i] = ItemInterval{Name: d.Name, Rate: d.Rate, Bounds: droprate.Unbounded}
		if verr != nil {
			continue
		}
		b, err := droprate.Interval(d.Rate, confidence)
		if err != nil {
			return out, err
		}
		out[i].Bounds = b
	}
	return out, verr
}

// CombinedDropInterval returns the central interval of kills within which a
// fraction confidence of the simulated runs collected every drop.
//
// Postcondition: Returns droprate.Unbounded and an error wrapping
// droprate.ErrInvalidProbability when confidence is not in (0, 1).
func (s *Simulator) CombinedDropInterval(confidence float64) (droprate.Bounds, error) {
	if err := droprate.ValidateProbability(confidence); err != nil {
		return droprate.Unbounded, err
	}
	alpha := 1 - confidence
	return droprate.Bounds{
		Lower: s.quantile(alpha / 2),
		Upper: s.quantile(1 - alpha/2),
	}, nil
}

// CombinedDropChance returns the fraction of simulated runs that collected
// every drop within kills kills.
func (s *Simulator) CombinedDropChance(kills droprate.Kills) float64 {
	sorted := s.sortedSample()
	within := sort.Search(len(sorted), func(i int) bool { return sorted[i] > kills })
	return float64(within) / float64(len(sorted))
}

// Summary returns descriptive statistics of the sample.
func (s *Simulator) Summary() Stats {
	sorted := s.sortedSample()
	var acc float64
	for _, k := range sorted {
		d := float64(k) - s.mean
		acc += d * d
	}
	return Stats{
		Trials: s.trials,
		Mean:   s.mean,
		StdDev: math.Sqrt(acc / float64(len(sorted))),
		Min:    sorted[0],
		Median: s.quantile(0.5),
		Max:    sorted[len(sorted)-1],
	}
}
