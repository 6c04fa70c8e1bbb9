package droprate

import "math"

// maxCorrection bounds the steps taken around the closed-form quantile.
const maxCorrection = 64

// cdf returns 1 - (1-rate)^k, the probability of at least one drop in k kills.
func cdf(rate Rate, k Kills) float64 {
	return -math.Expm1(float64(k) * math.Log1p(-float64(rate)))
}

// DropChance returns the probability of at least one drop in kills
// independent kills at the given rate.
//
// Postcondition: Returns 0 with no error when kills <= 0. Returns 0 and an
// error wrapping ErrInvalidRate when rate is not in (0, 1]. Otherwise the
// result is in [0, 1] and non-decreasing in kills.
func DropChance(rate Rate, kills Kills) (float64, error) {
	if err := rate.Validate(); err != nil {
		return 0, err
	}
	if kills <= 0 {
		return 0, nil
	}
	return cdf(rate, kills), nil
}

// Quantile is the inverse CDF of the geometric distribution: the smallest
// k >= 1 such that 1 - (1-rate)^k >= p.
//
// Postcondition: Returns Infinite and a wrapped ErrInvalidRate or
// ErrInvalidProbability on invalid input; returns 1 when rate == 1.
func Quantile(rate Rate, p float64) (Kills, error) {
	if err := rate.Validate(); err != nil {
		return Infinite, err
	}
	if err := ValidateProbability(p); err != nil {
		return Infinite, err
	}
	if rate == 1 {
		return 1, nil
	}

	lr := math.Log1p(-float64(rate))
	lp := math.Log1p(-p)
	est := math.Ceil(lp / lr)
	if est >= float64(Infinite) {
		return Infinite, nil
	}
	k := max(Kills(est), 1)
	// Compared in log space: the CDF itself goes flat near 1 long before
	// k*log1p(-rate) stops moving. The closed form can land a step or two off
	// when the log ratio sits on an integer.
	reaches := func(k Kills) bool { return float64(k)*lr <= lp }
	for i := 0; i < maxCorrection && k > 1 && reaches(k-1); i++ {
		k--
	}
	for i := 0; i < maxCorrection && k < Infinite && !reaches(k); i++ {
		k++
	}
	return k, nil
}

// KillsForConfidence returns the smallest number of kills whose drop chance
// is at least confidence.
//
// Postcondition: DropChance(rate, result) >= confidence and, when result >= 2,
// DropChance(rate, result-1) < confidence. Invalid input yields Infinite and
// an error; rate == 1 yields 1.
func KillsForConfidence(rate Rate, confidence float64) (Kills, error) {
	return Quantile(rate, confidence)
}

// Interval returns the central interval of kills in which the given fraction
// of players receive their first drop: the alpha/2 and 1-alpha/2 quantiles,
// where alpha = 1 - interval.
//
// Postcondition: Returns Unbounded and an error on invalid input; returns
// {1, 1} when rate == 1.
func Interval(rate Rate, interval float64) (Bounds, error) {
	if err := rate.Validate(); err != nil {
		return Unbounded, err
	}
	if err := ValidateProbability(interval); err != nil {
		return Unbounded, err
	}
	if rate == 1 {
		return Bounds{Lower: 1, Upper: 1}, nil
	}

	alpha := 1 - interval
	lower, err := Quantile(rate, alpha/2)
	if err != nil {
		return Unbounded, err
	}
	upper, err := Quantile(rate, 1-alpha/2)
	if err != nil {
		return Unbounded, err
	}
	return Bounds{Lower: lower, Upper: upper}, nil
}

// Expected returns the mean number of kills until the first drop, 1/rate.
func Expected(rate Rate) (float64, error) {
	if err := rate.Validate(); err != nil {
		return math.Inf(1), err
	}
	return 1 / float64(rate), nil
}
