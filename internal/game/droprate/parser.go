package droprate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyRate is returned by ParseRate for blank input.
var ErrEmptyRate = errors.New("droprate: empty rate")

// ParseRate parses a drop rate written as a fraction ("1/358"), a decimal
// ("0.0078") or a percentage ("2.5%").
//
// Precondition: s must be a non-empty string.
// Postcondition: Returns a Rate that passes Validate, or a descriptive error.
// Out-of-range values wrap ErrInvalidRate.
func ParseRate(s string) (Rate, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyRate
	}

	var value float64
	switch {
	case strings.HasSuffix(s, "%"):
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, fmt.Errorf("droprate: invalid percentage in %q: %w", raw, err)
		}
		value = pct / 100

	case strings.Contains(s, "/"):
		slash := strings.Index(s, "/")
		num, err := strconv.ParseFloat(strings.TrimSpace(s[:slash]), 64)
		if err != nil {
			return 0, fmt.Errorf("droprate: invalid numerator in %q: %w", raw, err)
		}
		den, err := strconv.ParseFloat(strings.TrimSpace(s[slash+1:]), 64)
		if err != nil {
			return 0, fmt.Errorf("droprate: invalid denominator in %q: %w", raw, err)
		}
		if den == 0 {
			return 0, fmt.Errorf("droprate: zero denominator in %q", raw)
		}
		value = num / den

	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("droprate: invalid rate %q: %w", raw, err)
		}
		value = f
	}

	rate := Rate(value)
	if err := rate.Validate(); err != nil {
		return 0, fmt.Errorf("parsing %q: %w", raw, err)
	}
	return rate, nil
}
