// Package report renders drop statistics as human-readable text.
package report

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
	"github.com/cory-johannsen/dropcalc/internal/game/simulator"
)

// Reporter writes formatted results to an io.Writer. Numbers are localized
// with a message.Printer, so large kill counts get digit grouping.
type Reporter struct {
	w io.Writer
	p *message.Printer
}

// New creates a Reporter that writes to w using the conventions of tag.
//
// Precondition: w must be non-nil.
func New(w io.Writer, tag language.Tag) *Reporter {
	return &Reporter{w: w, p: message.NewPrinter(tag)}
}

func (r *Reporter) kills(k droprate.Kills) string {
	if k == droprate.Infinite {
		return "∞"
	}
	return r.p.Sprintf("%d", int64(k))
}

func (r *Reporter) printf(format string, args ...any) error {
	_, err := r.p.Fprintf(r.w, format, args...)
	return err
}

// Chance reports the chance of at least one drop within kills.
func (r *Reporter) Chance(kills droprate.Kills, chance float64) error {
	return r.printf("Chance of drop after %s rolls: %.4f%%\n", r.kills(kills), chance*100)
}

// KillsForConfidence reports the kills needed for one drop at confidence.
func (r *Reporter) KillsForConfidence(confidence float64, kills droprate.Kills) error {
	return r.printf("Rolls needed for %.2f%% chance of drop: %s\n", confidence*100, r.kills(kills))
}

// Interval reports the single-item interval of first drops.
func (r *Reporter) Interval(interval float64, b droprate.Bounds) error {
	return r.printf("%.2f%% of players will get their first drop between %s and %s rolls.\n",
		interval*100, r.kills(b.Lower), r.kills(b.Upper))
}

// Expected reports the average kills until the first drop of one item.
func (r *Reporter) Expected(mean float64) error {
	return r.printf("Average rolls for first drop: %.2f\n", mean)
}

// CombinedChance reports the chance of collecting every drop within kills.
func (r *Reporter) CombinedChance(kills droprate.Kills, chance float64) error {
	return r.printf("Chance of all drops after %s rolls: %.4f%%\n", r.kills(kills), chance*100)
}

// CombinedExpected reports the average kills to collect every drop.
func (r *Reporter) CombinedExpected(kills droprate.Kills) error {
	return r.printf("Average rolls for all drops: %s\n", r.kills(kills))
}

// CombinedKillsForConfidence reports the kills needed to collect every drop
// at confidence.
func (r *Reporter) CombinedKillsForConfidence(confidence float64, kills droprate.Kills) error {
	return r.printf("Rolls needed for %.2f%% chance of all drops: %s\n", confidence*100, r.kills(kills))
}

// IndividualIntervals reports the single-item interval of every drop.
func (r *Reporter) IndividualIntervals(confidence float64, items []simulator.ItemInterval) error {
	if err := r.printf("Individual item rolls needed for a %.2f%% chance of drop:\n", confidence*100); err != nil {
		return err
	}
	for _, item := range items {
		if err := r.printf("\t%s (%s): %s to %s rolls\n",
			item.Name, item.Rate, r.kills(item.Bounds.Lower), r.kills(item.Bounds.Upper)); err != nil {
			return err
		}
	}
	return nil
}

// CombinedInterval reports the interval of kills to collect every drop.
func (r *Reporter) CombinedInterval(confidence float64, b droprate.Bounds) error {
	return r.printf("%.2f%% of players will get all drops between %s and %s rolls.\n",
		confidence*100, r.kills(b.Lower), r.kills(b.Upper))
}

// Summary reports descriptive statistics of a simulation.
func (r *Reporter) Summary(s simulator.Stats) error {
	return r.printf("Simulated %d trials: mean %.2f, std dev %.2f, median %s, range %s to %s rolls\n",
		s.Trials, s.Mean, s.StdDev, r.kills(s.Median), r.kills(s.Min), r.kills(s.Max))
}
