package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
)

// Metric names exported by SimulationMetrics.
const (
	MetricNameSimulationsTotal   = "dropcalc_simulations_total"
	MetricNameTrialsTotal        = "dropcalc_simulation_trials_total"
	MetricNameSimulationDuration = "dropcalc_simulation_duration_seconds"
	MetricNameSimulationKills    = "dropcalc_simulation_kills"
)

// KillBuckets covers kill counts from a guaranteed drop up to ~65k kills.
var KillBuckets = prometheus.ExponentialBuckets(1, 2, 17)

// SimulationMetrics records Monte Carlo runs. It satisfies simulator.Recorder.
type SimulationMetrics struct {
	runs     prometheus.Counter
	trials   prometheus.Counter
	duration prometheus.Histogram
	kills    prometheus.Histogram
}

// NewSimulationMetrics creates the simulation metrics and registers them with reg.
//
// Precondition: reg must be non-nil.
// Postcondition: Returns registered metrics or the registration error.
func NewSimulationMetrics(reg prometheus.Registerer) (*SimulationMetrics, error) {
	m := &SimulationMetrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricNameSimulationsTotal,
			Help: "Number of completed Monte Carlo simulations.",
		}),
		trials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricNameTrialsTotal,
			Help: "Number of simulated trials across all simulations.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricNameSimulationDuration,
			Help:    "Wall-clock duration of one simulation.",
			Buckets: prometheus.DefBuckets,
		}),
		kills: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricNameSimulationKills,
			Help:    "Kills needed to collect every drop, one observation per trial.",
			Buckets: KillBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.trials, m.duration, m.kills} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering simulation metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveRun records one completed simulation.
func (m *SimulationMetrics) ObserveRun(trials int, elapsed time.Duration, sample []droprate.Kills) {
	m.runs.Inc()
	m.trials.Add(float64(trials))
	m.duration.Observe(elapsed.Seconds())
	for _, k := range sample {
		m.kills.Observe(float64(k))
	}
}
