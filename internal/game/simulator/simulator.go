// Package simulator estimates, by Monte Carlo simulation, how many kills it
// takes to collect every item of a set of independently rolled drops.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dropcalc/internal/game/dice"
	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
)

// DefaultTrials is the number of simulated runs when WithTrials is not given.
const DefaultTrials = 100000

var (
	// ErrInvalidTrialCount is returned when the trial count is not positive.
	ErrInvalidTrialCount = errors.New("simulator: trial count must be >= 1")
	// ErrNoDrops is returned when no drops are supplied.
	ErrNoDrops = errors.New("simulator: at least one drop is required")
	// ErrInvalidDrop is returned when a drop has an empty or duplicate name.
	ErrInvalidDrop = errors.New("simulator: invalid drop")
)

// Drop is one item to collect and its per-kill drop rate.
type Drop struct {
	Name string
	Rate droprate.Rate
}

// StreamFactory returns the random stream used for one chunk of trials.
// It must return the same sequence for the same stream number on every call
// for results to be reproducible.
type StreamFactory func(stream uint64) dice.Source

// Recorder receives run-level measurements once a simulation completes.
type Recorder interface {
	ObserveRun(trials int, elapsed time.Duration, sample []droprate.Kills)
}

type settings struct {
	trials   int
	workers  int
	seed     uint64
	seeded   bool
	streams  StreamFactory
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Simulator.
type Option func(*settings)

// WithTrials sets the number of simulated runs.
func WithTrials(n int) Option {
	return func(s *settings) { s.trials = n }
}

// WithWorkers sets the number of goroutines running trials. Values < 1 mean
// GOMAXPROCS. The worker count never changes the results.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithSeed fixes the run seed so the sample is reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
		s.seeded = true
	}
}

// WithSource replaces the default seeded PCG streams.
func WithSource(f StreamFactory) Option {
	return func(s *settings) { s.streams = f }
}

// WithLogger sets the logger for run metadata. Result values are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRecorder registers a Recorder notified after the simulation completes.
func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// Simulator holds the simulated kill counts for one set of drops.
//
// Invariant: sample is fully written before New returns and is never mutated
// afterwards, so every accessor is safe for concurrent use.
type Simulator struct {
	drops  []Drop
	trials int
	seed   uint64
	runID  string
	sample []droprate.Kills
	mean   float64

	sortOnce sync.Once
	sorted   []droprate.Kills
}

// New validates drops, runs the simulation and returns the Simulator.
//
// Precondition: drops must be non-empty with unique non-empty names and
// valid rates; the trial count must be >= 1.
// Postcondition: Returns a Simulator whose sample has exactly Trials()
// entries, or an error. Validation completes before any random draw.
// Cancelling ctx aborts the run with ctx.Err().
func New(ctx context.Context, drops []Drop, opts ...Option) (*Simulator, error) {
	cfg := settings{trials: DefaultTrials}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate(drops, cfg.trials); err != nil {
		return nil, err
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if !cfg.seeded {
		cfg.seed = dice.NewSeed()
	}
	if cfg.streams == nil {
		seed := cfg.seed
		cfg.streams = func(stream uint64) dice.Source { return dice.NewStream(seed, stream) }
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	s := &Simulator{
		drops:  append([]Drop(nil), drops...),
		trials: cfg.trials,
		seed:   cfg.seed,
		runID:  uuid.New().String(),
		sample: make([]droprate.Kills, cfg.trials),
	}

	start := time.Now()
	if err := s.run(ctx, cfg); err != nil {
		return nil, fmt.Errorf("simulator: run %s: %w", s.runID, err)
	}
	elapsed := time.Since(start)

	var sum float64
	for _, k := range s.sample {
		sum += float64(k)
	}
	s.mean = sum / float64(len(s.sample))

	cfg.logger.Debug("simulation complete",
		zap.String("run_id", s.runID),
		zap.Int("items", len(s.drops)),
		zap.Int("trials", s.trials),
		zap.Int("workers", cfg.workers),
		zap.Uint64("seed", s.seed),
		zap.Duration("elapsed", elapsed),
	)
	if cfg.recorder != nil {
		cfg.recorder.ObserveRun(s.trials, elapsed, s.sample)
	}
	return s, nil
}

func validate(drops []Drop, trials int) error {
	if trials < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidTrialCount, trials)
	}
	if len(drops) == 0 {
		return ErrNoDrops
	}
	seen := make(map[string]bool, len(drops))
	for i, d := range drops {
		if d.Name == "" {
			return fmt.Errorf("%w: drop[%d] must have a non-empty name", ErrInvalidDrop, i)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate drop name %q", ErrInvalidDrop, d.Name)
		}
		seen[d.Name] = true
		if err := d.Rate.Validate(); err != nil {
			return fmt.Errorf("drop %q: %w", d.Name, err)
		}
	}
	return nil
}

// Drops returns a copy of the simulated drops in their original order.
func (s *Simulator) Drops() []Drop {
	return append([]Drop(nil), s.drops...)
}

// Trials returns the number of simulated runs.
func (s *Simulator) Trials() int { return s.trials }

// Seed returns the run seed. It is meaningless when WithSource was used.
func (s *Simulator) Seed() uint64 { return s.seed }

// RunID identifies this simulation in logs.
func (s *Simulator) RunID() string { return s.runID }

// Sample returns a copy of the per-trial kill counts in trial order.
func (s *Simulator) Sample() []droprate.Kills {
	return append([]droprate.Kills(nil), s.sample...)
}

// Mean returns the unrounded sample mean.
func (s *Simulator) Mean() float64 { return s.mean }

func ceilKills(f float64) droprate.Kills {
	return droprate.Kills(math.Ceil(f))
}
