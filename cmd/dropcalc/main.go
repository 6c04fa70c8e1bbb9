// Package main provides the dropcalc CLI: single-item drop statistics and
// Monte Carlo estimates for collecting a set of drops.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dropcalc/internal/config"
	"github.com/cory-johannsen/dropcalc/internal/game/dice"
	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
	"github.com/cory-johannsen/dropcalc/internal/game/loot"
	"github.com/cory-johannsen/dropcalc/internal/game/simulator"
	"github.com/cory-johannsen/dropcalc/internal/observability"
	"github.com/cory-johannsen/dropcalc/internal/report"
)

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

const usage = `usage: dropcalc [-config path] <command> [flags]

commands:
  chance    chance of at least one drop within a number of kills
  kills     kills needed for a target confidence of one drop
  interval  central interval of kills for the first drop
  expected  average kills until the first drop
  simulate  simulate collecting every drop of a table
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries the resolved configuration and output for one command.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	out    *report.Reporter
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dropcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to configuration file; empty = defaults")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return exitConfig
	}

	logger, err := observability.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "initializing logger: %v\n", err)
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	e := &env{
		cfg:    cfg,
		logger: logger,
		out:    report.New(stdout, cfg.Report.Tag()),
		stderr: stderr,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "chance":
		err = e.chance(rest)
	case "kills":
		err = e.kills(rest)
	case "interval":
		err = e.interval(rest)
	case "expected":
		err = e.expected(rest)
	case "simulate":
		err = e.simulate(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return exitError
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return exitError
	}
	return exitOK
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitError
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// rateFlag parses a drop rate in any form droprate.ParseRate accepts.
type rateFlag struct {
	rate droprate.Rate
	set  bool
}

func (f *rateFlag) String() string {
	if !f.set {
		return ""
	}
	return f.rate.String()
}

func (f *rateFlag) Set(s string) error {
	r, err := droprate.ParseRate(s)
	if err != nil {
		return err
	}
	f.rate, f.set = r, true
	return nil
}

func (e *env) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func requireRate(r *rateFlag) error {
	if !r.set {
		return errors.New("-rate is required")
	}
	return nil
}

func (e *env) chance(args []string) error {
	fs := e.newFlagSet("chance")
	var rate rateFlag
	fs.Var(&rate, "rate", "per-kill drop rate, e.g. 1/50, 0.02 or 2%")
	kills := fs.Int64("kills", 0, "number of kills")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRate(&rate); err != nil {
		return err
	}

	chance, err := droprate.DropChance(rate.rate, droprate.Kills(*kills))
	if err != nil {
		return err
	}
	return e.out.Chance(droprate.Kills(*kills), chance)
}

func (e *env) kills(args []string) error {
	fs := e.newFlagSet("kills")
	var rate rateFlag
	fs.Var(&rate, "rate", "per-kill drop rate, e.g. 1/50, 0.02 or 2%")
	confidence := fs.Float64("confidence", 0.9, "target probability of at least one drop, in (0, 1)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRate(&rate); err != nil {
		return err
	}

	k, err := droprate.KillsForConfidence(rate.rate, *confidence)
	if err != nil {
		return err
	}
	return e.out.KillsForConfidence(*confidence, k)
}

func (e *env) interval(args []string) error {
	fs := e.newFlagSet("interval")
	var rate rateFlag
	fs.Var(&rate, "rate", "per-kill drop rate, e.g. 1/50, 0.02 or 2%")
	width := fs.Float64("interval", droprate.DefaultInterval, "central interval width, in (0, 1)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRate(&rate); err != nil {
		return err
	}

	b, err := droprate.Interval(rate.rate, *width)
	if err != nil {
		return err
	}
	return e.out.Interval(*width, b)
}

func (e *env) expected(args []string) error {
	fs := e.newFlagSet("expected")
	var rate rateFlag
	fs.Var(&rate, "rate", "per-kill drop rate, e.g. 1/50, 0.02 or 2%")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRate(&rate); err != nil {
		return err
	}

	mean, err := droprate.Expected(rate.rate)
	if err != nil {
		return err
	}
	return e.out.Expected(mean)
}

// dropList collects repeated -drop "Name=rate" flags.
type dropList []simulator.Drop

func (d *dropList) String() string {
	parts := make([]string, len(*d))
	for i, drop := range *d {
		parts[i] = drop.Name + "=" + drop.Rate.String()
	}
	return strings.Join(parts, ",")
}

// Set splits on the last "=", so item names may themselves contain "=".
func (d *dropList) Set(s string) error {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return fmt.Errorf("drop %q must be of the form Name=rate", s)
	}
	name := strings.TrimSpace(s[:i])
	rate, err := droprate.ParseRate(s[i+1:])
	if err != nil {
		return fmt.Errorf("drop %q: %w", name, err)
	}
	*d = append(*d, simulator.Drop{Name: name, Rate: rate})
	return nil
}

func (e *env) simulate(ctx context.Context, args []string) error {
	fs := e.newFlagSet("simulate")
	var drops dropList
	fs.Var(&drops, "drop", `item and rate, e.g. "Dragon pickaxe=1/358"; repeatable`)
	table := fs.String("table", "", "path to a drop table YAML file")
	tablesDir := fs.String("tables", "", "directory of drop table YAML files; requires -monster")
	monster := fs.String("monster", "", "monster whose table to simulate from -tables")
	within := fs.Int64("kills", 0, "also report the chance of every drop within this many kills; 0 = skip")
	trials := fs.Int("trials", e.cfg.Simulation.Trials, "number of simulated runs")
	workers := fs.Int("workers", e.cfg.Simulation.Workers, "worker goroutines; 0 = GOMAXPROCS")
	seed := fs.Uint64("seed", e.cfg.Simulation.Seed, "random seed; 0 = fresh seed")
	confidence := fs.Float64("confidence", 0.9, "target probability of collecting every drop, in (0, 1); same default as the kills command")
	width := fs.Float64("interval", droprate.DefaultInterval, "central interval width, in (0, 1)")
	metricsOut := fs.String("metrics-out", "", "write Prometheus text metrics to this file")
	useCrypto := fs.Bool("crypto", false, "draw from crypto/rand instead of seeded streams; ignores -seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := selectTable(*table, *tablesDir, *monster)
	if err != nil {
		return err
	}
	if t != nil {
		tableDrops, err := t.SimulatorDrops()
		if err != nil {
			return err
		}
		e.logger.Info("loaded drop table",
			zap.String("monster", t.Monster),
			zap.Int("drops", len(tableDrops)),
		)
		drops = append(tableDrops, drops...)
	}
	if len(drops) == 0 {
		return errors.New("at least one -drop or a -table is required")
	}

	opts := []simulator.Option{
		simulator.WithTrials(*trials),
		simulator.WithWorkers(*workers),
		simulator.WithLogger(e.logger),
	}
	switch {
	case *useCrypto:
		src := dice.NewCryptoSource()
		opts = append(opts, simulator.WithSource(func(uint64) dice.Source { return src }))
	case *seed != 0:
		opts = append(opts, simulator.WithSeed(*seed))
	}

	var reg *prometheus.Registry
	if *metricsOut != "" {
		reg = prometheus.NewRegistry()
		m, err := observability.NewSimulationMetrics(reg)
		if err != nil {
			return err
		}
		opts = append(opts, simulator.WithRecorder(m))
	}

	sim, err := simulator.New(ctx, drops, opts...)
	if err != nil {
		return err
	}

	if err := e.reportSimulation(sim, *confidence, *width); err != nil {
		return err
	}
	if *within > 0 {
		k := droprate.Kills(*within)
		if err := e.out.CombinedChance(k, sim.CombinedDropChance(k)); err != nil {
			return err
		}
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(*metricsOut, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// selectTable resolves the -table, -tables and -monster flags. It returns a
// nil table when none of them is set.
func selectTable(path, dir, monster string) (*loot.Table, error) {
	switch {
	case path != "" && dir != "":
		return nil, errors.New("-table and -tables are mutually exclusive")
	case path != "":
		return loot.LoadTableFile(path)
	case dir == "" && monster != "":
		return nil, errors.New("-monster requires -tables")
	case dir == "":
		return nil, nil
	case monster == "":
		return nil, errors.New("-tables requires -monster")
	}

	tables, err := loot.LoadTables(dir)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if strings.EqualFold(t.Monster, monster) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no drop table for monster %q in %q", monster, dir)
}

func (e *env) reportSimulation(sim *simulator.Simulator, confidence, width float64) error {
	k, err := sim.CombinedKillsForConfidence(confidence)
	if err != nil {
		return err
	}
	items, err := sim.IndividualDropRateIntervals(width)
	if err != nil {
		return err
	}
	combined, err := sim.CombinedDropInterval(width)
	if err != nil {
		return err
	}

	if err := e.out.CombinedExpected(sim.CombinedExpectedKills()); err != nil {
		return err
	}
	if err := e.out.CombinedKillsForConfidence(confidence, k); err != nil {
		return err
	}
	if err := e.out.IndividualIntervals(width, items); err != nil {
		return err
	}
	if err := e.out.CombinedInterval(width, combined); err != nil {
		return err
	}
	return e.out.Summary(sim.Summary())
}
