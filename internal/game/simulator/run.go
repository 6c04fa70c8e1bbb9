package simulator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/dropcalc/internal/game/dice"
	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
)

// chunkSize is the number of consecutive trials drawn from one stream.
// Chunks, not workers, own streams, so results do not depend on worker count.
const chunkSize = 1024

func (s *Simulator) run(ctx context.Context, cfg settings) error {
	rates := make([]float64, len(s.drops))
	for i, d := range s.drops {
		rates[i] = float64(d.Rate)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for lo, stream := 0, uint64(0); lo < s.trials; lo, stream = lo+chunkSize, stream+1 {
		if gctx.Err() != nil {
			break
		}
		hi := min(lo+chunkSize, s.trials)
		out := s.sample[lo:hi]
		src := cfg.streams(stream)
		g.Go(func() error {
			return runChunk(gctx, rates, src, out)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// runChunk fills out with one kill count per trial.
func runChunk(ctx context.Context, rates []float64, src dice.Source, out []droprate.Kills) error {
	obtained := make([]bool, len(rates))
	for i := range out {
		out[i] = killsUntilAll(rates, obtained, src)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// killsUntilAll simulates one run: every kill rolls each missing item
// independently until all items have dropped.
func killsUntilAll(rates []float64, obtained []bool, src dice.Source) droprate.Kills {
	clear(obtained)
	remaining := len(rates)
	var kills droprate.Kills
	for remaining > 0 {
		kills++
		for i, p := range rates {
			if obtained[i] {
				continue
			}
			if dice.Chance(p, src) {
				obtained[i] = true
				remaining--
			}
		}
	}
	return kills
}
