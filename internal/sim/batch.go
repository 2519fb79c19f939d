package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"petgrowth/internal/genetics"
	"petgrowth/internal/rng"
	"petgrowth/internal/species"
)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Count    int
	LevelUps int
	Seed     uint32
	// Workers <= 1 runs every individual from one cursor seeded with Seed.
	// Workers > 1 gives individual i its own source seeded with
	// rng.DeriveSeed(Seed, i). Both modes are reproducible, but they do
	// not produce the same individuals.
	Workers int
}

// RunBatch generates and simulates opts.Count individuals. Results are
// returned in index order regardless of worker scheduling.
func RunBatch(ctx context.Context, cfg *species.Config, opts BatchOptions) ([]Result, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative (got %d)", ErrInvalidArgument, opts.Count)
	}
	if opts.LevelUps < 0 {
		return nil, fmt.Errorf("%w: levelUps must not be negative (got %d)", ErrInvalidArgument, opts.LevelUps)
	}
	// Surface configuration defects before generating anyone.
	if _, err := BuildLattices(cfg.GrowthRules.LevelUpIncrements); err != nil {
		return nil, fmt.Errorf("species %s: %w", cfg.PetID, err)
	}

	results := make([]Result, opts.Count)
	if opts.Workers <= 1 {
		src := rng.New(opts.Seed)
		for i := range results {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := simulateOne(cfg, src, opts.LevelUps)
			if err != nil {
				return nil, fmt.Errorf("individual %d: %w", i, err)
			}
			results[i] = r
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := simulateOne(cfg, rng.New(rng.DeriveSeed(opts.Seed, i)), opts.LevelUps)
			if err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func simulateOne(cfg *species.Config, src rng.Source, levelUps int) (Result, error) {
	return SimulateLevels(cfg, genetics.CreateIndividual(cfg, src), src, levelUps)
}
