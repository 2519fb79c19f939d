package sim_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"

	"petgrowth/internal/genetics"
	"petgrowth/internal/growth"
	"petgrowth/internal/pet"
	"petgrowth/internal/rng"
	"petgrowth/internal/sampler"
	"petgrowth/internal/sim"
	"petgrowth/internal/species"
	"petgrowth/internal/species/speciestest"
)

// TestSimulateLevelsDeterministic verifies identical deltas and totals for the same seed.
func TestSimulateLevelsDeterministic(t *testing.T) {
	cfg := speciestest.Mogaros()
	p := genetics.CreateIndividual(cfg, rng.New(1))

	a, err := sim.SimulateLevels(cfg, p, rng.New(42), 120)
	if err != nil {
		t.Fatalf("SimulateLevels: %v", err)
	}
	b, err := sim.SimulateLevels(cfg, p, rng.New(42), 120)
	if err != nil {
		t.Fatalf("SimulateLevels: %v", err)
	}
	if !slices.Equal(a.Deltas, b.Deltas) || a.Final != b.Final {
		t.Error("same seed produced different runs")
	}
	if len(a.Deltas) != 120 {
		t.Fatalf("len(Deltas) = %d, want 120", len(a.Deltas))
	}

	total := a.Individual.Display
	for _, d := range a.Deltas {
		total = total.Add(d)
	}
	if total != a.Final {
		t.Errorf("Final = %+v, want display plus deltas %+v", a.Final, total)
	}
}

// TestSimulateLevelsFinalizesGrowth verifies the returned individual carries the derived growth.
func TestSimulateLevelsFinalizesGrowth(t *testing.T) {
	cfg := speciestest.Mogaros()
	p := genetics.CreateIndividual(cfg, rng.New(5))
	res, err := sim.SimulateLevels(cfg, p, rng.New(6), 0)
	if err != nil {
		t.Fatalf("SimulateLevels: %v", err)
	}
	want := growth.Build(cfg, p)
	if res.Derived != want {
		t.Errorf("Derived = %+v, want %+v", res.Derived, want)
	}
	if res.Individual.GrowthRate != want.GrowthRate || res.Individual.HPGrowth != want.HPGrowth {
		t.Errorf("individual growth = %v/%v, want %v/%v",
			res.Individual.GrowthRate, res.Individual.HPGrowth, want.GrowthRate, want.HPGrowth)
	}
	if p.GrowthRate != cfg.Baseline.GrowthRate {
		t.Error("input individual was modified")
	}
	if len(res.Deltas) != 0 || res.Final != p.Display {
		t.Errorf("zero level-ups: deltas %d, final %+v", len(res.Deltas), res.Final)
	}
}

// TestSimulateLevelsNegative verifies that a negative level-up count is an argument error.
func TestSimulateLevelsNegative(t *testing.T) {
	cfg := speciestest.Plain()
	_, err := sim.SimulateLevels(cfg, pet.Individual{}, rng.NewSequence(), -1)
	if !errors.Is(err, sim.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

// TestSimulateLevelsNoLegalIncrements verifies that empty increment sets fail before any draw.
func TestSimulateLevelsNoLegalIncrements(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*species.LevelUpIncrements)
		also   error
	}{
		{"inverted range", func(r *species.LevelUpIncrements) { r.Atk = species.StatIncrementRule{Min: 5, Max: 4} }, sampler.ErrInvalidRange},
		{"all disallowed", func(r *species.LevelUpIncrements) {
			r.Spd = species.StatIncrementRule{Min: 1, Max: 2, Disallow: []int{1, 2}}
		}, nil},
		{"inverted hp", func(r *species.LevelUpIncrements) {
			lo, hi := 9, 8
			r.HP = species.HPIncrementRule{Min: &lo, Max: &hi}
		}, sampler.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := speciestest.Plain()
			tt.mutate(&cfg.GrowthRules.LevelUpIncrements)
			// An empty sequence panics on the first draw.
			src := rng.NewSequence()
			_, err := sim.SimulateLevels(cfg, pet.Individual{}, src, 10)
			if !errors.Is(err, sim.ErrNoLegalIncrements) {
				t.Fatalf("err = %v, want ErrNoLegalIncrements", err)
			}
			if tt.also != nil && !errors.Is(err, tt.also) {
				t.Errorf("err = %v, want it to also match %v", err, tt.also)
			}
			if src.Draws() != 0 {
				t.Errorf("consumed %d draws before failing", src.Draws())
			}
		})
	}
}

// TestSimulateLevelsDrawOrder verifies one draw per stat in atk, def, spd, hp order.
func TestSimulateLevelsDrawOrder(t *testing.T) {
	cfg := speciestest.Plain()
	// Zero genes: atk mean 1.5 over {0,2,3} (p=0.75), def/spd mean 1.5
	// over {0..3} (p=0.5), hp mean 8 lands on a legal value (no draw).
	src := rng.NewSequence(0.7, 0.6, 0.4)
	res, err := sim.SimulateLevels(cfg, pet.Individual{}, src, 1)
	if err != nil {
		t.Fatalf("SimulateLevels: %v", err)
	}
	want := pet.LevelUpDelta{Atk: 2, Def: 1, Spd: 2, HP: 8}
	if res.Deltas[0] != want {
		t.Errorf("delta = %+v, want %+v", res.Deltas[0], want)
	}
	if src.Draws() != 3 {
		t.Errorf("draws = %d, want 3", src.Draws())
	}
}

// TestSimulateLevelsMeanConverges verifies the observed mean increments match the derived means.
func TestSimulateLevelsMeanConverges(t *testing.T) {
	cfg := speciestest.Plain()
	res, err := sim.SimulateLevels(cfg, pet.Individual{}, rng.New(2024), 20000)
	if err != nil {
		t.Fatalf("SimulateLevels: %v", err)
	}
	var atk, hp int
	for _, d := range res.Deltas {
		if d.Atk == 1 {
			t.Fatal("disallowed atk increment 1 drawn")
		}
		if d.Atk < 0 || d.Atk > 3 || d.HP < 7 || d.HP > 10 {
			t.Fatalf("illegal delta %+v", d)
		}
		atk += d.Atk
		hp += d.HP
	}
	n := float64(len(res.Deltas))
	if got := float64(atk) / n; math.Abs(got-res.Derived.AtkMean) > 0.03 {
		t.Errorf("mean atk increment = %v, want %v", got, res.Derived.AtkMean)
	}
	if got := float64(hp) / n; got != 8 {
		t.Errorf("mean hp increment = %v, want exactly 8", got)
	}
}

// TestBuildLattices verifies range and disallow filtering of increments.
func TestBuildLattices(t *testing.T) {
	cfg := speciestest.Plain()
	l, err := sim.BuildLattices(cfg.GrowthRules.LevelUpIncrements)
	if err != nil {
		t.Fatalf("BuildLattices: %v", err)
	}
	want := sim.Lattices{
		Atk: []int{0, 2, 3},
		Def: []int{0, 1, 2, 3},
		Spd: []int{0, 1, 2, 3},
		HP:  []int{7, 8, 9, 10},
	}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("BuildLattices = %+v, want %+v", l, want)
	}
}

// TestSpawn verifies that Spawn returns a growth-finalized individual.
func TestSpawn(t *testing.T) {
	cfg := speciestest.Orgon()
	p, d := sim.Spawn(cfg, rng.New(77))
	if p.GrowthRate != d.GrowthRate || p.HPGrowth != d.HPGrowth {
		t.Errorf("Spawn individual growth %v/%v, derived %v/%v", p.GrowthRate, p.HPGrowth, d.GrowthRate, d.HPGrowth)
	}
	raw := genetics.CreateIndividual(cfg, rng.New(77))
	if raw.Genes != p.Genes || raw.Display != p.Display {
		t.Error("Spawn did not generate the same individual as CreateIndividual")
	}
}

// TestRunBatchSingleCursor verifies that one worker reproduces a sequential run on one source.
func TestRunBatchSingleCursor(t *testing.T) {
	cfg := speciestest.Mogaros()
	results, err := sim.RunBatch(context.Background(), cfg, sim.BatchOptions{Count: 5, LevelUps: 30, Seed: 11})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	src := rng.New(11)
	for i, got := range results {
		want, err := sim.SimulateLevels(cfg, genetics.CreateIndividual(cfg, src), src, 30)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("result %d differs from sequential run", i)
		}
	}
}

// TestRunBatchWorkersIndependentOfScheduling verifies that results depend on the seed, not the worker count.
func TestRunBatchWorkersIndependentOfScheduling(t *testing.T) {
	cfg := speciestest.Mogaros()
	opts := sim.BatchOptions{Count: 40, LevelUps: 20, Seed: 99, Workers: 2}
	a, err := sim.RunBatch(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	opts.Workers = 8
	b, err := sim.RunBatch(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("worker count changed results")
	}

	src := rng.New(rng.DeriveSeed(99, 7))
	want, err := sim.SimulateLevels(cfg, genetics.CreateIndividual(cfg, src), src, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a[7], want) {
		t.Error("individual 7 was not simulated from its derived seed")
	}
}

// TestRunBatchErrors verifies cancellation and argument errors.
func TestRunBatchErrors(t *testing.T) {
	cfg := speciestest.Plain()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		_, err := sim.RunBatch(ctx, cfg, sim.BatchOptions{Count: 10, LevelUps: 5, Workers: workers})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: err = %v, want context.Canceled", workers, err)
		}
	}

	if _, err := sim.RunBatch(context.Background(), cfg, sim.BatchOptions{Count: -1}); !errors.Is(err, sim.ErrInvalidArgument) {
		t.Errorf("negative count: err = %v", err)
	}

	cfg.GrowthRules.LevelUpIncrements.Def = species.StatIncrementRule{Min: 3, Max: 1}
	if _, err := sim.RunBatch(context.Background(), cfg, sim.BatchOptions{Count: 3, LevelUps: 5}); !errors.Is(err, sim.ErrNoLegalIncrements) {
		t.Errorf("bad lattice: err = %v", err)
	}
}
