// Package sim runs level-up simulations for generated individuals.
//
// A simulation derives the individual's growth once, builds the legal
// increment lattices once, then draws atk, def, spd and hp increments (in
// that order) for every level from a single random cursor.
package sim

import (
	"errors"
	"fmt"

	"petgrowth/internal/genetics"
	"petgrowth/internal/growth"
	"petgrowth/internal/pet"
	"petgrowth/internal/rng"
	"petgrowth/internal/sampler"
	"petgrowth/internal/species"
)

var (
	// ErrInvalidArgument is returned for caller errors such as a negative
	// level-up count.
	ErrInvalidArgument = errors.New("sim: invalid argument")
	// ErrNoLegalIncrements is returned when a stat has no legal level-up
	// increment. It is a configuration defect.
	ErrNoLegalIncrements = errors.New("sim: no legal increments")
)

// Lattices holds the sorted legal increments for each stat.
type Lattices struct {
	Atk, Def, Spd, HP []int
}

// BuildLattices builds the four legal increment sets from the species'
// level-up rules. Every set must be non-empty.
func BuildLattices(rules species.LevelUpIncrements) (Lattices, error) {
	var l Lattices
	hpMin, hpMax := rules.HP.Bounds()
	for _, s := range []struct {
		name     string
		min, max int
		disallow []int
		dst      *[]int
	}{
		{"atk", rules.Atk.Min, rules.Atk.Max, rules.Atk.Disallow, &l.Atk},
		{"def", rules.Def.Min, rules.Def.Max, rules.Def.Disallow, &l.Def},
		{"spd", rules.Spd.Min, rules.Spd.Max, rules.Spd.Disallow, &l.Spd},
		{"hp", hpMin, hpMax, nil, &l.HP},
	} {
		allowed, err := sampler.BuildAllowedRange(s.min, s.max, s.disallow)
		if err != nil {
			return Lattices{}, fmt.Errorf("%w: %s: %w", ErrNoLegalIncrements, s.name, err)
		}
		if len(allowed) == 0 {
			return Lattices{}, fmt.Errorf("%w: %s: every value in [%d, %d] is disallowed", ErrNoLegalIncrements, s.name, s.min, s.max)
		}
		*s.dst = allowed
	}
	return l, nil
}

// Draw samples one level's increments against the derived means.
func (l Lattices) Draw(src rng.Source, d growth.DerivedGrowth) (pet.LevelUpDelta, error) {
	var (
		delta pet.LevelUpDelta
		err   error
	)
	if delta.Atk, err = sampler.SampleFromMean(src, l.Atk, d.AtkMean); err != nil {
		return delta, fmt.Errorf("atk: %w", err)
	}
	if delta.Def, err = sampler.SampleFromMean(src, l.Def, d.DefMean); err != nil {
		return delta, fmt.Errorf("def: %w", err)
	}
	if delta.Spd, err = sampler.SampleFromMean(src, l.Spd, d.SpdMean); err != nil {
		return delta, fmt.Errorf("spd: %w", err)
	}
	if delta.HP, err = sampler.SampleFromMean(src, l.HP, d.HPMean); err != nil {
		return delta, fmt.Errorf("hp: %w", err)
	}
	return delta, nil
}

// Result is the outcome of one simulated lifetime.
type Result struct {
	// Individual carries the derived growth rate and HP growth.
	Individual pet.Individual
	Derived    growth.DerivedGrowth
	// Deltas holds one entry per level-up, in level order.
	Deltas []pet.LevelUpDelta
	// Final is the display stats plus every delta.
	Final pet.Stats
}

// Spawn generates an individual and derives its growth. The returned
// individual already carries the derived growth fields.
func Spawn(cfg *species.Config, src rng.Source) (pet.Individual, growth.DerivedGrowth) {
	p := genetics.CreateIndividual(cfg, src)
	d := growth.Build(cfg, p)
	return p.WithGrowth(d.GrowthRate, d.HPGrowth), d
}

// SimulateLevels runs levelUps level-ups for p. Lattice problems are
// reported before any draw is consumed.
func SimulateLevels(cfg *species.Config, p pet.Individual, src rng.Source, levelUps int) (Result, error) {
	if levelUps < 0 {
		return Result{}, fmt.Errorf("%w: levelUps must not be negative (got %d)", ErrInvalidArgument, levelUps)
	}

	d := growth.Build(cfg, p)
	grown := p.WithGrowth(d.GrowthRate, d.HPGrowth)

	lat, err := BuildLattices(cfg.GrowthRules.LevelUpIncrements)
	if err != nil {
		return Result{}, fmt.Errorf("species %s: %w", cfg.PetID, err)
	}

	res := Result{
		Individual: grown,
		Derived:    d,
		Deltas:     make([]pet.LevelUpDelta, 0, levelUps),
		Final:      grown.Display,
	}
	for i := 0; i < levelUps; i++ {
		delta, err := lat.Draw(src, d)
		if err != nil {
			return Result{}, fmt.Errorf("level %d: %w", i+2, err)
		}
		res.Final = res.Final.Add(delta)
		res.Deltas = append(res.Deltas, delta)
	}
	return res, nil
}
