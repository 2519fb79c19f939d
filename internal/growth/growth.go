// Package growth derives an individual's growth trajectory from its genes.
//
// The summed atk/def/spd genes give an interpolation factor q between the
// species' normal tier (q=0) and max tier (q=1). Individuals below the
// normal tier (q<0, only reachable when qClamp.min < 0) may be scaled down
// by the negative penalty instead.
package growth

import (
	"math"

	"petgrowth/internal/pet"
	"petgrowth/internal/species"
)

const (
	// MeanLimit bounds the atk/def/spd mean increments.
	MeanLimit = 10.0
	// StatPenaltyFloor is the smallest multiplier the negative penalty may
	// apply to atk/def/spd means, growth rate and HP growth.
	StatPenaltyFloor = 0.50
	// HPPenaltyFloor is the smallest multiplier applied to the HP mean.
	HPPenaltyFloor = 0.70
)

// DerivedGrowth is computed once per individual and stays fixed for its
// whole simulated lifetime.
type DerivedGrowth struct {
	Q          float64 `yaml:"q"`
	GrowthRate float64 `yaml:"growth_rate"`
	HPGrowth   float64 `yaml:"hp_growth"`
	AtkMean    float64 `yaml:"atk_mean"`
	DefMean    float64 `yaml:"def_mean"`
	SpdMean    float64 `yaml:"spd_mean"`
	HPMean     float64 `yaml:"hp_mean"`
}

// Build derives the growth trajectory for an individual. It is a pure
// function of its inputs.
func Build(cfg *species.Config, p pet.Individual) DerivedGrowth {
	gp := cfg.GrowthProfile
	m := gp.Mapping
	g := p.Genes

	sumAdj := g.Sum()
	denom := m.SumAdjForMax
	if denom <= 0 {
		denom = 1.0
	}
	q := pet.Clamp(sumAdj/denom, m.QClamp.Min, m.QClamp.Max)
	qPos := math.Max(q, 0)
	qNeg := math.Min(q, 0)

	growthRate := lerp(gp.Normal.GrowthRate, gp.Max.GrowthRate, qPos)
	hpGrowth := lerp(gp.Normal.Piseong, gp.Max.Piseong, qPos)
	atkMean := lerp(gp.Normal.MeanIncrements.Atk, gp.Max.MeanIncrements.Atk, qPos)
	defMean := lerp(gp.Normal.MeanIncrements.Def, gp.Max.MeanIncrements.Def, qPos)
	spdMean := lerp(gp.Normal.MeanIncrements.Spd, gp.Max.MeanIncrements.Spd, qPos)

	penalized := m.NegativePenalty.Enabled && qNeg < 0
	if penalized {
		f := PenaltyMultiplier(m.NegativePenalty.AtkDefSpdK, qNeg, StatPenaltyFloor)
		atkMean *= f
		defMean *= f
		spdMean *= f
		growthRate *= f
		hpGrowth *= f
	}

	if r := m.PerStatRedistribution; r.Enabled {
		avg := sumAdj / 3.0
		atkMean += r.K * (g.Atk - avg)
		defMean += r.K * (g.Def - avg)
		spdMean += r.K * (g.Spd - avg)
	}

	hpMean := hpGrowth
	if m.HPMean.Enabled {
		hpMean = hpGrowth + float64(g.HP)*m.HPMean.HPAdjK
	}
	if penalized {
		hpMean *= PenaltyMultiplier(m.NegativePenalty.HPK, qNeg, HPPenaltyFloor)
	}
	if m.HPMean.Enabled {
		hpMean = m.HPMean.Clamp.Apply(hpMean)
	}

	return DerivedGrowth{
		Q:          q,
		GrowthRate: math.Max(growthRate, 0),
		HPGrowth:   math.Max(hpGrowth, 0),
		AtkMean:    pet.Clamp(atkMean, -MeanLimit, MeanLimit),
		DefMean:    pet.Clamp(defMean, -MeanLimit, MeanLimit),
		SpdMean:    pet.Clamp(spdMean, -MeanLimit, MeanLimit),
		HPMean:     hpMean,
	}
}

// PenaltyMultiplier returns max(floor, 1 + k*qNeg).
func PenaltyMultiplier(k, qNeg, floor float64) float64 {
	return math.Max(floor, 1+k*qNeg)
}

// lerp is exact at both ends: t=0 gives a, t=1 gives b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
