// Package genetics generates an individual's genes and starting stats from
// its species configuration.
//
// Draw order is fixed: atk, def, spd, hp (one draw each unless the range
// collapses to a single value). Attack gating reads the sampled atk gene and
// lowers the def/spd ceilings before they are drawn.
package genetics

import (
	"math"

	"petgrowth/internal/pet"
	"petgrowth/internal/rng"
	"petgrowth/internal/species"
)

const (
	defaultStep   = 0.1
	defaultHPStep = 1
	// stepEpsilon absorbs floating error in (max-min)/step. This departs
	// from the plain floor((max-min)/step)+1 count on purpose: -0.3..0.3 at
	// 0.1 yields seven values (both endpoints) rather than six, so a seed
	// does not reproduce the same individual as the unadjusted formula.
	stepEpsilon = 1e-9
	// maxStepDecimals bounds the precision roundStep works at.
	maxStepDecimals = 9
	capEpsilon      = 1e-9
)

// CreateIndividual samples genes and derives raw and display stats. Growth
// fields hold the species baseline until the growth profile is derived.
func CreateIndividual(cfg *species.Config, src rng.Source) pet.Individual {
	gen := cfg.InitialStatGeneration
	adj := gen.Adjustment

	step := adj.Precision.AtkDefSpdStep
	if step <= 0 {
		step = defaultStep
	}

	genes := pet.Genes{}
	genes.Atk = SampleStep(src, adj.Range.Atk.Min, adj.Range.Atk.Max, step)

	defMax, spdMax := adj.Range.Def.Max, adj.Range.Spd.Max
	if tier, ok := FindGateTier(adj, genes.Atk); ok {
		defMax = math.Min(defMax, tier.OtherAdjMax.Def)
		spdMax = math.Min(spdMax, tier.OtherAdjMax.Spd)
	}
	genes.Def = SampleStep(src, adj.Range.Def.Min, defMax, step)
	genes.Spd = SampleStep(src, adj.Range.Spd.Min, spdMax, step)
	genes.HP = SampleStepInt(src, adj.Range.HP.Min, adj.Range.HP.Max, adj.Precision.HPStep)

	if c := adj.GlobalCap.MaxAbs; c > 0 {
		genes.Atk = pet.Clamp(genes.Atk, -c, c)
		genes.Def = pet.Clamp(genes.Def, -c, c)
		genes.Spd = pet.Clamp(genes.Spd, -c, c)
	}
	genes.Atk, genes.Def, genes.Spd = ApplySumCap(genes.Atk, genes.Def, genes.Spd, step, adj.GlobalCap.SumMaxAbs)

	base := cfg.Baseline.Stats
	raw := pet.RawStats{
		Atk: float64(base.Atk) + genes.Atk,
		Def: float64(base.Def) + genes.Def,
		Spd: float64(base.Spd) + genes.Spd,
		HP:  base.HP + genes.HP,
	}

	cl := gen.ClampAfterAdjustment
	display := pet.Stats{
		Atk: pet.ClampInt(pet.RoundHalfAway(raw.Atk), cl.Atk.Min, cl.Atk.Max),
		Def: pet.ClampInt(pet.RoundHalfAway(raw.Def), cl.Def.Min, cl.Def.Max),
		Spd: pet.ClampInt(pet.RoundHalfAway(raw.Spd), cl.Spd.Min, cl.Spd.Max),
		HP:  pet.ClampInt(raw.HP, cl.HP.Min, cl.HP.Max),
	}

	return pet.Individual{
		SpeciesID:  cfg.PetID,
		Name:       cfg.Name,
		Raw:        raw,
		Display:    display,
		Genes:      genes,
		GrowthRate: cfg.Baseline.GrowthRate,
		HPGrowth:   cfg.Baseline.Piseong,
	}
}

// FindGateTier returns the first tier whose [min, max) interval contains
// atkAdj, if attack gating is configured.
func FindGateTier(adj species.Adjustment, atkAdj float64) (species.GateTier, bool) {
	if !adj.GatingEnabled() {
		return species.GateTier{}, false
	}
	for _, t := range adj.Correlation.AttackGate.Tiers {
		if t.Contains(atkAdj) {
			return t, true
		}
	}
	return species.GateTier{}, false
}

// SampleStep draws a value from {min, min+step, ...} <= max, rounded to one
// decimal. A range with max < min collapses to min. No draw is consumed when
// the range holds a single value.
func SampleStep(src rng.Source, min, max, step float64) float64 {
	if step <= 0 {
		step = defaultStep
	}
	if max < min {
		max = min
	}
	count := int(math.Floor((max-min)/step+stepEpsilon)) + 1
	if count <= 1 {
		return pet.Round1(min)
	}
	idx := int(math.Floor(src.Float64() * float64(count)))
	if idx >= count {
		idx = count - 1
	}
	return pet.Round1(min + float64(idx)*step)
}

// SampleStepInt is the integer counterpart of SampleStep.
func SampleStepInt(src rng.Source, min, max, step int) int {
	if step <= 0 {
		step = defaultHPStep
	}
	if max < min {
		max = min
	}
	count := (max-min)/step + 1
	if count <= 1 {
		return min
	}
	idx := int(math.Floor(src.Float64() * float64(count)))
	if idx >= count {
		idx = count - 1
	}
	return min + idx*step
}

// ApplySumCap scales atk/def/spd proportionally so |atk+def+spd| <= sumMaxAbs
// and re-rounds each term to a multiple of step. Any residual overshoot is
// removed one step at a time from the term with the largest magnitude (ties:
// atk, then def, then spd), moving it toward zero. A non-positive sumMaxAbs
// disables the cap.
func ApplySumCap(atk, def, spd, step, sumMaxAbs float64) (float64, float64, float64) {
	if sumMaxAbs <= 0 {
		return atk, def, spd
	}
	absSum := math.Abs(atk + def + spd)
	if absSum <= sumMaxAbs {
		return atk, def, spd
	}
	if step <= 0 {
		step = defaultStep
	}

	factor := sumMaxAbs / absSum
	atk = roundStep(atk*factor, step)
	def = roundStep(def*factor, step)
	spd = roundStep(spd*factor, step)

	// Every term reaches zero within this many corrections.
	limit := int(math.Ceil((math.Abs(atk)+math.Abs(def)+math.Abs(spd))/step)) + 3
	for i := 0; i < limit && math.Abs(atk+def+spd) > sumMaxAbs+capEpsilon; i++ {
		a, d, s := math.Abs(atk), math.Abs(def), math.Abs(spd)
		switch {
		case a >= d && a >= s:
			atk = towardZero(atk, step)
		case d >= s:
			def = towardZero(def, step)
		default:
			spd = towardZero(spd, step)
		}
	}
	return atk, def, spd
}

func towardZero(v, step float64) float64 {
	if math.Abs(v) <= step {
		return 0
	}
	if v > 0 {
		return roundStep(v-step, step)
	}
	return roundStep(v+step, step)
}

// roundStep rounds v to the nearest multiple of step, halves away from zero.
// For step 0.1 this is pet.Round1.
func roundStep(v, step float64) float64 {
	d := stepDecimals(step)
	r := roundDecimals(v, d)
	return roundDecimals(math.Round(r/step)*step, d)
}

// stepDecimals returns the number of decimal places step is written with.
func stepDecimals(step float64) int {
	p := 1.0
	for d := 0; d < maxStepDecimals; d++ {
		if x := step * p; math.Abs(x-math.Round(x)) < 1e-9 {
			return d
		}
		p *= 10
	}
	return maxStepDecimals
}

func roundDecimals(v float64, d int) float64 {
	p := math.Pow(10, float64(d))
	return pet.FixNegZero(math.Round(v*p) / p)
}
