package species

import (
	"errors"
	"fmt"
	"strings"

	"petgrowth/internal/sampler"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid species config")

// MinAtkDefSpdStep is the finest atk/def/spd gene step a config may declare.
const MinAtkDefSpdStep = 0.001

// Validate reports every structural problem in c. A config that fails
// validation must not be used to generate individuals.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.PetID) == "" {
		add("petId is required")
	}

	gen := c.InitialStatGeneration
	adj := gen.Adjustment
	switch step := adj.Precision.AtkDefSpdStep; {
	case step < 0:
		add("adjustment.precision.atk_def_spd_step must not be negative (got %v)", step)
	case step > 0 && step < MinAtkDefSpdStep:
		add("adjustment.precision.atk_def_spd_step must be at least %v (got %v)", MinAtkDefSpdStep, step)
	}
	if adj.Precision.HPStep < 0 {
		add("adjustment.precision.hp_step must not be negative (got %d)", adj.Precision.HPStep)
	}
	for _, r := range []struct {
		name string
		rng  FloatRange
	}{
		{"atk", adj.Range.Atk},
		{"def", adj.Range.Def},
		{"spd", adj.Range.Spd},
	} {
		if r.rng.Max < r.rng.Min {
			add("adjustment.range.%s: max %v < min %v", r.name, r.rng.Max, r.rng.Min)
		}
	}
	if adj.Range.HP.Max < adj.Range.HP.Min {
		add("adjustment.range.hp: max %d < min %d", adj.Range.HP.Max, adj.Range.HP.Min)
	}
	if adj.GlobalCap.MaxAbs < 0 || adj.GlobalCap.SumMaxAbs < 0 {
		add("adjustment.globalCap values must not be negative")
	}

	if corr := adj.Correlation; corr != nil {
		switch strings.ToUpper(corr.Mode) {
		case "", ModeAttackGating:
		default:
			add("adjustment.correlation.mode %q is not supported", corr.Mode)
		}
		if corr.AttackGate != nil {
			for i, t := range corr.AttackGate.Tiers {
				if t.AtkAdjMinInclusive >= t.AtkAdjMaxExclusive {
					add("adjustment.correlation.attackGate.tiers[%d]: empty interval [%v, %v)",
						i, t.AtkAdjMinInclusive, t.AtkAdjMaxExclusive)
				}
			}
		}
	}

	switch strings.ToUpper(gen.Rounding.AtkDefSpdDisplay) {
	case "", RoundHalfUp:
	default:
		add("rounding.atk_def_spd_display %q is not supported", gen.Rounding.AtkDefSpdDisplay)
	}
	switch strings.ToUpper(gen.Rounding.HPDisplay) {
	case "", RoundInt:
	default:
		add("rounding.hp_display %q is not supported", gen.Rounding.HPDisplay)
	}

	for _, r := range []struct {
		name string
		rng  IntRange
	}{
		{"atk", gen.ClampAfterAdjustment.Atk},
		{"def", gen.ClampAfterAdjustment.Def},
		{"spd", gen.ClampAfterAdjustment.Spd},
		{"hp", gen.ClampAfterAdjustment.HP},
	} {
		if r.rng.Max < r.rng.Min {
			add("clampAfterAdjustment.%s: max %d < min %d", r.name, r.rng.Max, r.rng.Min)
		}
	}

	m := c.GrowthProfile.Mapping
	if m.QClamp.Min > m.QClamp.Max {
		add("growthProfile.mapping.qClamp: min %v > max %v", m.QClamp.Min, m.QClamp.Max)
	}
	if cl := m.HPMean.Clamp; cl != nil && cl.Min != nil && cl.Max != nil && *cl.Min > *cl.Max {
		add("growthProfile.mapping.hpMean.clamp: min %v > max %v", *cl.Min, *cl.Max)
	}

	inc := c.GrowthRules.LevelUpIncrements
	for _, r := range []struct {
		name string
		rule StatIncrementRule
	}{
		{"atk", inc.Atk},
		{"def", inc.Def},
		{"spd", inc.Spd},
	} {
		allowed, err := sampler.BuildAllowedRange(r.rule.Min, r.rule.Max, r.rule.Disallow)
		switch {
		case err != nil:
			add("growthRules.levelUpIncrements.%s: %v", r.name, err)
		case len(allowed) == 0:
			add("growthRules.levelUpIncrements.%s: no legal increments", r.name)
		}
	}
	if inc.HP.Min == nil || inc.HP.Max == nil {
		add("growthRules.levelUpIncrements.hp: min and max are required")
	} else if *inc.HP.Min > *inc.HP.Max {
		add("growthRules.levelUpIncrements.hp: min %d > max %d", *inc.HP.Min, *inc.HP.Max)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidConfig, c.PetID, errors.Join(errs...))
}

// GatingEnabled reports whether the attack gating rule is active.
func (a Adjustment) GatingEnabled() bool {
	return a.Correlation != nil &&
		strings.EqualFold(a.Correlation.Mode, ModeAttackGating) &&
		a.Correlation.AttackGate != nil &&
		len(a.Correlation.AttackGate.Tiers) > 0
}
