// Package species holds the per-species configuration that drives individual
// generation and growth simulation, and loads it from YAML (or JSON) files.
//
// Key names follow the species data files:
//
//	petId, name, baseline, initialStatGeneration, growthProfile, growthRules
package species

// Correlation modes.
const (
	ModeAttackGating = "ATTACK_GATING"
)

// Rounding tags.
const (
	RoundHalfUp = "ROUND_HALF_UP"
	RoundInt    = "INTEGER"
)

// Config is one species. It is read-only once loaded.
type Config struct {
	SchemaVersion         string                `yaml:"schemaVersion"`
	PetID                 string                `yaml:"petId"`
	Name                  string                `yaml:"name"`
	Baseline              Baseline              `yaml:"baseline"`
	InitialStatGeneration InitialStatGeneration `yaml:"initialStatGeneration"`
	GrowthProfile         GrowthProfile         `yaml:"growthProfile"`
	GrowthRules           GrowthRules           `yaml:"growthRules"`
}

// Baseline is the species' starting point before individual adjustments.
type Baseline struct {
	Stats      BaseStats `yaml:"stats"`
	GrowthRate float64   `yaml:"growthRate"`
	// Piseong is the baseline HP growth quantity.
	Piseong float64 `yaml:"piseong"`
}

type BaseStats struct {
	Atk int `yaml:"atk"`
	Def int `yaml:"def"`
	Spd int `yaml:"spd"`
	HP  int `yaml:"hp"`
}

type InitialStatGeneration struct {
	Adjustment           Adjustment `yaml:"adjustment"`
	Rounding             Rounding   `yaml:"rounding"`
	ClampAfterAdjustment StatClamps `yaml:"clampAfterAdjustment"`
}

// Adjustment controls how the four genes are sampled.
type Adjustment struct {
	Precision   Precision        `yaml:"precision"`
	Range       AdjustmentRanges `yaml:"range"`
	GlobalCap   GlobalCap        `yaml:"globalCap"`
	Correlation *Correlation     `yaml:"correlation,omitempty"`
}

type Precision struct {
	AtkDefSpdStep float64 `yaml:"atk_def_spd_step"`
	HPStep        int     `yaml:"hp_step"`
}

type AdjustmentRanges struct {
	Atk FloatRange `yaml:"atk"`
	Def FloatRange `yaml:"def"`
	Spd FloatRange `yaml:"spd"`
	HP  IntRange   `yaml:"hp"`
}

type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// GlobalCap limits atk/def/spd adjustments. Zero disables a cap.
type GlobalCap struct {
	MaxAbs    float64 `yaml:"atk_def_spd_maxAbs"`
	SumMaxAbs float64 `yaml:"atk_def_spd_sumMaxAbs"`
}

// Correlation ties the def/spd ceilings to the sampled attack adjustment.
type Correlation struct {
	Mode       string      `yaml:"mode"`
	AttackGate *AttackGate `yaml:"attackGate,omitempty"`
}

type AttackGate struct {
	Tiers []GateTier `yaml:"tiers"`
}

// GateTier applies when MinInclusive <= atkAdj < MaxExclusive.
type GateTier struct {
	AtkAdjMinInclusive float64     `yaml:"atkAdjMinInclusive"`
	AtkAdjMaxExclusive float64     `yaml:"atkAdjMaxExclusive"`
	OtherAdjMax        OtherAdjMax `yaml:"otherAdjMax"`
}

func (t GateTier) Contains(atkAdj float64) bool {
	return atkAdj >= t.AtkAdjMinInclusive && atkAdj < t.AtkAdjMaxExclusive
}

type OtherAdjMax struct {
	Def float64 `yaml:"def"`
	Spd float64 `yaml:"spd"`
}

type Rounding struct {
	AtkDefSpdDisplay string `yaml:"atk_def_spd_display"`
	HPDisplay        string `yaml:"hp_display"`
}

type StatClamps struct {
	Atk IntRange `yaml:"atk"`
	Def IntRange `yaml:"def"`
	Spd IntRange `yaml:"spd"`
	HP  IntRange `yaml:"hp"`
}

// GrowthProfile maps an individual's genes onto a point between the normal
// and max tiers.
type GrowthProfile struct {
	Normal  GrowthTier `yaml:"normal"`
	Max     GrowthTier `yaml:"max"`
	Mapping Mapping    `yaml:"mapping"`
}

type GrowthTier struct {
	GrowthRate     float64        `yaml:"growthRate"`
	Piseong        float64        `yaml:"piseong"`
	MeanIncrements MeanIncrements `yaml:"meanIncrements"`
}

type MeanIncrements struct {
	Atk float64 `yaml:"atk"`
	Def float64 `yaml:"def"`
	Spd float64 `yaml:"spd"`
}

type Mapping struct {
	SumAdjForMax          float64               `yaml:"sumAdjForMax"`
	QClamp                FloatRange            `yaml:"qClamp"`
	PerStatRedistribution PerStatRedistribution `yaml:"perStatRedistribution"`
	HPMean                HPMean                `yaml:"hpMean"`
	NegativePenalty       NegativePenalty       `yaml:"negativePenalty"`
}

type PerStatRedistribution struct {
	Enabled bool    `yaml:"enabled"`
	K       float64 `yaml:"k"`
}

// HPMean couples the HP mean increment to the HP adjustment.
type HPMean struct {
	Enabled bool    `yaml:"enabled"`
	HPAdjK  float64 `yaml:"hpAdjK"`
	Clamp   *Clamp  `yaml:"clamp,omitempty"`
}

// Clamp is an optional interval; an absent side is unbounded.
type Clamp struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// Apply clamps x into the interval. A nil Clamp returns x unchanged.
func (c *Clamp) Apply(x float64) float64 {
	if c == nil {
		return x
	}
	if c.Min != nil && x < *c.Min {
		x = *c.Min
	}
	if c.Max != nil && x > *c.Max {
		x = *c.Max
	}
	return x
}

// NegativePenalty scales growth down for individuals whose summed
// adjustments fall below the normal tier (q < 0).
type NegativePenalty struct {
	Enabled    bool    `yaml:"enabled"`
	AtkDefSpdK float64 `yaml:"atkDefSpdK"`
	HPK        float64 `yaml:"hpK"`
}

type GrowthRules struct {
	LevelUpIncrements LevelUpIncrements `yaml:"levelUpIncrements"`
}

type LevelUpIncrements struct {
	Atk StatIncrementRule `yaml:"atk"`
	Def StatIncrementRule `yaml:"def"`
	Spd StatIncrementRule `yaml:"spd"`
	HP  HPIncrementRule   `yaml:"hp"`
}

type StatIncrementRule struct {
	Min      int   `yaml:"min"`
	Max      int   `yaml:"max"`
	Disallow []int `yaml:"disallow,omitempty"`
}

// HPIncrementRule has no defaults; both bounds must be present.
type HPIncrementRule struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max"`
}

// Bounds returns the HP increment bounds. It must only be called on a
// validated config.
func (r HPIncrementRule) Bounds() (min, max int) {
	if r.Min != nil {
		min = *r.Min
	}
	if r.Max != nil {
		max = *r.Max
	}
	return min, max
}

// Defaults returns a Config carrying every default value. Decoding a species
// file on top of it leaves absent keys at these values.
func Defaults() Config {
	return Config{
		SchemaVersion: "1.0",
		InitialStatGeneration: InitialStatGeneration{
			Adjustment: Adjustment{
				Precision: Precision{AtkDefSpdStep: 0.1, HPStep: 1},
				GlobalCap: GlobalCap{MaxAbs: 2.0},
			},
			Rounding: Rounding{AtkDefSpdDisplay: RoundHalfUp, HPDisplay: RoundInt},
		},
		GrowthProfile: GrowthProfile{
			Mapping: Mapping{
				SumAdjForMax:          1.8,
				QClamp:                FloatRange{Min: 0, Max: 1},
				PerStatRedistribution: PerStatRedistribution{Enabled: true, K: 0.05},
				HPMean:                HPMean{Enabled: true, HPAdjK: 0.12},
			},
		},
		GrowthRules: GrowthRules{
			LevelUpIncrements: LevelUpIncrements{
				Atk: StatIncrementRule{Min: 0, Max: 3},
				Def: StatIncrementRule{Min: 0, Max: 3},
				Spd: StatIncrementRule{Min: 0, Max: 3},
			},
		},
	}
}
