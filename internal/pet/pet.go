// Package pet defines the individual creature value produced by generation
// and the per-level increments produced by simulation.
package pet

import (
	"fmt"
	"math"
)

// Genes are the individual's adjustments from the species baseline.
// Atk/Def/Spd are decimal; HP is an integer.
type Genes struct {
	Atk float64 `yaml:"atk"`
	Def float64 `yaml:"def"`
	Spd float64 `yaml:"spd"`
	HP  int     `yaml:"hp"`
}

// Sum returns Atk+Def+Spd.
func (g Genes) Sum() float64 { return g.Atk + g.Def + g.Spd }

// RawStats are baseline + genes, before display rounding.
type RawStats struct {
	Atk float64 `yaml:"atk"`
	Def float64 `yaml:"def"`
	Spd float64 `yaml:"spd"`
	HP  int     `yaml:"hp"`
}

// Stats are integer stat values (display stats, increments or totals).
type Stats struct {
	Atk int `yaml:"atk"`
	Def int `yaml:"def"`
	Spd int `yaml:"spd"`
	HP  int `yaml:"hp"`
}

// Add returns the component-wise sum.
func (s Stats) Add(o Stats) Stats {
	return Stats{Atk: s.Atk + o.Atk, Def: s.Def + o.Def, Spd: s.Spd + o.Spd, HP: s.HP + o.HP}
}

// Sub returns the component-wise difference.
func (s Stats) Sub(o Stats) Stats {
	return Stats{Atk: s.Atk - o.Atk, Def: s.Def - o.Def, Spd: s.Spd - o.Spd, HP: s.HP - o.HP}
}

// LevelUpDelta is one level's increments.
type LevelUpDelta = Stats

// Individual is one generated creature. It is a value: every field is
// copied on assignment, and the only way to change growth fields is
// WithGrowth, which returns a new value.
type Individual struct {
	SpeciesID string   `yaml:"species_id"`
	Name      string   `yaml:"name"`
	Raw       RawStats `yaml:"raw"`
	Display   Stats    `yaml:"display"`
	Genes     Genes    `yaml:"genes"`
	// GrowthRate and HPGrowth hold the species baseline until the growth
	// profile has been derived.
	GrowthRate float64 `yaml:"growth_rate"`
	HPGrowth   float64 `yaml:"hp_growth"`
}

// WithGrowth returns a copy of p with the derived growth fields set.
func (p Individual) WithGrowth(growthRate, hpGrowth float64) Individual {
	p.GrowthRate = growthRate
	p.HPGrowth = hpGrowth
	return p
}

func (p Individual) String() string {
	return fmt.Sprintf("%s(%s)  [stats] atk:%d def:%d spd:%d hp:%d  [growth] rate:%.2f hp:%.1f  [genes] atk:%s def:%s spd:%s hp:%s",
		p.Name, p.SpeciesID,
		p.Display.Atk, p.Display.Def, p.Display.Spd, p.Display.HP,
		p.GrowthRate, p.HPGrowth,
		FormatGene(p.Genes.Atk), FormatGene(p.Genes.Def), FormatGene(p.Genes.Spd), FormatGeneInt(p.Genes.HP))
}

// FormatGene renders a decimal gene with an explicit sign: +0.3, -0.1, 0.0.
func FormatGene(v float64) string {
	switch {
	case v > 0:
		return fmt.Sprintf("+%.1f", v)
	case v < 0:
		return fmt.Sprintf("%.1f", v)
	}
	return "0.0"
}

// FormatGeneInt renders an integer gene with an explicit sign.
func FormatGeneInt(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// RoundHalfAway rounds to the nearest integer, halves away from zero:
// 12.5 -> 13, -1.5 -> -2.
func RoundHalfAway(x float64) int {
	return int(math.Round(x))
}

// Round1 rounds to one decimal place, halves away from zero, and maps
// negative zero to zero.
func Round1(x float64) float64 {
	return FixNegZero(math.Round(x*10) / 10)
}

// FixNegZero maps values within 1e-12 of zero to +0.
func FixNegZero(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 0
	}
	return x
}

// ClampInt clamps v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Clamp clamps x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
