package pet_test

import (
	"math"
	"strings"
	"testing"

	"petgrowth/internal/pet"
)

// TestRoundHalfAway verifies halves round away from zero.
func TestRoundHalfAway(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{12.5, 13},
		{7.3, 7},
		{12.49, 12},
		{12.7, 13},
		{-1.5, -2},
		{-1.4, -1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := pet.RoundHalfAway(tt.in); got != tt.want {
			t.Errorf("RoundHalfAway(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestRound1 verifies one-decimal rounding and negative zero.
func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.25, 0.3},
		{-0.25, -0.3},
		{0.3000000000000001, 0.3},
		{-0.04, 0},
		{0.6666, 0.7},
	}
	for _, tt := range tests {
		got := pet.Round1(tt.in)
		if got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got == 0 && math.Signbit(got) {
			t.Errorf("Round1(%v) returned negative zero", tt.in)
		}
	}
}

// TestWithGrowthCopies verifies WithGrowth leaves the original unchanged.
func TestWithGrowthCopies(t *testing.T) {
	base := pet.Individual{SpeciesID: "x", GrowthRate: 5, HPGrowth: 9.6}
	grown := base.WithGrowth(5.2, 9.8)
	if base.GrowthRate != 5 || base.HPGrowth != 9.6 {
		t.Errorf("original mutated: %+v", base)
	}
	if grown.GrowthRate != 5.2 || grown.HPGrowth != 9.8 || grown.SpeciesID != "x" {
		t.Errorf("WithGrowth = %+v", grown)
	}
}

// TestStatsArithmetic verifies Stats Add and Sub.
func TestStatsArithmetic(t *testing.T) {
	a := pet.Stats{Atk: 1, Def: 2, Spd: 3, HP: 4}
	b := pet.Stats{Atk: 10, Def: 20, Spd: 30, HP: 40}
	if got := a.Add(b); got != (pet.Stats{Atk: 11, Def: 22, Spd: 33, HP: 44}) {
		t.Errorf("Add = %+v", got)
	}
	if got := b.Sub(a); got != (pet.Stats{Atk: 9, Def: 18, Spd: 27, HP: 36}) {
		t.Errorf("Sub = %+v", got)
	}
}

// TestIndividualString verifies the one-line individual summary.
func TestIndividualString(t *testing.T) {
	p := pet.Individual{
		SpeciesID: "mogaros",
		Name:      "Mogaros",
		Display:   pet.Stats{Atk: 13, Def: 10, Spd: 11, HP: 41},
		Genes:     pet.Genes{Atk: 0.3, Def: -0.1, Spd: 0, HP: 1},
	}
	s := p.String()
	for _, want := range []string{"Mogaros(mogaros)", "atk:13", "atk:+0.3", "def:-0.1", "spd:0.0", "hp:+1"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
