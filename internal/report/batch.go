package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/message"

	"petgrowth/internal/sim"
)

// Summary tracks the count, mean and range of a series of values.
type Summary struct {
	n        int
	sum      float64
	min, max float64
}

// Add records v.
func (s *Summary) Add(v float64) {
	if s.n == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.n++
	s.sum += v
}

func (s Summary) N() int { return s.n }

// Avg returns the mean, or 0 for an empty summary.
func (s Summary) Avg() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

func (s Summary) Min() float64 { return s.min }
func (s Summary) Max() float64 { return s.max }

// Batch aggregates the results of many simulated individuals of one
// species, all grown for the same number of level-ups.
type Batch struct {
	SpeciesID string
	Name      string
	LevelUps  int

	// InitialAtk counts individuals by displayed starting attack.
	InitialAtk map[int]int

	FinalAtk, FinalDef, FinalSpd, FinalHP Summary

	GrowthAtk, GrowthDef, GrowthSpd, GrowthTotal, GrowthHP Summary
}

// NewBatch returns an empty aggregate.
func NewBatch(speciesID, name string, levelUps int) *Batch {
	return &Batch{
		SpeciesID:  speciesID,
		Name:       name,
		LevelUps:   levelUps,
		InitialAtk: make(map[int]int),
	}
}

// Aggregate folds results into a new Batch.
func Aggregate(speciesID, name string, levelUps int, results []sim.Result) *Batch {
	b := NewBatch(speciesID, name, levelUps)
	for _, r := range results {
		b.Add(r)
	}
	return b
}

// Count returns the number of individuals added.
func (b *Batch) Count() int { return b.FinalAtk.N() }

// Add records one result.
func (b *Batch) Add(r sim.Result) {
	initial := r.Individual.Display
	b.InitialAtk[initial.Atk]++

	b.FinalAtk.Add(float64(r.Final.Atk))
	b.FinalDef.Add(float64(r.Final.Def))
	b.FinalSpd.Add(float64(r.Final.Spd))
	b.FinalHP.Add(float64(r.Final.HP))

	m := GrowthMetrics(initial, r.Final, len(r.Deltas))
	b.GrowthAtk.Add(m.Atk)
	b.GrowthDef.Add(m.Def)
	b.GrowthSpd.Add(m.Spd)
	b.GrowthTotal.Add(m.Total)
	b.GrowthHP.Add(m.HP)
}

// AtkValues returns the distinct initial attack values in ascending order.
func (b *Batch) AtkValues() []int {
	vals := make([]int, 0, len(b.InitialAtk))
	for v := range b.InitialAtk {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	return vals
}

// WriteBatch renders the aggregate as text.
func WriteBatch(w io.Writer, p *message.Printer, b *Batch) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(
		p.Sprintf("Batch: %s (%s)  count=%d  level-ups=%d", b.Name, b.SpeciesID, b.Count(), b.LevelUps))); err != nil {
		return err
	}

	hist := newTable(p, []string{"Atk", "count"})
	for _, v := range b.AtkValues() {
		hist.Row(strconv.Itoa(v), p.Sprintf("%d", b.InitialAtk[v]))
	}
	final := newTable(p, summaryHeader)
	for _, s := range []struct {
		label string
		sum   Summary
	}{
		{"Atk", b.FinalAtk}, {"Def", b.FinalDef}, {"Spd", b.FinalSpd}, {"HP", b.FinalHP},
	} {
		final.Row(summaryRow(p, s.label, s.sum, "%.0f")...)
	}
	grown := newTable(p, summaryHeader)
	for _, s := range []struct {
		label string
		sum   Summary
	}{
		{"AtkG", b.GrowthAtk}, {"DefG", b.GrowthDef}, {"SpdG", b.GrowthSpd}, {"TotG", b.GrowthTotal}, {"HPG", b.GrowthHP},
	} {
		grown.Row(summaryRow(p, s.label, s.sum, "%.2f")...)
	}

	for _, sec := range []struct {
		title string
		t     *table.Table
	}{
		{p.Sprintf("Initial displayed attack"), hist},
		{p.Sprintf("Final stats"), final},
		{p.Sprintf("Growth at level %d", b.LevelUps+1), grown},
	} {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render(sec.title), sec.t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func summaryRow(p *message.Printer, label string, s Summary, rangeFormat string) []string {
	return []string{
		p.Sprintf(label),
		p.Sprintf("%.2f", s.Avg()),
		p.Sprintf(rangeFormat, s.Min()),
		p.Sprintf(rangeFormat, s.Max()),
	}
}
