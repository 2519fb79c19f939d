package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/message"

	"petgrowth/internal/growth"
	"petgrowth/internal/pet"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

var (
	statHeaders   = []string{"Lv", "Atk", "Def", "Spd", "HP", "AtkG", "DefG", "SpdG", "TotG", "HPG"}
	stepHeaders   = append(append([]string{}, statHeaders...), "Gain")
	summaryHeader = []string{"", "avg", "min", "max"}
)

// Step is one level of an interactive session: the snapshot after the
// level-up and the increments that produced it.
type Step struct {
	Snapshot
	Delta pet.LevelUpDelta
}

// WriteIndividual writes the individual, the seed it came from and its
// derived growth profile.
func WriteIndividual(w io.Writer, p *message.Printer, seed uint32, ind pet.Individual, d growth.DerivedGrowth) error {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s (%s)", ind.Name, ind.SpeciesID)),
		p.Sprintf("Seed: %s", strconv.FormatUint(uint64(seed), 10)),
		ind.String(),
		titleStyle.Render(p.Sprintf("Growth profile")),
		"  " + p.Sprintf("q=%.3f  growth rate=%.3f  hp growth=%.3f", d.Q, d.GrowthRate, d.HPGrowth),
		"  " + p.Sprintf("mean gain  atk=%.3f  def=%.3f  spd=%.3f  hp=%.3f", d.AtkMean, d.DefMean, d.SpdMean, d.HPMean),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshotTable renders snapshots as a text table.
func WriteSnapshotTable(w io.Writer, p *message.Printer, snaps []Snapshot) error {
	t := newTable(p, statHeaders)
	for _, s := range snaps {
		t.Row(snapshotCells(p, s)...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteStepTable renders step rows, including each level's increments.
func WriteStepTable(w io.Writer, p *message.Printer, steps []Step) error {
	t := newTable(p, stepHeaders)
	for _, s := range steps {
		t.Row(append(snapshotCells(p, s.Snapshot), FormatDelta(s.Delta))...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// FormatDelta renders increments as "+a/+d/+s/+h".
func FormatDelta(d pet.LevelUpDelta) string {
	return fmt.Sprintf("%+d/%+d/%+d/%+d", d.Atk, d.Def, d.Spd, d.HP)
}

func snapshotCells(p *message.Printer, s Snapshot) []string {
	return []string{
		strconv.Itoa(s.Level),
		strconv.Itoa(s.Stats.Atk),
		strconv.Itoa(s.Stats.Def),
		strconv.Itoa(s.Stats.Spd),
		strconv.Itoa(s.Stats.HP),
		p.Sprintf("%.2f", s.Metrics.Atk),
		p.Sprintf("%.2f", s.Metrics.Def),
		p.Sprintf("%.2f", s.Metrics.Spd),
		p.Sprintf("%.2f", s.Metrics.Total),
		p.Sprintf("%.2f", s.Metrics.HP),
	}
}

func newTable(p *message.Printer, headers []string) *table.Table {
	hs := make([]string, len(headers))
	for i, h := range headers {
		if h != "" {
			hs[i] = p.Sprintf(h)
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(hs...)
}
