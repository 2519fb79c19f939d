package report

// vault.go writes a batch as a linked markdown vault.
//
// Layout:
//   index.md              batch summary linking every individual
//   individuals/<n>.md    one run note per individual
//   atk/<value>.md        one note per initial attack value, linking back
//                         to every individual that rolled it

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"petgrowth/internal/sim"
)

// VaultOptions describe how a batch was produced.
type VaultOptions struct {
	Seed     uint32
	LevelUps int
	Workers  int
	// Every is the snapshot interval used in individual notes.
	Every int
}

// WriteBatchVault writes results under dir. Existing notes are overwritten
// and the output is identical for identical input.
func WriteBatchVault(dir string, b *Batch, results []sim.Result, opts VaultOptions) error {
	width := len(fmt.Sprint(len(results)))
	names := make([]string, len(results))
	byAtk := make(map[int][]int)
	for i, r := range results {
		names[i] = fmt.Sprintf("%0*d", width, i+1)
		byAtk[r.Individual.Display.Atk] = append(byAtk[r.Individual.Display.Atk], i)
	}

	if err := writeVaultIndex(dir, b, results, names, opts); err != nil {
		return err
	}
	for i, r := range results {
		if err := writeIndividualNote(dir, names[i], i+1, r, opts); err != nil {
			return err
		}
	}
	for _, atk := range b.AtkValues() {
		if err := writeAtkNote(dir, atk, byAtk[atk], names, results); err != nil {
			return err
		}
	}
	return nil
}

func writeVaultIndex(dir string, b *Batch, results []sim.Result, names []string, opts VaultOptions) error {
	var sb strings.Builder
	sb.WriteString(tagFrontmatter("petgrowth/batch", "species/"+b.SpeciesID))
	fmt.Fprintf(&sb, "# %s (%s) batch\n\n", b.Name, b.SpeciesID)
	fmt.Fprintf(&sb, "- **Seed**: `%d`\n", opts.Seed)
	fmt.Fprintf(&sb, "- **Count**: %d\n", b.Count())
	fmt.Fprintf(&sb, "- **Level-ups**: %d\n", opts.LevelUps)
	fmt.Fprintf(&sb, "- **Workers**: %d\n\n", opts.Workers)

	sb.WriteString("## Initial attack\n\n")
	for _, atk := range b.AtkValues() {
		fmt.Fprintf(&sb, "- [[atk/%d|atk %d]]: %d\n", atk, atk, b.InitialAtk[atk])
	}

	sb.WriteString("\n## Growth per level\n\n")
	sb.WriteString("| | avg | min | max |\n|---|---:|---:|---:|\n")
	for _, row := range []struct {
		label string
		s     Summary
	}{
		{"atk", b.GrowthAtk}, {"def", b.GrowthDef}, {"spd", b.GrowthSpd},
		{"total", b.GrowthTotal}, {"hp", b.GrowthHP},
	} {
		fmt.Fprintf(&sb, "| %s | %.3f | %.3f | %.3f |\n", row.label, row.s.Avg(), row.s.Min(), row.s.Max())
	}

	sb.WriteString("\n## Individuals\n\n")
	for i, r := range results {
		d, f := r.Individual.Display, r.Final
		fmt.Fprintf(&sb, "- [[individuals/%s|#%d]] %d/%d/%d/%d -> %d/%d/%d/%d\n",
			names[i], i+1, d.Atk, d.Def, d.Spd, d.HP, f.Atk, f.Def, f.Spd, f.HP)
	}
	return WriteFile(filepath.Join(dir, "index.md"), []byte(sb.String()))
}

func writeIndividualNote(dir, name string, index int, r sim.Result, opts VaultOptions) error {
	run := NewRun(opts.Seed, r)
	meta := runMeta(run)
	meta.BatchIndex = index
	meta.Tags = append(meta.Tags, fmt.Sprintf("atk/%d", r.Individual.Display.Atk))
	sort.Strings(meta.Tags)

	body := buildRunBody(run, opts.Every)
	body += fmt.Sprintf("\nBatch: [[index]]  Initial attack: [[atk/%d]]\n", r.Individual.Display.Atk)
	data, err := writeFrontmatter(meta, body)
	if err != nil {
		return err
	}
	return WriteFile(filepath.Join(dir, "individuals", name+".md"), data)
}

func writeAtkNote(dir string, atk int, members []int, names []string, results []sim.Result) error {
	var sb strings.Builder
	sb.WriteString(tagFrontmatter("petgrowth/atk"))
	fmt.Fprintf(&sb, "# Initial attack %d\n\n", atk)
	fmt.Fprintf(&sb, "%d of %d individuals.\n\n", len(members), len(results))
	sb.WriteString("| # | Final | Growth rate |\n|---|---|---:|\n")
	for _, i := range members {
		f := results[i].Final
		fmt.Fprintf(&sb, "| [[individuals/%s|#%d]] | %d/%d/%d/%d | %.3f |\n",
			names[i], i+1, f.Atk, f.Def, f.Spd, f.HP, results[i].Derived.GrowthRate)
	}
	return WriteFile(filepath.Join(dir, "atk", fmt.Sprintf("%d.md", atk)), []byte(sb.String()))
}

// tagFrontmatter returns a frontmatter block holding only sorted tags.
func tagFrontmatter(tags ...string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	var b strings.Builder
	b.WriteString("---\ntags:\n")
	for _, t := range sorted {
		b.WriteString("  - " + t + "\n")
	}
	b.WriteString("---\n\n")
	return b.String()
}
