package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"petgrowth/internal/growth"
	"petgrowth/internal/pet"
	"petgrowth/internal/sim"
)

// Run is the exported form of one simulated individual. Together with the
// species config, Seed and LevelUps are enough to reproduce it.
type Run struct {
	SpeciesID  string               `yaml:"species_id"`
	Name       string               `yaml:"name"`
	Seed       uint32               `yaml:"seed"`
	LevelUps   int                  `yaml:"level_ups"`
	Individual pet.Individual       `yaml:"individual"`
	Derived    growth.DerivedGrowth `yaml:"derived"`
	Final      pet.Stats            `yaml:"final"`
	Deltas     []pet.LevelUpDelta   `yaml:"deltas"`
}

// NewRun wraps a simulation result for export.
func NewRun(seed uint32, res sim.Result) Run {
	return Run{
		SpeciesID:  res.Individual.SpeciesID,
		Name:       res.Individual.Name,
		Seed:       seed,
		LevelUps:   len(res.Deltas),
		Individual: res.Individual,
		Derived:    res.Derived,
		Final:      res.Final,
		Deltas:     res.Deltas,
	}
}

// RunMeta is the frontmatter of a markdown run report.
type RunMeta struct {
	SpeciesID  string    `yaml:"species_id"`
	Name       string    `yaml:"name"`
	Seed       uint32    `yaml:"seed"`
	LevelUps   int       `yaml:"level_ups"`
	Q          float64   `yaml:"q"`
	GrowthRate float64   `yaml:"growth_rate"`
	HPGrowth   float64   `yaml:"hp_growth"`
	Genes      pet.Genes `yaml:"genes"`
	Initial    pet.Stats `yaml:"initial"`
	Final      pet.Stats `yaml:"final"`
	// BatchIndex is the 1-based position of the run in a batch vault.
	BatchIndex int      `yaml:"batch_index,omitempty"`
	Tags       []string `yaml:"tags"`
}

// WriteRunYAML writes run as a YAML document.
func WriteRunYAML(w io.Writer, run Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("report: encode run: %w", err)
	}
	return enc.Close()
}

// WriteRunMarkdown writes run as markdown: YAML frontmatter followed by a
// snapshot table taken every `every` level-ups.
func WriteRunMarkdown(w io.Writer, run Run, every int) error {
	data, err := writeFrontmatter(runMeta(run), buildRunBody(run, every))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func runMeta(run Run) RunMeta {
	return RunMeta{
		SpeciesID:  run.SpeciesID,
		Name:       run.Name,
		Seed:       run.Seed,
		LevelUps:   run.LevelUps,
		Q:          run.Derived.Q,
		GrowthRate: run.Derived.GrowthRate,
		HPGrowth:   run.Derived.HPGrowth,
		Genes:      run.Individual.Genes,
		Initial:    run.Individual.Display,
		Final:      run.Final,
		Tags:       []string{"petgrowth/run", "species/" + run.SpeciesID},
	}
}

func buildRunBody(run Run, every int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", run.Name, run.SpeciesID)
	fmt.Fprintf(&b, "- **Seed**: `%d`\n", run.Seed)
	fmt.Fprintf(&b, "- **Genes**: atk %s, def %s, spd %s, hp %s\n",
		pet.FormatGene(run.Individual.Genes.Atk), pet.FormatGene(run.Individual.Genes.Def),
		pet.FormatGene(run.Individual.Genes.Spd), pet.FormatGeneInt(run.Individual.Genes.HP))
	d := run.Derived
	fmt.Fprintf(&b, "- **Growth**: q %.3f, rate %.3f, hp %.3f\n", d.Q, d.GrowthRate, d.HPGrowth)
	fmt.Fprintf(&b, "- **Mean gain**: atk %.3f, def %.3f, spd %.3f, hp %.3f\n\n", d.AtkMean, d.DefMean, d.SpdMean, d.HPMean)

	b.WriteString("## Snapshots\n\n")
	snaps := Snapshots(run.Individual.Display, run.Deltas, every)
	if len(snaps) == 0 {
		b.WriteString("_No level-ups._\n")
		return b.String()
	}
	b.WriteString("| Lv | Atk | Def | Spd | HP | AtkG | DefG | SpdG | TotG | HPG |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range snaps {
		m := s.Metrics
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			s.Level, s.Stats.Atk, s.Stats.Def, s.Stats.Spd, s.Stats.HP,
			m.Atk, m.Def, m.Spd, m.Total, m.HP)
	}
	return b.String()
}

// ParseRunMarkdown reads the frontmatter of a markdown run report and
// returns it with the body.
func ParseRunMarkdown(data []byte) (RunMeta, []byte, error) {
	fm, body, err := parseFrontmatter(data)
	if err != nil {
		return RunMeta{}, nil, err
	}
	var meta RunMeta
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return RunMeta{}, nil, fmt.Errorf("frontmatter: %w", err)
	}
	return meta, body, nil
}

// parseFrontmatter splits a markdown document into its YAML frontmatter and
// body. The document must begin with "---\n" and the frontmatter ends at
// the next "---" line.
func parseFrontmatter(data []byte) (frontmatter []byte, body []byte, err error) {
	const delim = "---\n"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	fm := rest[:idx+1]
	tail := rest[idx+4:]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return fm, tail, nil
}

func writeFrontmatter(v any, body string) ([]byte, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
