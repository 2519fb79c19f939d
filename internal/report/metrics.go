// Package report turns simulation output into snapshots, aggregates and
// rendered documents (text tables, YAML, markdown with frontmatter).
package report

import "petgrowth/internal/pet"

// Metrics are the observed per-level growth of each stat:
// (current - initial) / level-ups done. Total is Atk+Def+Spd.
type Metrics struct {
	Atk   float64 `yaml:"atk"`
	Def   float64 `yaml:"def"`
	Spd   float64 `yaml:"spd"`
	Total float64 `yaml:"total"`
	HP    float64 `yaml:"hp"`
}

// GrowthMetrics computes Metrics after levelUps level-ups. With no
// level-ups done every metric is zero.
func GrowthMetrics(initial, current pet.Stats, levelUps int) Metrics {
	if levelUps <= 0 {
		return Metrics{}
	}
	n := float64(levelUps)
	d := current.Sub(initial)
	m := Metrics{
		Atk: float64(d.Atk) / n,
		Def: float64(d.Def) / n,
		Spd: float64(d.Spd) / n,
		HP:  float64(d.HP) / n,
	}
	m.Total = m.Atk + m.Def + m.Spd
	return m
}

// Snapshot is the state of an individual at one level. Individuals start
// at level 1, so Level is always LevelUps+1.
type Snapshot struct {
	Level    int       `yaml:"level"`
	LevelUps int       `yaml:"level_ups"`
	Stats    pet.Stats `yaml:"stats"`
	Metrics  Metrics   `yaml:"growth"`
}

// Snapshots replays deltas on top of base and returns a snapshot after
// every `every` level-ups. every < 1 is treated as 1.
func Snapshots(base pet.Stats, deltas []pet.LevelUpDelta, every int) []Snapshot {
	if every < 1 {
		every = 1
	}
	out := make([]Snapshot, 0, len(deltas)/every)
	cur := base
	for i, d := range deltas {
		cur = cur.Add(d)
		done := i + 1
		if done%every != 0 {
			continue
		}
		out = append(out, Snapshot{
			Level:    done + 1,
			LevelUps: done,
			Stats:    cur,
			Metrics:  GrowthMetrics(base, cur, done),
		})
	}
	return out
}
