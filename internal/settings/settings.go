// Package settings loads petgrowth CLI settings.
//
// Values are layered: code defaults, then <root>/.petgrowth/settings.yaml,
// then PETGROWTH_* environment variables. Command-line flags are applied
// last by the CLI itself.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps settings that fail validation.
var ErrInvalid = errors.New("invalid settings")

// Settings holds CLI defaults.
type Settings struct {
	// SpeciesDir holds species files. A relative path is resolved against
	// the root passed to Load.
	SpeciesDir string `yaml:"species_dir" env:"PETGROWTH_SPECIES_DIR"`
	// Ignore lists glob patterns ("draft-*.yaml") of species file names
	// the repository skips.
	Ignore []string `yaml:"ignore" env:"PETGROWTH_IGNORE" envSeparator:","`
	// Seed fixes the random seed. Nil means a fresh seed per run.
	Seed          *uint32 `yaml:"seed" env:"PETGROWTH_SEED"`
	LevelUps      int     `yaml:"level_ups" env:"PETGROWTH_LEVEL_UPS"`
	SnapshotEvery int     `yaml:"snapshot_every" env:"PETGROWTH_SNAPSHOT_EVERY"`
	BatchCount    int     `yaml:"batch_count" env:"PETGROWTH_BATCH_COUNT"`
	Workers       int     `yaml:"workers" env:"PETGROWTH_WORKERS"`
	// Lang selects the report language ("en" or "ko").
	Lang string `yaml:"lang" env:"PETGROWTH_LANG"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		SpeciesDir:    filepath.Join("data", "species"),
		LevelUps:      120,
		SnapshotEvery: 10,
		BatchCount:    1000,
		Workers:       1,
		Lang:          "en",
	}
}

// Path returns the settings file location for root.
func Path(root string) string {
	return filepath.Join(root, ".petgrowth", "settings.yaml")
}

// Load returns the defaults overlaid with the settings file under root (a
// missing file is not an error) and then the environment.
func Load(root string) (Settings, error) {
	s := Defaults()

	path := Path(root)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Settings{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}

	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}

	if s.SpeciesDir != "" && !filepath.IsAbs(s.SpeciesDir) {
		s.SpeciesDir = filepath.Join(root, s.SpeciesDir)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every out-of-range value.
func (s Settings) Validate() error {
	var errs []error
	if s.SpeciesDir == "" {
		errs = append(errs, errors.New("species_dir is required"))
	}
	if s.LevelUps < 0 {
		errs = append(errs, fmt.Errorf("level_ups must not be negative (got %d)", s.LevelUps))
	}
	if s.SnapshotEvery < 1 {
		errs = append(errs, fmt.Errorf("snapshot_every must be at least 1 (got %d)", s.SnapshotEvery))
	}
	if s.BatchCount < 0 {
		errs = append(errs, fmt.Errorf("batch_count must not be negative (got %d)", s.BatchCount))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative (got %d)", s.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// IsIgnored reports whether name (a species file name, forward-slash,
// relative to the species dir) matches any ignore pattern.
func (s Settings) IsIgnored(name string) bool {
	for _, p := range s.Ignore {
		if matchPattern(strings.TrimPrefix(strings.TrimSpace(p), "./"), name) {
			return true
		}
	}
	return false
}

// matchPattern reports whether path matches pattern.
//
// "prefix/**" matches the prefix itself and every path beneath it. All
// other patterns use filepath.Match semantics (single * does not cross /).
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}
