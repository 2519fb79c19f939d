package species

// Species data directory layout:
//
//	<dir>/
//	    <petId>.yaml    # one species per file (.yml and .json are accepted too)
//	    *.txtar         # optional packs holding several species files

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a species id has no file in the repository.
var ErrNotFound = errors.New("species not found")

var extensions = []string{".yaml", ".yml", ".json"}

// Repository is a directory of species files.
type Repository struct {
	Dir string
	// Skip, if set, hides files whose name it matches.
	Skip func(name string) bool
}

// Open opens an existing species directory.
func Open(dir string) (*Repository, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("species dir %q not found: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("species dir %q is not a directory", dir)
	}
	return &Repository{Dir: dir}, nil
}

// normalizeID lowercases and trims a species id.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func (r *Repository) skipped(name string) bool {
	return r.Skip != nil && r.Skip(name)
}

// path returns the first existing file for id.
func (r *Repository) path(id string) (string, bool) {
	for _, ext := range extensions {
		name := id + ext
		if r.skipped(name) {
			continue
		}
		p := filepath.Join(r.Dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// packs returns the txtar packs in the directory, sorted by name.
func (r *Repository) packs() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("read species dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txtar") || r.skipped(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(r.Dir, e.Name()))
	}
	return out, nil
}

// List returns the ids of every species file and pack member, sorted.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("read species dir: %w", err)
	}
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range entries {
		if e.IsDir() || r.skipped(e.Name()) {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !isSpeciesExt(ext) {
			continue
		}
		add(normalizeID(strings.TrimSuffix(e.Name(), ext)))
	}

	packs, err := r.packs()
	if err != nil {
		return nil, err
	}
	for _, p := range packs {
		cfgs, err := LoadPack(p)
		if err != nil {
			return nil, err
		}
		for id := range cfgs {
			add(id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isSpeciesExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Load reads, decodes and validates the species with the given id. A
// species file takes precedence over pack members with the same petId.
func (r *Repository) Load(id string) (*Config, error) {
	id = normalizeID(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if p, ok := r.path(id); ok {
		return LoadFile(p)
	}

	packs, err := r.packs()
	if err != nil {
		return nil, err
	}
	for _, p := range packs {
		cfgs, err := LoadPack(p)
		if err != nil {
			return nil, err
		}
		if cfg, ok := cfgs[id]; ok {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, id, r.Dir)
}

// LoadFile reads, decodes and validates a single species file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species %s: %w", path, err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a species document (YAML or JSON) on top of Defaults and
// validates the result.
func Decode(data []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse species: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPack reads a txtar archive in which every species file is one member.
// Members with other extensions are ignored. Configs are keyed by petId.
func LoadPack(path string) (map[string]*Config, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack %s: %w", path, err)
	}
	return DecodePack(ar)
}

// DecodePack decodes the species members of a parsed txtar archive.
func DecodePack(ar *txtar.Archive) (map[string]*Config, error) {
	out := make(map[string]*Config)
	for _, f := range ar.Files {
		if !isSpeciesExt(filepath.Ext(f.Name)) {
			continue
		}
		cfg, err := Decode(f.Data)
		if err != nil {
			return nil, fmt.Errorf("pack member %s: %w", f.Name, err)
		}
		id := normalizeID(cfg.PetID)
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("pack member %s: duplicate petId %q", f.Name, cfg.PetID)
		}
		out[id] = cfg
	}
	return out, nil
}
