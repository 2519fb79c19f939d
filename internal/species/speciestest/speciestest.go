// Package speciestest provides species fixtures for tests.
package speciestest

import (
	_ "embed"
	"fmt"

	"golang.org/x/tools/txtar"

	"petgrowth/internal/species"
)

//go:embed species.txtar
var pack []byte

// Archive returns a fresh parse of the fixture pack.
func Archive() *txtar.Archive {
	return txtar.Parse(pack)
}

// Load returns the fixture species with the given petId. It panics if the
// fixture is missing or invalid; fixtures are part of the source tree.
func Load(id string) *species.Config {
	cfgs, err := species.DecodePack(Archive())
	if err != nil {
		panic(fmt.Sprintf("speciestest: %v", err))
	}
	cfg, ok := cfgs[id]
	if !ok {
		panic(fmt.Sprintf("speciestest: no fixture %q", id))
	}
	return cfg
}

// Mogaros returns the gated, capped, penalty-enabled fixture.
func Mogaros() *species.Config { return Load("mogaros") }

// Plain returns a fixture with no gating, caps, redistribution or HP coupling.
func Plain() *species.Config { return Load("plain") }

// Orgon returns the fixture decoded from JSON.
func Orgon() *species.Config { return Load("orgon") }
