// Package stepper levels one individual up interactively, a few levels at
// a time, with the option to re-roll it.
package stepper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"petgrowth/internal/growth"
	"petgrowth/internal/pet"
	"petgrowth/internal/report"
	"petgrowth/internal/rng"
	"petgrowth/internal/sim"
	"petgrowth/internal/species"
)

// MaxBurst is the most level-ups a single Advance call may perform.
const MaxBurst = 5000

var (
	ErrInvalidBurst  = errors.New("stepper: burst must be a positive number")
	ErrBurstTooLarge = fmt.Errorf("stepper: burst larger than %d", MaxBurst)
)

// Session holds the current individual and its progress. All draws come
// from the one source passed to New, so a session is reproducible from
// its seed and the sequence of commands.
type Session struct {
	cfg *species.Config
	src rng.Source
	lat sim.Lattices

	ind     pet.Individual
	derived growth.DerivedGrowth
	current pet.Stats
	done    int
}

// New validates the level-up lattices and rolls the first individual.
func New(cfg *species.Config, src rng.Source) (*Session, error) {
	lat, err := sim.BuildLattices(cfg.GrowthRules.LevelUpIncrements)
	if err != nil {
		return nil, fmt.Errorf("species %s: %w", cfg.PetID, err)
	}
	s := &Session{cfg: cfg, src: src, lat: lat}
	s.Reroll()
	return s, nil
}

// Reroll replaces the individual with a fresh one and resets progress.
func (s *Session) Reroll() {
	s.ind, s.derived = sim.Spawn(s.cfg, s.src)
	s.current = s.ind.Display
	s.done = 0
}

func (s *Session) Individual() pet.Individual    { return s.ind }
func (s *Session) Derived() growth.DerivedGrowth { return s.derived }
func (s *Session) Current() pet.Stats            { return s.current }

// Level is the current level. Individuals start at level 1.
func (s *Session) Level() int { return s.done + 1 }

// Advance performs n level-ups and returns one step per level.
func (s *Session) Advance(n int) ([]report.Step, error) {
	switch {
	case n < 1:
		return nil, ErrInvalidBurst
	case n > MaxBurst:
		return nil, ErrBurstTooLarge
	}
	steps := make([]report.Step, 0, n)
	for range n {
		delta, err := s.lat.Draw(s.src, s.derived)
		if err != nil {
			return steps, err
		}
		s.current = s.current.Add(delta)
		s.done++
		steps = append(steps, report.Step{
			Snapshot: report.Snapshot{
				Level:    s.done + 1,
				LevelUps: s.done,
				Stats:    s.current,
				Metrics:  report.GrowthMetrics(s.ind.Display, s.current, s.done),
			},
			Delta: delta,
		})
	}
	return steps, nil
}

// Action is what a line of session input asks for.
type Action int

const (
	ActionAdvance Action = iota
	ActionReroll
	ActionQuit
)

// Command is a parsed line of session input.
type Command struct {
	Action Action
	// Burst is the number of level-ups for ActionAdvance.
	Burst int
}

// ParseCommand interprets one line of input: empty advances one level, a
// number advances that many, "r" re-rolls and "q" quits (case-insensitive).
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return Command{Action: ActionAdvance, Burst: 1}, nil
	case "q":
		return Command{Action: ActionQuit}, nil
	case "r":
		return Command{Action: ActionReroll}, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidBurst, line)
	}
	if n > MaxBurst {
		return Command{}, fmt.Errorf("%w: %d", ErrBurstTooLarge, n)
	}
	return Command{Action: ActionAdvance, Burst: n}, nil
}
