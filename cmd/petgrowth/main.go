package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"petgrowth/internal/report"
	"petgrowth/internal/rng"
	"petgrowth/internal/settings"
	"petgrowth/internal/sim"
	"petgrowth/internal/species"
	"petgrowth/internal/stepper"
)

// errUsage is returned by a command given the wrong arguments; dispatch
// replaces it with the command's usage line.
var errUsage = errors.New("wrong arguments")

// errReplayMismatch is returned when a replayed run differs from its report.
var errReplayMismatch = errors.New("replay does not match report")

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(ctx context.Context, out io.Writer, args []string) error
}

var commands = []command{
	{
		name:  "list",
		short: "List the species in the species directory",
		usage: "petgrowth list",
		long: `List every species id found in the species directory, with its display
name. Species files that fail validation are listed with the reason.
`,
		run: runList,
	},
	{
		name:  "validate",
		short: "Check species configurations",
		usage: "petgrowth validate [<id>...]",
		long: `Load and validate the named species (all species when no id is given).
Every problem in a configuration is reported, not just the first.
`,
		run: runValidate,
	},
	{
		name:  "spawn",
		short: "Generate one individual and its growth profile",
		usage: "petgrowth spawn [-seed N] [-lang en|ko] [-format text|yaml] <id>",
		long: `Generate one individual of the species and print its stats, genes and
derived growth profile. The seed is always printed so the individual can
be generated again.
`,
		run: runSpawn,
	},
	{
		name:  "run",
		short: "Grow one individual and print snapshots",
		usage: "petgrowth run [-seed N] [-levels N] [-every N] [-format text|yaml|markdown] [-o path] <id>",
		long: `Generate one individual, level it up -levels times and print a snapshot
every -every levels with the observed growth per level.

  -format yaml      the full run, including every level-up
  -format markdown  YAML frontmatter followed by the snapshot table
  -o path           write to a file instead of stdout
`,
		run: runRun,
	},
	{
		name:  "replay",
		short: "Re-run a markdown run report and check it",
		usage: "petgrowth replay [-every N] [-lang en|ko] <report.md>",
		long: `Read the frontmatter of a report written by 'run -format markdown', run
the same species with the same seed and level-ups, and check that the genes
and final stats match. A mismatch means the species file or the report has
changed since the report was written.
`,
		run: runReplay,
	},
	{
		name:  "step",
		short: "Level up one individual interactively",
		usage: "petgrowth step [-seed N] [-lang en|ko] <id>",
		long: `Open an interactive session for one individual.

  enter   level up once
  <n>     level up n times (at most 5000)
  r       re-roll the individual
  q       quit
`,
		run: runStep,
	},
	{
		name:  "batch",
		short: "Grow many individuals and summarize them",
		usage: "petgrowth batch [-seed N] [-count N] [-levels N] [-workers N] [-lang en|ko] [-vault dir] <id>",
		long: `Generate -count individuals, level each up -levels times and print the
initial attack distribution, final stat ranges and growth per level.

With -workers 1 every individual is drawn from one random stream. With
more workers each individual gets its own stream derived from the seed,
so results do not depend on scheduling but differ from a -workers 1 run.

  -vault dir  also write index.md, one note per individual and one note
              per initial attack value, cross-linked with [[wiki links]]
`,
		run: runBatch,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "petgrowth - creature stat generation and growth simulator\n\n")
	fmt.Fprintf(w, "Usage:\n  petgrowth <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'petgrowth help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "petgrowth: unknown command %q\n\nRun 'petgrowth help' for usage.\n", name)
}

func dispatch(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(out)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(out, args[1])
		} else {
			printUsage(out)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			err := cmd.run(ctx, out, args[1:])
			if errors.Is(err, errUsage) {
				return fmt.Errorf("usage: %s", cmd.usage)
			}
			return err
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'petgrowth help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// shared setup
// ---------------------------------------------------------------------------

// loadSettings reads settings relative to the working directory.
func loadSettings() (settings.Settings, error) {
	root, err := os.Getwd()
	if err != nil {
		return settings.Settings{}, err
	}
	return settings.Load(root)
}

func openRepo(s settings.Settings) (*species.Repository, error) {
	repo, err := species.Open(s.SpeciesDir)
	if err != nil {
		return nil, err
	}
	repo.Skip = s.IsIgnored
	return repo, nil
}

// options are the flags shared by the commands that simulate.
type options struct {
	seed    string
	lang    string
	verbose bool
}

func newFlagSet(name string, s settings.Settings) (*flag.FlagSet, *options) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.seed, "seed", "", "random seed (default: settings seed, else a fresh one)")
	fs.StringVar(&o.lang, "lang", s.Lang, "report language: en|ko")
	fs.BoolVar(&o.verbose, "v", false, "log diagnostics to stderr")
	return fs, o
}

// resolveSeed picks the -seed flag, then the settings seed, then a fresh
// random one.
func (o *options) resolveSeed(s settings.Settings) (uint32, error) {
	if o.seed != "" {
		v, err := strconv.ParseUint(o.seed, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid -seed %q: %w", o.seed, err)
		}
		return uint32(v), nil
	}
	if s.Seed != nil {
		return *s.Seed, nil
	}
	return rng.NewSeed()
}

func (o *options) logf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

// setup parses flags, requires exactly one species id and loads it.
func setup(fs *flag.FlagSet, o *options, s settings.Settings, args []string) (*species.Config, uint32, error) {
	if err := fs.Parse(args); err != nil {
		return nil, 0, err
	}
	if fs.NArg() != 1 {
		return nil, 0, errUsage
	}
	repo, err := openRepo(s)
	if err != nil {
		return nil, 0, err
	}
	cfg, err := repo.Load(fs.Arg(0))
	if err != nil {
		return nil, 0, err
	}
	o.logf("loaded species %s (%s) from %s", cfg.PetID, cfg.Name, repo.Dir)
	seed, err := o.resolveSeed(s)
	if err != nil {
		return nil, 0, err
	}
	o.logf("seed %d", seed)
	return cfg, seed, nil
}

// ---------------------------------------------------------------------------
// list / validate
// ---------------------------------------------------------------------------

func runList(ctx context.Context, out io.Writer, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	repo, err := openRepo(s)
	if err != nil {
		return err
	}
	ids, err := repo.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(out, "no species in %s\n", repo.Dir)
		return nil
	}
	for _, id := range ids {
		cfg, err := repo.Load(id)
		if err != nil {
			fmt.Fprintf(out, "%-16s (invalid: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(out, "%-16s %s\n", id, cfg.Name)
	}
	return nil
}

func runValidate(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	repo, err := openRepo(s)
	if err != nil {
		return err
	}
	ids := args
	if len(ids) == 0 {
		if ids, err = repo.List(); err != nil {
			return err
		}
	}
	var errs []error
	for _, id := range ids {
		if _, err := repo.Load(id); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "ok  %s\n", strings.ToLower(strings.TrimSpace(id)))
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// spawn / run
// ---------------------------------------------------------------------------

func runSpawn(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	fs, o := newFlagSet("spawn", s)
	format := fs.String("format", "text", "output format: text|yaml")
	cfg, seed, err := setup(fs, o, s, args)
	if err != nil {
		return err
	}

	ind, d := sim.Spawn(cfg, rng.New(seed))
	switch *format {
	case "text":
		return report.WriteIndividual(out, report.Printer(o.lang), seed, ind, d)
	case "yaml":
		return report.WriteRunYAML(out, report.NewRun(seed, sim.Result{
			Individual: ind,
			Derived:    d,
			Final:      ind.Display,
		}))
	default:
		return fmt.Errorf("unknown -format %q (want text or yaml)", *format)
	}
}

func runRun(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	fs, o := newFlagSet("run", s)
	levels := fs.Int("levels", s.LevelUps, "number of level-ups")
	every := fs.Int("every", s.SnapshotEvery, "snapshot interval in level-ups")
	format := fs.String("format", "text", "output format: text|yaml|markdown")
	outPath := fs.String("o", "", "write output to this file")
	cfg, seed, err := setup(fs, o, s, args)
	if err != nil {
		return err
	}
	if *every < 1 {
		return fmt.Errorf("-every must be at least 1 (got %d)", *every)
	}

	src := rng.New(seed)
	ind, _ := sim.Spawn(cfg, src)
	res, err := sim.SimulateLevels(cfg, ind, src, *levels)
	if err != nil {
		return err
	}
	o.logf("simulated %d level-ups with %d draws", len(res.Deltas), src.Draws())

	var buf strings.Builder
	run := report.NewRun(seed, res)
	switch *format {
	case "text":
		p := report.Printer(o.lang)
		if err := report.WriteIndividual(&buf, p, seed, res.Individual, res.Derived); err != nil {
			return err
		}
		buf.WriteString("\n")
		err = report.WriteSnapshotTable(&buf, p, report.Snapshots(res.Individual.Display, res.Deltas, *every))
	case "yaml":
		err = report.WriteRunYAML(&buf, run)
	case "markdown":
		err = report.WriteRunMarkdown(&buf, run, *every)
	default:
		return fmt.Errorf("unknown -format %q (want text, yaml or markdown)", *format)
	}
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := report.WriteFile(*outPath, []byte(buf.String())); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (seed %d)\n", *outPath, seed)
		return nil
	}
	_, err = io.WriteString(out, buf.String())
	return err
}

func runReplay(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	fs, o := newFlagSet("replay", s)
	every := fs.Int("every", s.SnapshotEvery, "snapshot interval in level-ups")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	meta, _, err := report.ParseRunMarkdown(data)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	repo, err := openRepo(s)
	if err != nil {
		return err
	}
	cfg, err := repo.Load(meta.SpeciesID)
	if err != nil {
		return err
	}
	o.logf("replaying %s seed %d for %d level-ups", cfg.PetID, meta.Seed, meta.LevelUps)

	src := rng.New(meta.Seed)
	ind, _ := sim.Spawn(cfg, src)
	res, err := sim.SimulateLevels(cfg, ind, src, meta.LevelUps)
	if err != nil {
		return err
	}
	if res.Individual.Genes != meta.Genes || res.Final != meta.Final {
		return fmt.Errorf("%w: genes %+v final %+v, report has genes %+v final %+v",
			errReplayMismatch, res.Individual.Genes, res.Final, meta.Genes, meta.Final)
	}

	p := report.Printer(o.lang)
	if err := report.WriteIndividual(out, p, meta.Seed, res.Individual, res.Derived); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.WriteSnapshotTable(out, p, report.Snapshots(res.Individual.Display, res.Deltas, *every)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "reproduced %s after %d level-ups\n", fs.Arg(0), meta.LevelUps)
	return err
}

// ---------------------------------------------------------------------------
// step
// ---------------------------------------------------------------------------

func runStep(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	fs, o := newFlagSet("step", s)
	cfg, seed, err := setup(fs, o, s, args)
	if err != nil {
		return err
	}
	session, err := stepper.New(cfg, rng.New(seed))
	if err != nil {
		return err
	}
	return runStepUI(ctx, newStepModel(session, report.Printer(o.lang), seed))
}

// ---------------------------------------------------------------------------
// batch
// ---------------------------------------------------------------------------

func runBatch(ctx context.Context, out io.Writer, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	fs, o := newFlagSet("batch", s)
	count := fs.Int("count", s.BatchCount, "number of individuals")
	levels := fs.Int("levels", s.LevelUps, "level-ups per individual")
	workers := fs.Int("workers", s.Workers, "parallel workers (1 = single random stream)")
	vault := fs.String("vault", "", "also write a linked markdown vault to this directory")
	every := fs.Int("every", s.SnapshotEvery, "snapshot interval in vault notes")
	cfg, seed, err := setup(fs, o, s, args)
	if err != nil {
		return err
	}
	o.logf("batch of %d with %d workers", *count, *workers)

	results, err := sim.RunBatch(ctx, cfg, sim.BatchOptions{
		Count:    *count,
		LevelUps: *levels,
		Seed:     seed,
		Workers:  *workers,
	})
	if err != nil {
		return err
	}
	b := report.Aggregate(cfg.PetID, cfg.Name, *levels, results)
	p := report.Printer(o.lang)
	if err := report.WriteBatch(out, p, b); err != nil {
		return err
	}
	if *vault != "" {
		err := report.WriteBatchVault(*vault, b, results, report.VaultOptions{
			Seed:     seed,
			LevelUps: *levels,
			Workers:  *workers,
			Every:    *every,
		})
		if err != nil {
			return err
		}
		o.logf("wrote vault to %s", *vault)
	}
	_, err = fmt.Fprintln(out, p.Sprintf("Seed: %s", strconv.FormatUint(uint64(seed), 10)))
	return err
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("petgrowth: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dispatch(ctx, os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}
