package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"petgrowth/internal/report"
	"petgrowth/internal/rng"
	"petgrowth/internal/species/speciestest"
	"petgrowth/internal/stepper"
)

func helpText() string {
	var sb strings.Builder
	printUsage(&sb)
	return sb.String()
}

func longHelpText(name string) string {
	var sb strings.Builder
	printCommandHelp(&sb, name)
	return sb.String()
}

// speciesDir writes the fixture pack as loose files and points the CLI at
// them.
func speciesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range speciestest.Archive().Files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PETGROWTH_SPECIES_DIR", dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := dispatch(context.Background(), &out, args)
	return out.String(), err
}

// TestHelpContainsAllCommands verifies the help listing is derived from the commands slice.
func TestHelpContainsAllCommands(t *testing.T) {
	help := helpText()
	if !strings.Contains(help, "Usage:") || !strings.Contains(help, "petgrowth") {
		t.Errorf("help missing usage header:\n%s", help)
	}
	for _, cmd := range commands {
		if !strings.Contains(help, cmd.name) {
			t.Errorf("help output missing command %q", cmd.name)
		}
		if !strings.Contains(help, cmd.short) {
			t.Errorf("help output missing short description %q", cmd.short)
		}
	}
}

// TestLongHelpForKnownCommands verifies each command's long help includes its usage line.
func TestLongHelpForKnownCommands(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			out := longHelpText(cmd.name)
			if !strings.Contains(out, cmd.usage) {
				t.Errorf("long help for %q missing usage line %q\ngot: %s", cmd.name, cmd.usage, out)
			}
		})
	}
	if out := longHelpText("no-such-command"); !strings.Contains(out, "unknown") {
		t.Errorf("expected unknown-command message, got: %s", out)
	}
}

// TestCommandsHaveRequiredFields verifies every command is complete and unique.
func TestCommandsHaveRequiredFields(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range commands {
		if cmd.name == "" || cmd.short == "" || cmd.usage == "" || cmd.run == nil {
			t.Errorf("incomplete command %+v", cmd.name)
		}
		if seen[cmd.name] {
			t.Errorf("duplicate command %q", cmd.name)
		}
		seen[cmd.name] = true
	}
}

// TestDispatchHelp verifies that no args, -h, --help and help print usage without error.
func TestDispatchHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"-h"}, {"help"}, {"help", "run"}} {
		out, err := runCLI(t, args...)
		if err != nil {
			t.Errorf("dispatch(%q) returned error: %v", args, err)
		}
		if !strings.Contains(out, "Usage") {
			t.Errorf("dispatch(%q) printed no usage:\n%s", args, out)
		}
	}
}

// TestDispatchUnknownCommand verifies unknown commands are reported.
func TestDispatchUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "no-such-command-xyz")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v, want unknown command", err)
	}
}

// TestSubcommandBadArgsGivesUsage verifies a missing species id returns the usage line.
func TestSubcommandBadArgsGivesUsage(t *testing.T) {
	speciesDir(t)
	for _, name := range []string{"spawn", "run", "step", "batch"} {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, name)
			if err == nil {
				t.Fatalf("%s with no species id should fail", name)
			}
			if !strings.Contains(err.Error(), "usage:") {
				t.Errorf("err = %v, want usage error", err)
			}
		})
	}
}

// TestListAndIgnore verifies list output and the ignore setting.
func TestListAndIgnore(t *testing.T) {
	speciesDir(t)
	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"mogaros", "plain", "orgon"} {
		if !strings.Contains(out, id) {
			t.Errorf("list missing %q:\n%s", id, out)
		}
	}

	t.Setenv("PETGROWTH_IGNORE", "plain.*")
	out, err = runCLI(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "plain") {
		t.Errorf("ignored species listed:\n%s", out)
	}
}

// TestValidate verifies the validate command over the species directory.
func TestValidate(t *testing.T) {
	dir := speciesDir(t)
	out, err := runCLI(t, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if strings.Count(out, "ok ") != 3 {
		t.Errorf("validate output:\n%s", out)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("petId: broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "validate"); err == nil {
		t.Error("validate accepted an incomplete species")
	}
	if _, err := runCLI(t, "validate", "mogaros"); err != nil {
		t.Errorf("validate mogaros: %v", err)
	}
}

// TestSpawnPrintsSeed verifies the seed is printed and bad seeds are rejected.
func TestSpawnPrintsSeed(t *testing.T) {
	speciesDir(t)
	out, err := runCLI(t, "spawn", "-seed", "1234", "mogaros")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Seed: 1234") {
		t.Errorf("seed missing:\n%s", out)
	}
	if _, err := runCLI(t, "spawn", "-seed", "-1", "mogaros"); err == nil {
		t.Error("negative seed accepted")
	}
}

// TestRunIsReproducible verifies the same seed gives byte-identical output.
func TestRunIsReproducible(t *testing.T) {
	speciesDir(t)
	args := []string{"run", "-seed", "42", "-levels", "20", "-every", "5", "mogaros"}
	first, err := runCLI(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runCLI(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same seed gave different output:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(first, "Seed: 42") {
		t.Errorf("seed missing:\n%s", first)
	}
}

// TestRunMarkdownToFile verifies the markdown report written with -o.
func TestRunMarkdownToFile(t *testing.T) {
	speciesDir(t)
	path := filepath.Join(t.TempDir(), "runs", "mogaros.md")
	out, err := runCLI(t, "run", "-seed", "9", "-levels", "12", "-every", "4", "-format", "markdown", "-o", path, "mogaros")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output does not name the file: %s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	meta, body, err := report.ParseRunMarkdown(data)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Seed != 9 || meta.LevelUps != 12 || meta.SpeciesID != "mogaros" {
		t.Errorf("meta = %+v", meta)
	}
	if !strings.Contains(string(body), "## Snapshots") {
		t.Errorf("body missing snapshots:\n%s", body)
	}
}

// TestRunRejectsBadFlags verifies flag and species errors.
func TestRunRejectsBadFlags(t *testing.T) {
	speciesDir(t)
	for _, args := range [][]string{
		{"run", "-every", "0", "mogaros"},
		{"run", "-format", "xml", "mogaros"},
		{"run", "-levels", "-1", "mogaros"},
		{"run", "nosuch"},
	} {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("%q: expected error", args)
		}
	}
}

// TestBatchIndependentOfWorkers verifies batch output does not depend on the worker count.
func TestBatchIndependentOfWorkers(t *testing.T) {
	speciesDir(t)
	a, err := runCLI(t, "batch", "-seed", "5", "-count", "40", "-levels", "10", "-workers", "2", "plain")
	if err != nil {
		t.Fatal(err)
	}
	b, err := runCLI(t, "batch", "-seed", "5", "-count", "40", "-levels", "10", "-workers", "6", "plain")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("worker count changed batch output:\n%s\n---\n%s", a, b)
	}
	if !strings.Contains(a, "Seed: 5") {
		t.Errorf("seed missing:\n%s", a)
	}
}

// TestBatchKorean verifies -lang ko translates the report.
func TestBatchKorean(t *testing.T) {
	speciesDir(t)
	out, err := runCLI(t, "batch", "-seed", "5", "-count", "3", "-levels", "2", "-lang", "ko", "plain")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Seed: 5") {
		t.Errorf("expected translated seed line:\n%s", out)
	}
}

func newTestStepModel(t *testing.T) stepModel {
	t.Helper()
	s, err := stepper.New(speciestest.Mogaros(), rng.New(17))
	if err != nil {
		t.Fatal(err)
	}
	return newStepModel(s, report.Printer("en"), 17)
}

func enter(t *testing.T, m stepModel, line string) (stepModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sm, ok := next.(stepModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	if sm.input.Value() != "" {
		t.Errorf("input not cleared: %q", sm.input.Value())
	}
	return sm, cmd
}

// TestStepModelAdvanceAndReroll verifies bursts, row trimming and re-roll in the step UI.
func TestStepModelAdvanceAndReroll(t *testing.T) {
	m := newTestStepModel(t)

	m, _ = enter(t, m, "")
	m, _ = enter(t, m, "3")
	if len(m.rows) != 4 || m.session.Level() != 5 {
		t.Fatalf("rows = %d, level = %d", len(m.rows), m.session.Level())
	}
	cur := m.session.Current()
	want := fmt.Sprintf("Lv 5  %d/%d/%d/%d", cur.Atk, cur.Def, cur.Spd, cur.HP)
	if !strings.Contains(m.View(), want) {
		t.Errorf("view missing %q:\n%s", want, m.View())
	}
	if cur != m.rows[len(m.rows)-1].Stats {
		t.Errorf("current stats %+v differ from last row %+v", cur, m.rows[len(m.rows)-1].Stats)
	}

	m, _ = enter(t, m, "40")
	if len(m.rows) != maxRows {
		t.Errorf("rows = %d, want trimmed to %d", len(m.rows), maxRows)
	}
	if last := m.rows[len(m.rows)-1]; last.Level != 45 {
		t.Errorf("last row level = %d, want 45", last.Level)
	}

	m, _ = enter(t, m, "r")
	if m.rows != nil || m.session.Level() != 1 {
		t.Errorf("after reroll: rows = %d, level = %d", len(m.rows), m.session.Level())
	}
}

// TestStepModelErrorsAndQuit verifies error status and quitting in the step UI.
func TestStepModelErrorsAndQuit(t *testing.T) {
	m := newTestStepModel(t)

	m, cmd := enter(t, m, "abc")
	if m.status == "" || cmd != nil {
		t.Errorf("bad input: status %q, cmd %v", m.status, cmd)
	}
	m, _ = enter(t, m, "9999")
	if m.status == "" || m.session.Level() != 1 {
		t.Errorf("oversized burst: status %q, level %d", m.status, m.session.Level())
	}
	m, _ = enter(t, m, "2")
	if m.status != "" {
		t.Errorf("status not cleared: %q", m.status)
	}

	m, cmd = enter(t, m, "q")
	if !m.quit || cmd == nil {
		t.Fatal("q did not quit")
	}
	if m.View() != "" {
		t.Error("view after quit should be empty")
	}

	next, cmd := newTestStepModel(t).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.(stepModel).quit || cmd == nil {
		t.Error("ctrl+c did not quit")
	}
}

// TestBatchVault verifies -vault writes the index and individual notes.
func TestBatchVault(t *testing.T) {
	speciesDir(t)
	vault := filepath.Join(t.TempDir(), "vault")
	if _, err := runCLI(t, "batch", "-seed", "3", "-count", "4", "-levels", "5", "-vault", vault, "mogaros"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"index.md", filepath.Join("individuals", "1.md"), filepath.Join("individuals", "4.md")} {
		if _, err := os.Stat(filepath.Join(vault, name)); err != nil {
			t.Errorf("vault missing %s: %v", name, err)
		}
	}
}

// TestReplayReproducesReport verifies that a markdown report re-runs to the
// same genes and final stats, and that an edited report is rejected.
func TestReplayReproducesReport(t *testing.T) {
	speciesDir(t)
	path := filepath.Join(t.TempDir(), "mogaros.md")
	if _, err := runCLI(t, "run", "-seed", "77", "-levels", "30", "-format", "markdown", "-o", path, "mogaros"); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "replay", path)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "Seed: 77") || !strings.Contains(out, "reproduced") {
		t.Errorf("replay output:\n%s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(data), "seed: 77", "seed: 78", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "replay", path); !errors.Is(err, errReplayMismatch) {
		t.Errorf("edited report: err = %v, want errReplayMismatch", err)
	}
	if _, err := runCLI(t, "replay"); err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Errorf("replay without path: err = %v", err)
	}
}
