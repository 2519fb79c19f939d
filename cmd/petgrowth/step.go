package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"petgrowth/internal/report"
	"petgrowth/internal/stepper"
)

// maxRows bounds the step history kept on screen.
const maxRows = 15

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// stepModel is a bubbletea model driving a stepper session.
type stepModel struct {
	session *stepper.Session
	printer *message.Printer
	seed    uint32
	input   textinput.Model
	rows    []report.Step
	status  string
	quit    bool
}

func newStepModel(session *stepper.Session, p *message.Printer, seed uint32) stepModel {
	ti := textinput.New()
	ti.Placeholder = "enter, <n>, r or q"
	ti.CharLimit = 16
	ti.Focus()
	return stepModel{session: session, printer: p, seed: seed, input: ti}
}

func (m stepModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.apply(line)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply runs one command line against the session.
func (m stepModel) apply(line string) (tea.Model, tea.Cmd) {
	m.status = ""
	c, err := stepper.ParseCommand(line)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	switch c.Action {
	case stepper.ActionQuit:
		m.quit = true
		return m, tea.Quit
	case stepper.ActionReroll:
		m.session.Reroll()
		m.rows = nil
		return m, nil
	}
	steps, err := m.session.Advance(c.Burst)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.rows = append(m.rows, steps...)
	if len(m.rows) > maxRows {
		m.rows = append([]report.Step(nil), m.rows[len(m.rows)-maxRows:]...)
	}
	return m, nil
}

func (m stepModel) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	_ = report.WriteIndividual(&b, m.printer, m.seed, m.session.Individual(), m.session.Derived())
	b.WriteString("\n")
	if len(m.rows) > 0 {
		_ = report.WriteStepTable(&b, m.printer, m.rows)
	}
	if m.status != "" {
		b.WriteString(errStyle.Render(m.status) + "\n")
	}
	cur := m.session.Current()
	fmt.Fprintf(&b, "Lv %d  %d/%d/%d/%d\n", m.session.Level(), cur.Atk, cur.Def, cur.Spd, cur.HP)
	fmt.Fprintf(&b, "> %s\n", m.input.View())
	b.WriteString(helpStyle.Render("enter: level up  <n>: level up n times  r: re-roll  q: quit") + "\n")
	return b.String()
}

// runStepUI runs the session until the user quits or ctx is canceled.
func runStepUI(ctx context.Context, m stepModel) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
