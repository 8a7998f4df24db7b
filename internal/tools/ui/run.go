package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Action is a long-running tool step whose progress is rendered by the TUI.
// It returns human-readable detail lines describing what it did.
type Action func(ctx context.Context) ([]string, error)

type actionMsg struct {
	details []string
	err     error
}

type model struct {
	title   string
	action  Action
	done    bool
	details []string
	err     error
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		details, err := m.action(context.Background())
		return actionMsg{details: details, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		m.done = true
		m.details = msg.details
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	if !m.done {
		fmt.Fprintf(&b, "⏳ Running %s...\n", m.title)
		return b.String()
	}
	if m.err != nil {
		fmt.Fprintf(&b, "✗ FAILED %s: %v\n", m.title, m.err)
	} else {
		fmt.Fprintf(&b, "✓ OK %s\n", m.title)
	}
	for _, line := range m.details {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return b.String()
}

// Run executes the action behind an interactive progress view and returns
// the action's outcome once the program exits.
func Run(title string, action Action) ([]string, error) {
	program := tea.NewProgram(model{title: title, action: action})
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run tui: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model %T", final)
	}
	return m.details, m.err
}
