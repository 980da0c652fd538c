// Package tui provides a live terminal view of a running Monte Carlo batch.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n-veld/apogee/internal/mc"
)

const barWidth = 50

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

// ProgressMsg carries a batch progress snapshot into the model.
type ProgressMsg mc.Progress

// DoneMsg ends the view once the driver has returned.
type DoneMsg struct{}

type Model struct {
	total    int
	done     int
	failed   int
	finished bool
}

func New(total int) Model {
	return Model{total: total}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.done = msg.Done
		m.failed = msg.Failed
		return m, nil
	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	filled := int(frac * barWidth)
	bar := doneStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d", labelStyle.Render("trials"), bar, m.done, m.total)
	if m.failed > 0 {
		line += "  " + failStyle.Render(fmt.Sprintf("%d failed", m.failed))
	}
	if m.finished {
		return line + "\n"
	}
	return line + labelStyle.Render("\n q to abort\n")
}
