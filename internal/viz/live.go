// Package viz renders a live terminal view of an optimization run,
// built around the energy trace and the sampler diagnostics.
package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 600

// Progress is one iteration worth of optimization telemetry.
type Progress struct {
	Iteration  int
	Energy     float64
	Error      float64
	Variance   float64
	Rhat       float64
	Acceptance float64
}

type doneMsg struct{}

// Model is the bubbletea model for the live convergence view. It
// consumes Progress values from a channel until the channel closes.
type Model struct {
	title    string
	total    int
	ch       <-chan Progress
	energies []float64
	last     Progress
	started  bool
	done     bool
}

func NewModel(title string, total int, ch <-chan Progress) Model {
	return Model{
		title:    title,
		total:    total,
		ch:       ch,
		energies: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ch)
}

func waitForProgress(ch <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return p
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case Progress:
		m.started = true
		m.last = msg
		m.energies = append(m.energies, msg.Energy)
		if len(m.energies) > historyCapacity {
			m.energies = m.energies[1:]
		}
		return m, waitForProgress(m.ch)
	case doneMsg:
		m.done = true
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.done:
		s.WriteString(statusDoneStyle.Render("DONE") + "\n\n")
	case m.started:
		s.WriteString(statusRunningStyle.Render(fmt.Sprintf("ITERATION %d/%d", m.last.Iteration+1, m.total)) + "\n\n")
	default:
		s.WriteString(statusRunningStyle.Render("THERMALIZING") + "\n\n")
	}

	if len(m.energies) > 1 {
		chart := asciigraph.Plot(m.energies,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	if m.started {
		s.WriteString(labelStyle.Render("Energy") +
			valueStyle.Render(fmt.Sprintf("%.6f ± %.6f", m.last.Energy, m.last.Error)) + "\n")
		s.WriteString(labelStyle.Render("Variance") +
			valueStyle.Render(fmt.Sprintf("%.6f", m.last.Variance)) + "\n")
		s.WriteString(labelStyle.Render("Rhat") +
			valueStyle.Render(fmt.Sprintf("%.4f", m.last.Rhat)) + "\n")
		s.WriteString(labelStyle.Render("Acceptance") +
			valueStyle.Render(fmt.Sprintf("%.1f%%", 100*m.last.Acceptance)) + "\n")
	}

	s.WriteString(helpStyle.Render("\nQ: quit"))
	return panelStyle.Render(s.String())
}
