// Package ui renders batch check progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"fsema/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []unitItem
	phase   string
	width   int
	done    bool
}

type unitItem struct {
	path   string
	status string
	phase  string
	detail string
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders unit check progress.
// It quits once events is closed.
func NewProgressModel(title string, units []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]unitItem, 0, len(units))
	for _, path := range units {
		items = append(items, unitItem{path: path, status: "queued"})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

// ChannelSink forwards batch events to a channel the progress model reads.
type ChannelSink chan<- driver.Event

func (s ChannelSink) OnEvent(ev driver.Event) { s <- ev }

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.phase != "" && !m.done {
		header = fmt.Sprintf("%s (%s)", header, m.phase)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)

	for _, item := range m.items {
		name := item.path
		if item.detail != "" {
			name += "  " + item.detail
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, truncate(name, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Index]
	switch ev.Kind {
	case driver.EventQueued:
		item.status = "queued"
	case driver.EventStarted:
		item.status = "loading"
	case driver.EventPhase:
		item.phase = ev.Phase
		item.status = phaseLabel(ev.Phase)
		m.phase = item.status
	case driver.EventDone:
		item.status, item.detail = outcome(ev.Report)
	}

	totalProgress := 0.0
	for _, it := range m.items {
		totalProgress += progressFromPhase(it)
	}
	return m.prog.SetPercent(totalProgress / float64(len(m.items)))
}

// outcome labels a finished unit.
func outcome(r *driver.UnitReport) (status, detail string) {
	switch {
	case r == nil:
		return "done", ""
	case r.Err != nil && driver.IsInternal(r.Err):
		return "ice", r.Err.Error()
	case r.Err != nil:
		return "error", r.Err.Error()
	case r.Mismatches > 0:
		return "mismatch", fmt.Sprintf("%d lookup(s) differ", r.Mismatches)
	case r.Errors > 0:
		return "error", fmt.Sprintf("%d error(s)", r.Errors)
	default:
		return "done", ""
	}
}

func progressFromPhase(item unitItem) float64 {
	switch item.status {
	case "done", "error", "ice", "mismatch":
		return 1.0
	}
	switch item.phase {
	case "load":
		return 0.1
	case "scopes":
		return 0.3
	case "decls":
		return 0.5
	case "types":
		return 0.7
	case "lookups":
		return 0.85
	case "validate":
		return 0.95
	default:
		return 0.0
	}
}

func phaseLabel(phase string) string {
	switch phase {
	case "load":
		return "loading"
	case "scopes", "decls":
		return "declaring"
	case "types":
		return "typing"
	case "lookups":
		return "resolving"
	case "validate":
		return "validating"
	default:
		return phase
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error", "ice":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "mismatch":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "loading", "declaring", "typing", "resolving", "validating":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
