// Package tui implements the live mission watch view.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/internal/store/markdown"
)

const defaultRefresh = 2 * time.Second

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	entryStyle   = lipgloss.NewStyle().PaddingLeft(2)
	timingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

type refreshMsg struct {
	doc *mission.Document
	err error
}

type tickMsg time.Time

// WatchModel polls the mission file and renders the queue by section.
type WatchModel struct {
	store   *markdown.Store
	spinner spinner.Model
	refresh time.Duration

	doc   *mission.Document
	err   error
	width int

	now func() time.Time
}

// NewWatch creates a watch model over the given store.
func NewWatch(store *markdown.Store) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return WatchModel{
		store:   store,
		spinner: sp,
		refresh: defaultRefresh,
		now:     time.Now,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load, m.tick())
}

func (m WatchModel) load() tea.Msg {
	doc, err := m.store.Snapshot()
	return refreshMsg{doc: doc, err: err}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case refreshMsg:
		m.doc = msg.doc
		m.err = msg.err

	case tickMsg:
		return m, tea.Batch(m.load, m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(titleStyle.Render("missions"))
	b.WriteString("  ")
	b.WriteString(timingStyle.Render(m.store.Path()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}
	if m.doc == nil {
		return b.String()
	}

	order := []mission.SectionKind{
		mission.SectionPending,
		mission.SectionInProgress,
		mission.SectionDone,
		mission.SectionFailed,
	}
	for _, kind := range order {
		sec := m.doc.Section(kind)
		if sec == nil {
			continue
		}
		entries := sec.Entries()

		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", strings.TrimPrefix(kind.String(), "## "), len(entries))))
		b.WriteString("\n")
		for _, e := range entries {
			b.WriteString(entryStyle.Render(m.renderEntry(e)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("r refresh • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m WatchModel) renderEntry(e mission.Entry) string {
	line := e.Text
	if e.Project != "" {
		line += " " + projectStyle.Render("["+e.Project+"]")
	}
	if timing := mission.TimingDisplay(e.Raw, m.now()); timing != "" {
		line += " " + timingStyle.Render(timing)
	}
	return line
}
