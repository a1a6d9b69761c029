// Package tui provides a Bubble Tea viewer for the rename history log.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/scanstamp/internal/history"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Section heading above the listing
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	renameBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	otherBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Bold(true)

	arrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Model ────────────────────

// Model is the root Bubble Tea model for the history viewer.
type Model struct {
	records  []history.Record
	filename string
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	sortAsc  bool
}

// New creates a viewer model over the parsed log records. Records arrive in
// append order; the viewer shows newest first until toggled.
func New(records []history.Record, logPath string) Model {
	return Model{
		records:  records,
		filename: filepath.Base(logPath),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.sortAsc = !m.sortAsc
			m.viewport.SetContent(m.renderRecords())
			m.viewport.GotoTop()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// title(1) + statusBar(1) = 2 fixed rows
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.viewport = viewport.New(m.width, vpHeight)
		m.viewport.SetContent(m.renderRecords())
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  scanstamp  " + m.filename)

	hint := fmt.Sprintf("  ↑/↓ scroll  s sort (%s)  q quit", m.direction())
	pct := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), statusBar)
}

// ── Rendering ─────────────────────────────────────────────────────────────────

func (m *Model) direction() string {
	if m.sortAsc {
		return "oldest first"
	}
	return "newest first"
}

func (m *Model) renderRecords() string {
	var sb strings.Builder
	sb.WriteString("\n" + sectionHeader.Render(fmt.Sprintf("  Rename History (%d entries, %s)", len(m.records), m.direction())) + "\n\n")

	if len(m.records) == 0 {
		sb.WriteString(dimStyle.Render("  (no renames logged)") + "\n")
		return sb.String()
	}

	for i := range m.records {
		rec := m.records[i]
		if !m.sortAsc {
			rec = m.records[len(m.records)-1-i]
		}
		sb.WriteString(renderRecord(rec))
	}
	return sb.String()
}

// renderRecord formats one log row as "time [BADGE] old -> new".
func renderRecord(rec history.Record) string {
	ts := timeStyle.Render(displayTime(rec.Timestamp))

	var badge string
	if rec.Action == history.ActionRename {
		badge = renameBadgeStyle.Render(fmt.Sprintf("  %-8s", "RENAME"))
	} else {
		badge = otherBadgeStyle.Render(fmt.Sprintf("  %-8s", strings.ToUpper(rec.Action)))
	}

	return fmt.Sprintf("  %s%s  %s %s %s\n\n",
		ts, badge, rec.OldPath, arrowStyle.Render("->"), rec.NewPath)
}

// displayTime reformats a row timestamp for the listing. Unparseable
// timestamps are shown raw rather than dropped.
func displayTime(raw string) string {
	ts, err := time.Parse(history.TimestampLayout, raw)
	if err != nil {
		return raw
	}
	return ts.Format("2006-01-02 15:04:05")
}

// Run starts the viewer over the given records.
func Run(records []history.Record, logPath string) error {
	p := tea.NewProgram(New(records, logPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
