// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuistream/internal/exercise"
	"github.com/verte-zerg/tuistream/internal/model"
	"github.com/verte-zerg/tuistream/internal/stats"
	"github.com/verte-zerg/tuistream/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// filters cycles through "all" and each exercise.
var filters = append([]string{""}, exerciseNames()...)

func exerciseNames() []string {
	out := make([]string, len(exercise.Names))
	for i, n := range exercise.Names {
		out[i] = string(n)
	}
	return out
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store  *store.Store
	cfg    model.StatsConfig
	window int

	report stats.Report
	errMsg string

	table  table.Model
	curves viewport.Model
	filter int

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig, window int) *Model {
	m := &Model{
		store:  st,
		cfg:    cfg,
		window: window,
		table: table.New(
			table.WithColumns(columns()),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		curves: viewport.New(60, 4),
	}
	for i, f := range filters {
		if f == cfg.Exercise {
			m.filter = i
		}
	}
	m.refreshReport()
	return m
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Exercise", Width: 14},
		{Title: "Level", Width: 8},
		{Title: "WPM", Width: 7},
		{Title: "Accuracy", Width: 9},
		{Title: "C/W/M", Width: 9},
		{Title: "Rollbacks", Width: 9},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-14, 3))
		m.curves.Width = max(msg.Width-2, 20)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "f", "tab":
			m.filter = (m.filter + 1) % len(filters)
			m.cfg.Exercise = filters[m.filter]
			m.refreshReport()
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	filter := m.cfg.Exercise
	if filter == "" {
		filter = "all exercises"
	}
	parts := []string{headerStyle.Render(fmt.Sprintf("Stats · %s · f: filter · q: quit", filter))}
	if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	if len(m.report.Sessions) == 0 {
		parts = append(parts, "No sessions found.")
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	parts = append(parts, m.renderCards(), m.curves.View(), m.table.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg, m.window)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		return
	}
	m.errMsg = ""
	m.report = report

	rows := make([]table.Row, 0, len(report.Sessions))
	for i := len(report.Sessions) - 1; i >= 0; i-- {
		s := report.Sessions[i]
		mt := stats.SessionMetrics(s)
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Exercise,
			s.Difficulty,
			fmt.Sprintf("%.1f", mt.WPM),
			fmt.Sprintf("%.1f%%", mt.Accuracy*100),
			fmt.Sprintf("%d/%d/%d", s.Correct, s.Wrong, s.Missed),
			fmt.Sprintf("%d", s.Rollbacks),
		})
	}
	m.table.SetRows(rows)

	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Sessions, m.window); err != nil {
		m.errMsg = fmt.Sprintf("failed to render curves: %v", err)
		return
	}
	m.curves.SetContent(buf.String())
}

func (m *Model) renderCards() string {
	sessions := m.report.Sessions
	var acc, wpm float64
	rollbacks := 0
	for _, s := range sessions {
		mt := stats.SessionMetrics(s)
		acc += mt.Accuracy
		wpm += mt.WPM
		rollbacks += s.Rollbacks
	}
	n := float64(len(sessions))
	cards := []string{
		card("Sessions", fmt.Sprintf("%d", len(sessions))),
		card("Avg WPM", fmt.Sprintf("%.1f", wpm/n)),
		card("Avg Accuracy", fmt.Sprintf("%.1f%%", acc/n*100)),
		card("Rollbacks", fmt.Sprintf("%d", rollbacks)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(title, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value))
}
