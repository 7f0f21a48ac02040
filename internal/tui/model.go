// Package tui provides the Bubble Tea status interface for a typing session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typewright/internal/engine"
	"github.com/verte-zerg/typewright/internal/model"
	statsPkg "github.com/verte-zerg/typewright/internal/stats"
	"github.com/verte-zerg/typewright/internal/store"
)

// Controls forwards user commands to the engine. Implementations must not
// block the UI.
type Controls interface {
	Pause()
	Resume(countdown int)
	Stop()
}

// SnapshotMsg carries a new engine snapshot into the program.
type SnapshotMsg engine.Snapshot

// RunSavedMsg reports a completed run that was written to history.
type RunSavedMsg model.RunRecord

// FooterStats seeds the history footer.
type FooterStats struct {
	Last   *model.RunRecord
	Totals store.Totals
}

// Model implements the Bubble Tea status UI.
type Model struct {
	text            []rune
	controls        Controls
	resumeCountdown int

	snap engine.Snapshot

	width  int
	height int

	progress progress.Model
	spinner  spinner.Model

	lastWPM float64
	hasLast bool

	allChars      int64
	allDurationMs int64
	allWPM        float64
}

var (
	typedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Bold(true)
	pausedStyle      = statusStyle.Foreground(lipgloss.Color("#FF4D4F"))
	countdownStyle   = statusStyle.Foreground(lipgloss.Color("#C89A3A"))
	helpStyle        = footerStyle.Italic(true)
)

const helpText = "ctrl+p pause · ctrl+r resume · ctrl+x stop · esc quit"

// NewModel constructs the status UI for text.
func NewModel(text string, controls Controls, resumeCountdown int, footer FooterStats) *Model {
	m := &Model{
		text:            []rune(text),
		controls:        controls,
		resumeCountdown: resumeCountdown,
		progress:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if footer.Last != nil {
		m.lastWPM, _ = statsPkg.RunMetrics(footer.Last.Chars, footer.Last.DurationMs)
		m.hasLast = true
	}
	m.allChars = footer.Totals.Chars
	m.allDurationMs = footer.Totals.DurationMs
	m.recomputeAllTime()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, m.contentWidth())
		return m, nil
	case SnapshotMsg:
		m.snap = engine.Snapshot(msg)
		return m, nil
	case RunSavedMsg:
		m.recordRun(model.RunRecord(msg))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

// Plain keys are ignored: injected keystrokes may land in this terminal.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.controls.Stop()
		return tea.Quit
	case tea.KeyCtrlP:
		m.controls.Pause()
	case tea.KeyCtrlR:
		if m.snap.State == engine.Paused {
			m.controls.Resume(m.resumeCountdown)
		}
	case tea.KeyCtrlX:
		m.controls.Stop()
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.contentWidth()
	sections := []string{
		m.renderStatus(),
		m.progress.ViewAs(m.snap.Progress),
	}
	if len(m.text) > 0 {
		cursor := 0
		if m.snap.Total == len(m.text) {
			cursor = m.snap.Cursor
			if cursor >= len(m.text) {
				cursor = -1
			}
		}
		lines, cursorLine := wrapStyledRunes(buildStyledRunes(m.text, cursor), width)
		previewHeight := 0
		if m.height > 0 {
			previewHeight = max(1, m.height-8)
		}
		sections = append(sections, "", strings.Join(visibleLines(lines, cursorLine, previewHeight), "\n"))
	}
	sections = append(sections, "", helpStyle.Render(helpText))

	content := lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n"))
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderStatus() string {
	msg := m.snap.Message
	if msg == "" {
		msg = "Ready"
	}
	switch m.snap.State {
	case engine.CountingDown:
		return countdownStyle.Render(m.spinner.View() + " " + msg)
	case engine.Paused:
		return pausedStyle.Render(msg)
	case engine.Typing:
		if m.snap.Thinking {
			return statusStyle.Render(m.spinner.View() + " " + msg)
		}
	}
	return statusStyle.Render(msg)
}

func (m *Model) recordRun(run model.RunRecord) {
	m.lastWPM, _ = statsPkg.RunMetrics(run.Chars, run.DurationMs)
	m.hasLast = true
	m.allChars += int64(run.Chars)
	m.allDurationMs += run.DurationMs
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allWPM, _ = statsPkg.RunMetrics(int(m.allChars), m.allDurationMs)
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Progress %d%%", int(m.snap.Progress*100))}
	if m.snap.Target != "" {
		segments = append(segments, "Target "+string(m.snap.Target))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM", m.lastWPM))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM", m.allWPM))
	return footerStyle.Render(strings.Join(segments, "  "))
}
