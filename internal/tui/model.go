package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/lifecycle"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/sweep"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateStats
	StateAddHabit
	StateConfirmComplete
)

type HabitFormModel struct {
	// Preset is a seed.Preset key; empty for a custom habit.
	Preset      string
	Name        string
	Periodicity models.Periodicity
	TargetDays  string
}

type Model struct {
	ctx        context.Context
	tracker    *lifecycle.Tracker
	state      SessionState
	keys       KeyMap
	help       help.Model
	habits     habitlist.Model
	report     models.Report
	form       *huh.Form
	habitForm  *HabitFormModel
	toComplete habitlist.CompleteMsg
	message    string
	warning    string
	quitting   bool
	width      int
	height     int
}

// NewModel builds the TUI over a tracker. lapsed is the result of the sweep
// that ran before the TUI started and is shown as a banner.
func NewModel(ctx context.Context, tracker *lifecycle.Tracker, lapsed sweep.Result) Model {
	m := Model{
		ctx:     ctx,
		tracker: tracker,
		state:   StateHabits,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		habits:  habitlist.New(nil, 0, 0),
	}
	if n := len(lapsed.Completed); n > 0 {
		m.warning = fmt.Sprintf("⚠ %d habit(s) missed their window and were marked FAILED", n)
	}
	m.refresh()
	return m
}

// refresh reloads ongoing habits and statistics
func (m *Model) refresh() {
	statuses, err := m.tracker.List(m.ctx, false)
	if err != nil {
		m.message = "Failed to load habits: " + err.Error()
		return
	}
	m.habits.SetHabits(statuses)

	report, err := m.tracker.Analyze(m.ctx)
	if err != nil {
		m.message = "Failed to load statistics: " + err.Error()
		return
	}
	m.report = report
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	if m.state == StateHabits {
		hk := habitlist.DefaultKeyMap()
		keys = append(keys, hk.Add, hk.Checkin, hk.Complete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}

func (m Model) Init() tea.Cmd {
	return m.habits.Init()
}
