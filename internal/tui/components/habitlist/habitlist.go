package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type AddHabitMsg struct{}

type CheckinMsg struct {
	ID string
}

type CompleteMsg struct {
	ID   string
	Name string
}

type Item struct {
	Status models.HabitStatus
}

func (i Item) Title() string {
	switch i.Status.State {
	case models.StateActive:
		return "✓ " + i.Status.Habit.Name
	case models.StateAtRisk:
		return "⚠ " + i.Status.Habit.Name
	default:
		return "○ " + i.Status.Habit.Name
	}
}

func (i Item) Description() string {
	cp := i.Status.Checkpoint
	if cp == nil {
		return fmt.Sprintf("%s | no check-ins yet", i.Status.Habit.Periodicity)
	}
	if cp.NextCheckpoint == nil {
		return fmt.Sprintf("%s | %s | target reached", i.Status.Habit.Periodicity, i.Status.State)
	}
	return fmt.Sprintf("%s | %s | check in by %s", i.Status.Habit.Periodicity, i.Status.State, utils.FormatDate(cp.NextCheckpoint))
}

func (i Item) FilterValue() string { return i.Status.Habit.Name }

type KeyMap struct {
	Add      key.Binding
	Checkin  key.Binding
	Complete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Checkin: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "check in"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "complete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(statuses []models.HabitStatus, width, height int) Model {
	l := list.New(items(statuses), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Checkin, keys.Complete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(statuses []models.HabitStatus) []list.Item {
	out := make([]list.Item, len(statuses))
	for i, s := range statuses {
		out[i] = Item{Status: s}
	}
	return out
}

func (m *Model) SetHabits(statuses []models.HabitStatus) {
	m.list.SetItems(items(statuses))
}

// Selected returns the highlighted habit, if any
func (m Model) Selected() (models.HabitStatus, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Status, ok
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Checkin):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CheckinMsg{ID: s.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CompleteMsg{ID: s.Habit.ID, Name: s.Habit.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No ongoing habits.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
