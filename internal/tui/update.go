package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/seed"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habits.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		cmd := m.updateAddHabit(msg)
		return m, cmd
	case StateConfirmComplete:
		cmd := m.updateConfirmComplete(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Periodicity: models.PeriodicityDaily}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.CheckinMsg:
		cp, err := m.tracker.Checkin(m.ctx, msg.ID)
		switch {
		case err != nil:
			m.message = errors.Format(err)
		case cp.IsValidStreak:
			m.message = "✓ Checked in"
		default:
			m.message = "⚠ Checked in late; streak is broken"
		}
		m.refresh()
		return m, nil

	case habitlist.CompleteMsg:
		m.toComplete = msg
		m.state = StateConfirmComplete
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			if m.state == StateHabits {
				m.state = StateStats
			} else {
				m.state = StateHabits
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.message = ""
			m.refresh()
			return m, nil
		}
	}

	if m.state != StateHabits {
		return m, nil
	}
	var cmd tea.Cmd
	m.habits, cmd = m.habits.Update(msg)
	return m, cmd
}

func (m *Model) updateAddHabit(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.addHabit(); err != nil {
			m.message = errors.Format(err)
		}
		m.state = StateHabits
		m.refresh()
	case huh.StateAborted:
		m.state = StateHabits
	}
	return cmd
}

func (m *Model) addHabit() error {
	if m.habitForm.Preset != "" {
		preset, err := seed.LookupPreset(m.habitForm.Preset)
		if err != nil {
			return err
		}
		habit, err := m.tracker.Create(m.ctx, preset.Name, preset.Periodicity, preset.Target(m.tracker.Today()))
		if err != nil {
			return err
		}
		m.message = fmt.Sprintf("✓ Added %q", habit.Name)
		return nil
	}

	var target *time.Time
	if days := strings.TrimSpace(m.habitForm.TargetDays); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("invalid number of days %q", days)
		}
		t := utils.AddDays(m.tracker.Today(), n)
		target = &t
	}

	habit, err := m.tracker.Create(m.ctx, m.habitForm.Name, m.habitForm.Periodicity, target)
	if err != nil {
		return err
	}
	m.message = fmt.Sprintf("✓ Added %q", habit.Name)
	return nil
}

func (m *Model) updateConfirmComplete(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		completion, err := m.tracker.Complete(m.ctx, m.toComplete.ID)
		if err != nil {
			m.message = errors.Format(err)
		} else {
			m.message = fmt.Sprintf("✓ %q completed: %s", m.toComplete.Name, completion.CompletionStatus)
		}
		m.state = StateHabits
		m.refresh()
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = StateHabits
	}
	return nil
}

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	periodicities := make([]huh.Option[models.Periodicity], len(models.Periodicities))
	for i, p := range models.Periodicities {
		periodicities[i] = huh.NewOption(strings.ToUpper(string(p[:1]))+string(p[1:]), p)
	}

	presets := []huh.Option[string]{huh.NewOption("Custom habit", "")}
	for _, p := range seed.Presets {
		presets = append(presets, huh.NewOption(p.Name, p.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start from").
				Options(presets...).
				Value(&fm.Preset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Periodicity]().
				Title("Periodicity").
				Options(periodicities...).
				Value(&fm.Periodicity),
			huh.NewInput().
				Title("Target (days from today, blank for none)").
				Value(&fm.TargetDays).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if n, err := strconv.Atoi(s); err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number of days")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Preset != "" }),
	).WithTheme(huh.ThemeDracula())
}
