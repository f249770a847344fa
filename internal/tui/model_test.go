package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/lifecycle"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
	"github.com/julianstephens/habitual/internal/sweep"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/utils"
)

func setupModel(t *testing.T) (Model, *lifecycle.Tracker, models.Habit) {
	t.Helper()
	today := utils.Date(2024, 1, 1)
	tracker := lifecycle.New(storagetest.NewSQLiteStore(t), func() time.Time { return today }, time.UTC)

	h, err := tracker.Create(context.Background(), "Read", models.PeriodicityDaily, nil)
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	return NewModel(context.Background(), tracker, sweep.Result{}), tracker, h
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_LoadsHabits(t *testing.T) {
	m, _, _ := setupModel(t)
	if m.habits.Len() != 1 {
		t.Fatalf("habit list has %d items, want 1", m.habits.Len())
	}
	if m.report.OngoingCount != 1 {
		t.Errorf("report OngoingCount = %d, want 1", m.report.OngoingCount)
	}
	if m.warning != "" {
		t.Errorf("unexpected warning %q", m.warning)
	}
}

func TestNewModel_LapsedBanner(t *testing.T) {
	tracker := lifecycle.New(storagetest.NewSQLiteStore(t), utils.FixedClock(utils.Date(2024, 1, 1)), time.UTC)
	m := NewModel(context.Background(), tracker, sweep.Result{Completed: []models.Habit{{Name: "Run"}}})
	if !strings.Contains(m.View(), "1 habit(s) missed their window") {
		t.Errorf("view should show lapsed banner:\n%s", m.View())
	}
}

func TestUpdate_Checkin(t *testing.T) {
	m, tracker, h := setupModel(t)

	m = update(t, m, habitlist.CheckinMsg{ID: h.ID})
	if m.message != "✓ Checked in" {
		t.Errorf("message = %q", m.message)
	}

	status, err := tracker.Get(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if status.State != models.StateActive {
		t.Errorf("state = %s, want ACTIVE", status.State)
	}
}

func TestUpdate_CompleteRequiresConfirmation(t *testing.T) {
	m, tracker, h := setupModel(t)

	m = update(t, m, habitlist.CompleteMsg{ID: h.ID, Name: h.Name})
	if m.state != StateConfirmComplete {
		t.Fatalf("state = %v, want StateConfirmComplete", m.state)
	}

	m = update(t, m, runes("n"))
	if m.state != StateHabits {
		t.Fatalf("cancel should return to habits, state = %v", m.state)
	}
	if s, _ := tracker.Get(context.Background(), h.ID); s.State == models.StateCompleted {
		t.Fatal("habit completed despite cancel")
	}

	m = update(t, m, habitlist.CompleteMsg{ID: h.ID, Name: h.Name})
	m = update(t, m, runes("y"))
	if !strings.Contains(m.message, string(models.StatusSucceeded)) {
		t.Errorf("message = %q, want SUCCEEDED", m.message)
	}
	if m.habits.Len() != 0 {
		t.Errorf("completed habit should leave the list, %d remain", m.habits.Len())
	}
	if m.report.CompletedCount != 1 {
		t.Errorf("report CompletedCount = %d, want 1", m.report.CompletedCount)
	}
}

func TestUpdate_TabShowsStats(t *testing.T) {
	m, _, _ := setupModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateStats {
		t.Fatalf("state = %v, want StateStats", m.state)
	}
	view := m.View()
	for _, want := range []string{"Longest ongoing streak", "0 day(s)", "Read"} {
		if !strings.Contains(view, want) {
			t.Errorf("stats view missing %q:\n%s", want, view)
		}
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHabits {
		t.Errorf("state = %v, want StateHabits", m.state)
	}
}

func TestUpdate_AddOpensForm(t *testing.T) {
	m, _, _ := setupModel(t)

	m = update(t, m, habitlist.AddHabitMsg{})
	if m.state != StateAddHabit || m.form == nil {
		t.Fatalf("add should open the form, state = %v", m.state)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateHabits {
		t.Errorf("esc should close the form, state = %v", m.state)
	}
}

func TestAddHabit(t *testing.T) {
	m, tracker, _ := setupModel(t)
	m.habitForm = &HabitFormModel{Name: "Run", Periodicity: models.PeriodicityWeekly, TargetDays: "14"}

	if err := m.addHabit(); err != nil {
		t.Fatalf("addHabit error = %v", err)
	}

	statuses, err := tracker.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	var found bool
	for _, s := range statuses {
		if s.Habit.Name == "Run" {
			found = true
			if s.Habit.TargetDate == nil || !s.Habit.TargetDate.Equal(utils.Date(2024, 1, 15)) {
				t.Errorf("target = %v, want 2024-01-15", s.Habit.TargetDate)
			}
		}
	}
	if !found {
		t.Error("habit Run not created")
	}

	m.habitForm = &HabitFormModel{Name: "Bad", Periodicity: models.PeriodicityDaily, TargetDays: "soon"}
	if err := m.addHabit(); err == nil {
		t.Error("expected error for invalid days")
	}
}

func TestUpdate_Quit(t *testing.T) {
	m, _, _ := setupModel(t)
	next, cmd := m.Update(runes("q"))
	if cmd == nil || !next.(Model).quitting {
		t.Error("q should quit")
	}
}

func TestAddHabitFromPreset(t *testing.T) {
	m, tracker, _ := setupModel(t)
	m.habitForm = &HabitFormModel{Preset: "water"}

	if err := m.addHabit(); err != nil {
		t.Fatalf("addHabit error = %v", err)
	}

	statuses, err := tracker.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	var found bool
	for _, s := range statuses {
		if s.Habit.Name == "Drink 2 liters of water" {
			found = true
			if !s.Habit.CreatedAt.Equal(utils.Date(2024, 1, 1)) {
				t.Errorf("created = %v, want today", s.Habit.CreatedAt)
			}
			if !s.Habit.HasTarget() || !s.Habit.TargetDate.Equal(utils.Date(2024, 1, 31)) {
				t.Errorf("target = %v, want 2024-01-31", s.Habit.TargetDate)
			}
		}
	}
	if !found {
		t.Error("preset habit not created")
	}

	m.habitForm = &HabitFormModel{Preset: "juggling"}
	if err := m.addHabit(); err == nil {
		t.Error("expected error for unknown preset")
	}
}
