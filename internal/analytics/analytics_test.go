package analytics

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
	"github.com/julianstephens/habitual/internal/utils"
)

func habit(id string, p models.Periodicity, created time.Time) models.Habit {
	return models.Habit{ID: id, Name: id, Periodicity: p, CreatedAt: created}
}

func ongoing(id string, created, current time.Time) Ongoing {
	return Ongoing{
		Habit:      habit(id, models.PeriodicityDaily, created),
		Checkpoint: models.Checkpoint{HabitID: id, LastCheckpoint: current, CurrentCheckpoint: current},
	}
}

func TestOngoingStreakLength(t *testing.T) {
	tests := []struct {
		name    string
		created time.Time
		current time.Time
		want    int
	}{
		{name: "same day", created: utils.Date(2024, 1, 1), current: utils.Date(2024, 1, 1), want: 0},
		{name: "ten days", created: utils.Date(2024, 1, 1), current: utils.Date(2024, 1, 11), want: 10},
		{name: "across leap day", created: utils.Date(2024, 2, 28), current: utils.Date(2024, 3, 1), want: 2},
		{name: "clock skew clamps to zero", created: utils.Date(2024, 1, 10), current: utils.Date(2024, 1, 1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ongoing("h", tt.created, tt.current)
			if got := OngoingStreakLength(e.Habit, e.Checkpoint); got != tt.want {
				t.Errorf("OngoingStreakLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalStreakLength(t *testing.T) {
	h := habit("h", models.PeriodicityWeekly, utils.Date(2024, 1, 1))

	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "same day", date: utils.Date(2024, 1, 1), want: 0},
		{name: "one month", date: utils.Date(2024, 1, 31), want: 30},
		{name: "before creation", date: utils.Date(2023, 12, 25), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Completion{HabitID: "h", CompletionStatus: models.StatusSucceeded, CompletionDate: tt.date}
			if got := TotalStreakLength(h, c); got != tt.want {
				t.Errorf("TotalStreakLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLongestOngoingStreak(t *testing.T) {
	start := utils.Date(2024, 1, 1)
	entries := []Ongoing{
		ongoing("a", start, utils.AddDays(start, 5)),
		ongoing("b", start, utils.AddDays(start, 10)),
		ongoing("c", start, utils.AddDays(start, 3)),
	}

	got, err := LongestOngoingStreak(entries)
	if err != nil {
		t.Fatalf("LongestOngoingStreak() error = %v", err)
	}
	if got != 10 {
		t.Errorf("LongestOngoingStreak() = %d, want 10", got)
	}
}

func TestLongestStreakEmpty(t *testing.T) {
	if _, err := LongestOngoingStreak(nil); !stderrors.Is(err, errors.ErrEmptyPopulation) {
		t.Errorf("LongestOngoingStreak(nil) error = %v, want ErrEmptyPopulation", err)
	}
	if _, err := LongestTotalStreak([]Completed{}); !stderrors.Is(err, errors.ErrEmptyPopulation) {
		t.Errorf("LongestTotalStreak(empty) error = %v, want ErrEmptyPopulation", err)
	}
}

func TestLongestTotalStreak(t *testing.T) {
	entries := []Completed{
		{Habit: habit("a", models.PeriodicityDaily, utils.Date(2024, 1, 1)), Completion: models.Completion{CompletionDate: utils.Date(2024, 1, 4)}},
		{Habit: habit("b", models.PeriodicityDaily, utils.Date(2024, 1, 1)), Completion: models.Completion{CompletionDate: utils.Date(2024, 2, 1)}},
	}
	got, err := LongestTotalStreak(entries)
	if err != nil {
		t.Fatalf("LongestTotalStreak() error = %v", err)
	}
	if got != 31 {
		t.Errorf("LongestTotalStreak() = %d, want 31", got)
	}
}

func TestGroupByPeriodicity(t *testing.T) {
	start := utils.Date(2024, 1, 1)
	habits := []models.Habit{
		habit("d1", models.PeriodicityDaily, start),
		habit("w1", models.PeriodicityWeekly, start),
		habit("d2", models.PeriodicityDaily, start),
		habit("m1", models.Periodicity("monthly"), start),
	}

	groups := GroupByPeriodicity(habits)
	if len(groups[models.PeriodicityDaily]) != 2 {
		t.Errorf("daily = %d, want 2", len(groups[models.PeriodicityDaily]))
	}
	if len(groups[models.PeriodicityWeekly]) != 1 {
		t.Errorf("weekly = %d, want 1", len(groups[models.PeriodicityWeekly]))
	}
	if _, ok := groups[models.Periodicity("monthly")]; ok {
		t.Error("unknown periodicity should be omitted")
	}

	empty := GroupByPeriodicity(nil)
	if empty[models.PeriodicityDaily] == nil || empty[models.PeriodicityWeekly] == nil {
		t.Error("buckets should be empty slices, not nil")
	}
}

func TestStatusBreakdown(t *testing.T) {
	counts := StatusBreakdown([]models.Completion{
		{CompletionStatus: models.StatusFailed},
		{CompletionStatus: models.StatusSucceeded},
		{CompletionStatus: models.StatusFailed},
	})
	if counts[models.StatusFailed] != 2 || counts[models.StatusSucceeded] != 1 || counts[models.StatusAborted] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[models.StatusAborted]; !ok {
		t.Error("every status should have an entry")
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewSQLiteStore(t)
	start := utils.Date(2024, 1, 1)

	add := func(name string, p models.Periodicity) models.Habit {
		h, err := store.CreateHabit(ctx, models.Habit{Name: name, Periodicity: p, CreatedAt: start})
		if err != nil {
			t.Fatalf("CreateHabit() error = %v", err)
		}
		return h
	}
	checkpoint := func(h models.Habit, days int) {
		day := utils.AddDays(start, days)
		if err := store.UpsertCheckpoint(ctx, models.Checkpoint{HabitID: h.ID, LastCheckpoint: day, CurrentCheckpoint: day, IsValidStreak: true}); err != nil {
			t.Fatalf("UpsertCheckpoint() error = %v", err)
		}
	}

	analyzer := NewAnalyzer(store)

	report, err := analyzer.Analyze(ctx)
	if err != nil {
		t.Fatalf("Analyze() on empty store error = %v", err)
	}
	if report.OngoingCount != 0 || report.CheckedInCount != 0 || report.CompletedCount != 0 || report.LongestOngoingStreak != 0 || report.LongestTotalStreak != 0 {
		t.Errorf("unexpected empty report %+v", report)
	}

	add("never checked in", models.PeriodicityWeekly)

	report, err = analyzer.Analyze(ctx)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.OngoingCount != 1 || report.CheckedInCount != 0 || report.LongestOngoingStreak != 0 {
		t.Errorf("habit without checkpoint: report %+v, want 1 ongoing and 0 checked in", report)
	}

	a := add("a", models.PeriodicityDaily)
	b := add("b", models.PeriodicityWeekly)
	c := add("c", models.PeriodicityDaily)
	done := add("done", models.PeriodicityDaily)

	checkpoint(a, 5)
	checkpoint(b, 10)
	checkpoint(c, 3)
	if err := store.CompleteHabit(ctx, models.Completion{HabitID: done.ID, CompletionStatus: models.StatusAborted, CompletionDate: utils.AddDays(start, 20)}); err != nil {
		t.Fatalf("CompleteHabit() error = %v", err)
	}

	report, err = analyzer.Analyze(ctx)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.LongestOngoingStreak != 10 {
		t.Errorf("LongestOngoingStreak = %d, want 10", report.LongestOngoingStreak)
	}
	if report.LongestTotalStreak != 20 {
		t.Errorf("LongestTotalStreak = %d, want 20", report.LongestTotalStreak)
	}
	if report.CheckedInCount != 3 {
		t.Errorf("CheckedInCount = %d, want 3", report.CheckedInCount)
	}
	if report.OngoingCount != 4 || report.CompletedCount != 1 {
		t.Errorf("counts = %d ongoing / %d completed, want 4 / 1", report.OngoingCount, report.CompletedCount)
	}
	if len(report.DailyHabits) != 2 || len(report.WeeklyHabits) != 2 {
		t.Errorf("buckets = %d daily / %d weekly, want 2 / 2", len(report.DailyHabits), len(report.WeeklyHabits))
	}
	if report.StatusCounts[models.StatusAborted] != 1 {
		t.Errorf("StatusCounts = %v", report.StatusCounts)
	}
}
