package sweep

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/checkpoint"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
	"github.com/julianstephens/habitual/internal/utils"
)

// storeCompleter completes habits straight through the store
type storeCompleter struct {
	store *sqlite.Store
	today func() time.Time
	fail  map[string]error
}

func (c *storeCompleter) CompleteWithStatus(ctx context.Context, habit models.Habit, status models.CompletionStatus) (models.Completion, error) {
	if err := c.fail[habit.ID]; err != nil {
		return models.Completion{}, err
	}
	completion := models.Completion{HabitID: habit.ID, CompletionStatus: status, CompletionDate: c.today()}
	return completion, c.store.CompleteHabit(ctx, completion)
}

type fixture struct {
	store     *sqlite.Store
	engine    *checkpoint.Engine
	completer *storeCompleter
	validator *Validator
	today     time.Time
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	f := &fixture{store: storagetest.NewSQLiteStore(t), today: start}
	clock := func() time.Time { return f.today }
	f.engine = checkpoint.NewEngine(f.store, clock, time.UTC)
	f.completer = &storeCompleter{store: f.store, today: clock, fail: map[string]error{}}
	f.validator = NewValidator(f.store, f.engine, f.completer)
	return f
}

func (f *fixture) habit(t *testing.T, name string, p models.Periodicity, target *time.Time) models.Habit {
	t.Helper()
	h, err := f.store.CreateHabit(context.Background(), models.Habit{Name: name, Periodicity: p, CreatedAt: f.today, TargetDate: target})
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	return h
}

func (f *fixture) checkin(t *testing.T, h models.Habit, day time.Time) {
	t.Helper()
	f.today = day
	if _, err := f.engine.Checkin(context.Background(), h); err != nil {
		t.Fatalf("Checkin() error = %v", err)
	}
}

func ids(habits []models.Habit) []string {
	out := make([]string, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.ID)
	}
	return out
}

func TestSweepDailyScenario(t *testing.T) {
	ctx := context.Background()
	target := utils.Date(2024, 1, 31)
	f := newFixture(t, utils.Date(2024, 1, 1))
	h := f.habit(t, "Read", models.PeriodicityDaily, &target)

	f.checkin(t, h, utils.Date(2024, 1, 1))
	f.checkin(t, h, utils.Date(2024, 1, 2))

	f.today = utils.Date(2024, 1, 5)
	result, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Completed) != 1 || result.Completed[0].ID != h.ID {
		t.Fatalf("Completed = %v, want [%s]", ids(result.Completed), h.ID)
	}

	if _, err := f.store.GetCheckpoint(ctx, h.ID); !stderrors.Is(err, storage.ErrNotFound) {
		t.Errorf("checkpoint should be deleted, got %v", err)
	}
	completion, err := f.store.GetCompletion(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetCompletion() error = %v", err)
	}
	if completion.CompletionStatus != models.StatusFailed {
		t.Errorf("status = %s, want FAILED", completion.CompletionStatus)
	}
	if !completion.CompletionDate.Equal(utils.Date(2024, 1, 5)) {
		t.Errorf("completion date = %v, want 2024-01-05", completion.CompletionDate)
	}
}

func TestSweepLeavesValidHabits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, utils.Date(2024, 1, 1))
	daily := f.habit(t, "Daily", models.PeriodicityDaily, nil)
	weekly := f.habit(t, "Weekly", models.PeriodicityWeekly, nil)

	f.checkin(t, daily, utils.Date(2024, 1, 1))
	f.checkin(t, weekly, utils.Date(2024, 1, 1))

	// Upper bound of the daily window is inclusive
	f.today = utils.Date(2024, 1, 2)
	result, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected no transitions, got %+v", result)
	}

	// Three days later only the daily habit lapsed
	f.today = utils.Date(2024, 1, 4)
	result, err = f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ids(result.Completed); len(got) != 1 || got[0] != daily.ID {
		t.Fatalf("Completed = %v, want [%s]", got, daily.ID)
	}

	cp, err := f.store.GetCheckpoint(ctx, weekly.ID)
	if err != nil {
		t.Fatalf("weekly checkpoint missing: %v", err)
	}
	if !cp.IsValidStreak {
		t.Error("weekly checkpoint should be untouched")
	}
}

func TestSweepFailsHabitWithoutCheckpoint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, utils.Date(2024, 1, 1))
	h := f.habit(t, "Never", models.PeriodicityDaily, nil)

	result, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Completed) != 1 || result.Completed[0].ID != h.ID {
		t.Fatalf("Completed = %v, want [%s]", ids(result.Completed), h.ID)
	}
	completion, err := f.store.GetCompletion(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetCompletion() error = %v", err)
	}
	if completion.CompletionStatus != models.StatusFailed {
		t.Errorf("status = %s, want FAILED", completion.CompletionStatus)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, utils.Date(2024, 1, 1))
	lapsed := f.habit(t, "Lapsed", models.PeriodicityDaily, nil)
	ok := f.habit(t, "Ok", models.PeriodicityWeekly, nil)
	f.checkin(t, lapsed, utils.Date(2024, 1, 1))
	f.checkin(t, ok, utils.Date(2024, 1, 1))

	f.today = utils.Date(2024, 1, 6)
	first, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if len(first.Completed) != 1 {
		t.Fatalf("first pass completed %d habits, want 1", len(first.Completed))
	}

	second, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(second.Completed) != 0 {
		t.Errorf("second pass completed %v, want none", ids(second.Completed))
	}
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, utils.Date(2024, 1, 1))
	broken := f.habit(t, "A broken", models.PeriodicityDaily, nil)
	lapsed := f.habit(t, "B lapsed", models.PeriodicityDaily, nil)
	f.checkin(t, broken, utils.Date(2024, 1, 1))
	f.checkin(t, lapsed, utils.Date(2024, 1, 1))

	boom := stderrors.New("disk on fire")
	f.completer.fail[broken.ID] = boom

	f.today = utils.Date(2024, 1, 10)
	result, err := f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Habit.ID != broken.ID || !stderrors.Is(result.Failed[0].Err, boom) {
		t.Fatalf("Failed = %+v, want %s", result.Failed, broken.ID)
	}
	if len(result.Completed) != 1 || result.Completed[0].ID != lapsed.ID {
		t.Fatalf("Completed = %v, want [%s]", ids(result.Completed), lapsed.ID)
	}

	// The unreconciled habit stays ongoing, flagged at risk, for the next pass
	cp, err := f.store.GetCheckpoint(ctx, broken.ID)
	if err != nil {
		t.Fatalf("GetCheckpoint() error = %v", err)
	}
	if cp.IsValidStreak {
		t.Error("expected is_valid_streak = false on unreconciled habit")
	}

	delete(f.completer.fail, broken.ID)
	result, err = f.validator.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Completed) != 1 || result.Completed[0].ID != broken.ID {
		t.Errorf("retry pass Completed = %v, want [%s]", ids(result.Completed), broken.ID)
	}
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, utils.Date(2024, 1, 1))
	f.habit(t, "Never", models.PeriodicityDaily, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.validator.Run(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
