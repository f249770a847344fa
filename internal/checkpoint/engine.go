// Package checkpoint advances and evaluates a single habit's check-in window.
package checkpoint

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// Store is the subset of the Habit Store the engine reads and writes
type Store interface {
	GetCheckpoint(ctx context.Context, habitID string) (models.Checkpoint, error)
	UpsertCheckpoint(ctx context.Context, checkpoint models.Checkpoint) error
}

type Engine struct {
	store    Store
	clock    utils.Clock
	location *time.Location
}

// NewEngine creates an engine that resolves "today" from clock in loc.
// A nil clock uses time.Now and a nil location uses time.Local.
func NewEngine(store Store, clock utils.Clock, loc *time.Location) *Engine {
	return &Engine{
		store:    store,
		clock:    clock,
		location: loc,
	}
}

// Today returns the current civil date
func (e *Engine) Today() time.Time {
	return e.clock.TodayIn(e.location)
}

// Advance returns the deadline for the check-in following one made on date
func Advance(date time.Time, periodicity models.Periodicity) (time.Time, error) {
	switch periodicity {
	case models.PeriodicityDaily:
		return utils.AddDays(date, constants.DailyIntervalDays), nil
	case models.PeriodicityWeekly:
		return utils.AddDays(date, constants.WeeklyIntervalDays), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown periodicity %q", errors.ErrInvalidHabit, periodicity)
	}
}

// IsStreakValid reports whether today falls inside the checkpoint's window.
// Both bounds are inclusive; a checkpoint without a next date is never valid.
func (e *Engine) IsStreakValid(cp models.Checkpoint) bool {
	return InWindow(cp, e.Today())
}

// InWindow reports whether day lies in [current, next]
func InWindow(cp models.Checkpoint, day time.Time) bool {
	if cp.NextCheckpoint == nil {
		return false
	}
	day = utils.TruncateDay(day)
	return !day.Before(utils.TruncateDay(cp.CurrentCheckpoint)) &&
		!day.After(utils.TruncateDay(*cp.NextCheckpoint))
}

// Checkin records a check-in for today. The first check-in opens a fresh
// window; later ones store the validity of the old window and roll it forward.
func (e *Engine) Checkin(ctx context.Context, habit models.Habit) (models.Checkpoint, error) {
	if err := validate(habit); err != nil {
		return models.Checkpoint{}, err
	}

	today := e.Today()
	next, err := e.nextCheckpoint(habit, today)
	if err != nil {
		return models.Checkpoint{}, err
	}

	cp, err := e.store.GetCheckpoint(ctx, habit.ID)
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		cp = models.Checkpoint{
			HabitID:           habit.ID,
			LastCheckpoint:    today,
			CurrentCheckpoint: today,
			NextCheckpoint:    next,
			IsValidStreak:     true,
		}
		logger.Debug("Opening first checkpoint", "habit", habit.ID, "next", utils.FormatDate(next))
	case err != nil:
		return models.Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	default:
		cp.IsValidStreak = InWindow(cp, today)
		cp.LastCheckpoint = cp.CurrentCheckpoint
		cp.CurrentCheckpoint = today
		cp.NextCheckpoint = next
		logger.Debug("Advancing checkpoint", "habit", habit.ID, "valid", cp.IsValidStreak, "next", utils.FormatDate(next))
	}

	if err := e.store.UpsertCheckpoint(ctx, cp); err != nil {
		return models.Checkpoint{}, fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return cp, nil
}

// nextCheckpoint returns nil once the habit's target date has passed
func (e *Engine) nextCheckpoint(habit models.Habit, today time.Time) (*time.Time, error) {
	if habit.TargetPassed(today) {
		return nil, nil
	}
	next, err := Advance(today, habit.Periodicity)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func validate(habit models.Habit) error {
	if habit.ID == "" {
		return fmt.Errorf("%w: missing id", errors.ErrInvalidHabit)
	}
	if habit.CreatedAt.IsZero() {
		return fmt.Errorf("%w: habit %s has no creation date", errors.ErrInvalidHabit, habit.ID)
	}
	if !habit.Periodicity.Valid() {
		return fmt.Errorf("%w: habit %s has unknown periodicity %q", errors.ErrInvalidHabit, habit.ID, habit.Periodicity)
	}
	return nil
}
