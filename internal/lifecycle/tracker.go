// Package lifecycle orchestrates habit creation, check-in and completion.
// Checkpoints are only created or deleted through a Tracker.
package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/checkpoint"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/sweep"
	"github.com/julianstephens/habitual/internal/utils"
)

type Tracker struct {
	store     storage.Provider
	engine    *checkpoint.Engine
	analyzer  *analytics.Analyzer
	validator *sweep.Validator
}

// New wires a tracker over an opened store. "Today" is resolved from clock in loc.
func New(store storage.Provider, clock utils.Clock, loc *time.Location) *Tracker {
	tr := &Tracker{
		store:    store,
		engine:   checkpoint.NewEngine(store, clock, loc),
		analyzer: analytics.NewAnalyzer(store),
	}
	tr.validator = sweep.NewValidator(store, tr.engine, tr)
	return tr
}

// Today returns the current civil date
func (tr *Tracker) Today() time.Time {
	return tr.engine.Today()
}

// Validator exposes the sweep for scheduled runs
func (tr *Tracker) Validator() *sweep.Validator {
	return tr.validator
}

// Create persists a new habit starting today and performs its first check-in
func (tr *Tracker) Create(ctx context.Context, name string, periodicity models.Periodicity, target *time.Time) (models.Habit, error) {
	today := tr.Today()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, fmt.Errorf("%w: name cannot be empty", errors.ErrInvalidHabit)
	}
	if !periodicity.Valid() {
		return models.Habit{}, fmt.Errorf("%w: unknown periodicity %q", errors.ErrInvalidHabit, periodicity)
	}
	if target != nil {
		day := utils.TruncateDay(*target)
		if day.Before(today) {
			return models.Habit{}, fmt.Errorf("%w: target date %s is in the past", errors.ErrInvalidHabit, utils.FormatDate(&day))
		}
		target = &day
	}

	habit, err := tr.store.CreateHabit(ctx, models.Habit{
		Name:        name,
		Periodicity: periodicity,
		CreatedAt:   today,
		TargetDate:  target,
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}

	if _, err := tr.engine.Checkin(ctx, habit); err != nil {
		return models.Habit{}, fmt.Errorf("failed initial check-in: %w", err)
	}

	logger.Info("Created habit", "habit", habit.ID, "name", habit.Name, "periodicity", habit.Periodicity)
	return habit, nil
}

// Checkin records today's check-in for an ongoing habit
func (tr *Tracker) Checkin(ctx context.Context, habitID string) (models.Checkpoint, error) {
	habit, err := tr.ongoingHabit(ctx, habitID)
	if err != nil {
		return models.Checkpoint{}, err
	}

	cp, err := tr.engine.Checkin(ctx, habit)
	if err != nil {
		return models.Checkpoint{}, err
	}
	logger.Info("Checked in", "habit", habit.ID, "valid", cp.IsValidStreak)
	return cp, nil
}

// Complete ends a habit. The status follows from its checkpoint: SUCCEEDED
// for a valid streak, FAILED for a broken one and ABORTED when the habit
// has no checkpoint.
func (tr *Tracker) Complete(ctx context.Context, habitID string) (models.Completion, error) {
	habit, err := tr.ongoingHabit(ctx, habitID)
	if err != nil {
		return models.Completion{}, err
	}

	status, err := tr.statusFor(ctx, habit)
	if err != nil {
		return models.Completion{}, err
	}
	return tr.complete(ctx, habit, status)
}

// CompleteWithStatus ends a habit with a fixed status
func (tr *Tracker) CompleteWithStatus(ctx context.Context, habit models.Habit, status models.CompletionStatus) (models.Completion, error) {
	if !status.Valid() {
		return models.Completion{}, fmt.Errorf("invalid completion status %q", status)
	}
	if err := tr.ensureOngoing(ctx, habit.ID); err != nil {
		return models.Completion{}, err
	}
	return tr.complete(ctx, habit, status)
}

// ValidateAll runs one sweep pass and returns its result
func (tr *Tracker) ValidateAll(ctx context.Context) (sweep.Result, error) {
	return tr.validator.Run(ctx)
}

// Analyze reports streak metrics over all habits
func (tr *Tracker) Analyze(ctx context.Context) (models.Report, error) {
	return tr.analyzer.Analyze(ctx)
}

func (tr *Tracker) statusFor(ctx context.Context, habit models.Habit) (models.CompletionStatus, error) {
	cp, err := tr.store.GetCheckpoint(ctx, habit.ID)
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		logger.Info("Completing habit without checkpoint", "habit", habit.ID, "reason", errors.ErrNoActiveCheckpoint)
		return models.StatusAborted, nil
	case err != nil:
		return "", fmt.Errorf("failed to load checkpoint: %w", err)
	case cp.IsValidStreak:
		return models.StatusSucceeded, nil
	default:
		return models.StatusFailed, nil
	}
}

func (tr *Tracker) complete(ctx context.Context, habit models.Habit, status models.CompletionStatus) (models.Completion, error) {
	completion := models.Completion{
		HabitID:          habit.ID,
		CompletionStatus: status,
		CompletionDate:   tr.Today(),
	}
	if err := tr.store.CompleteHabit(ctx, completion); err != nil {
		return models.Completion{}, fmt.Errorf("failed to complete habit: %w", err)
	}
	logger.Info("Completed habit", "habit", habit.ID, "status", status)
	return completion, nil
}

// ongoingHabit resolves an id to a habit that has not been completed
func (tr *Tracker) ongoingHabit(ctx context.Context, habitID string) (models.Habit, error) {
	habit, err := tr.habit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if err := tr.ensureOngoing(ctx, habit.ID); err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (tr *Tracker) habit(ctx context.Context, habitID string) (models.Habit, error) {
	habit, err := tr.store.GetHabit(ctx, habitID)
	if stderrors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("%w: %s", errors.ErrHabitNotFound, habitID)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to load habit: %w", err)
	}
	return habit, nil
}

func (tr *Tracker) ensureOngoing(ctx context.Context, habitID string) error {
	_, err := tr.store.GetCompletion(ctx, habitID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", errors.ErrAlreadyCompleted, habitID)
	case stderrors.Is(err, storage.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to load completion: %w", err)
	}
}
