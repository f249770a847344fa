// Package sweep reconciles ongoing habits whose check-in window lapsed
// without a further check-in.
package sweep

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// Store is the subset of the Habit Store the sweep reads and writes
type Store interface {
	ListOngoingHabits(ctx context.Context) ([]models.Habit, error)
	GetCheckpoint(ctx context.Context, habitID string) (models.Checkpoint, error)
	UpsertCheckpoint(ctx context.Context, checkpoint models.Checkpoint) error
}

// Checker decides whether a stored window is still open
type Checker interface {
	IsStreakValid(cp models.Checkpoint) bool
}

// Completer transitions a habit to a terminal state with a fixed status
type Completer interface {
	CompleteWithStatus(ctx context.Context, habit models.Habit, status models.CompletionStatus) (models.Completion, error)
}

// Failure is a habit the sweep could not reconcile
type Failure struct {
	Habit models.Habit
	Err   error
}

// Result reports one sweep pass
type Result struct {
	// Completed lists habits force-completed as FAILED this pass
	Completed []models.Habit
	// Failed lists habits whose transition errored; they stay ongoing
	Failed []Failure
}

// Empty reports whether the pass changed nothing and hit no errors
func (r Result) Empty() bool {
	return len(r.Completed) == 0 && len(r.Failed) == 0
}

type Validator struct {
	store     Store
	checker   Checker
	completer Completer
}

func NewValidator(store Store, checker Checker, completer Completer) *Validator {
	return &Validator{
		store:     store,
		checker:   checker,
		completer: completer,
	}
}

// Run checks every ongoing habit once. Each transition commits on its own,
// so an interrupted pass leaves the remaining habits for the next run.
func (v *Validator) Run(ctx context.Context) (Result, error) {
	habits, err := v.store.ListOngoingHabits(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list ongoing habits: %w", err)
	}

	var result Result
	for _, habit := range habits {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		broken, err := v.reconcile(ctx, habit)
		if err != nil {
			logger.Error("Failed to reconcile habit", "habit", habit.ID, "name", habit.Name, "error", err)
			result.Failed = append(result.Failed, Failure{Habit: habit, Err: err})
			continue
		}
		if broken {
			result.Completed = append(result.Completed, habit)
		}
	}

	logger.Info("Sweep finished", "checked", len(habits), "lapsed", len(result.Completed), "errors", len(result.Failed))
	return result, nil
}

// reconcile returns true if the habit was force-completed
func (v *Validator) reconcile(ctx context.Context, habit models.Habit) (bool, error) {
	cp, err := v.store.GetCheckpoint(ctx, habit.ID)
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		logger.Debug("Habit has no checkpoint", "habit", habit.ID)
	case err != nil:
		return false, fmt.Errorf("failed to load checkpoint: %w", err)
	case v.checker.IsStreakValid(cp):
		return false, nil
	default:
		cp.IsValidStreak = false
		if err := v.store.UpsertCheckpoint(ctx, cp); err != nil {
			return false, fmt.Errorf("failed to mark streak broken: %w", err)
		}
	}

	if _, err := v.completer.CompleteWithStatus(ctx, habit, models.StatusFailed); err != nil {
		return false, fmt.Errorf("failed to complete habit: %w", err)
	}
	logger.Info("Habit window lapsed", "habit", habit.ID, "name", habit.Name)
	return true, nil
}
