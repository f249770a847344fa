package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// Get returns a habit with its checkpoint or completion and derived state
func (tr *Tracker) Get(ctx context.Context, habitID string) (models.HabitStatus, error) {
	habit, err := tr.habit(ctx, habitID)
	if err != nil {
		return models.HabitStatus{}, err
	}
	return tr.status(ctx, habit)
}

// List returns ongoing habits, or completed ones when completed is true
func (tr *Tracker) List(ctx context.Context, completed bool) ([]models.HabitStatus, error) {
	list := tr.store.ListOngoingHabits
	if completed {
		list = tr.store.ListCompletedHabits
	}

	habits, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	statuses := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		s, err := tr.status(ctx, h)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func (tr *Tracker) status(ctx context.Context, habit models.Habit) (models.HabitStatus, error) {
	s := models.HabitStatus{Habit: habit, State: models.StateNew}

	completion, err := tr.store.GetCompletion(ctx, habit.ID)
	switch {
	case err == nil:
		s.Completion = &completion
		s.State = models.StateCompleted
		return s, nil
	case !stderrors.Is(err, storage.ErrNotFound):
		return models.HabitStatus{}, fmt.Errorf("failed to load completion: %w", err)
	}

	cp, err := tr.store.GetCheckpoint(ctx, habit.ID)
	switch {
	case err == nil:
		s.Checkpoint = &cp
		s.State = cp.State()
	case !stderrors.Is(err, storage.ErrNotFound):
		return models.HabitStatus{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return s, nil
}
