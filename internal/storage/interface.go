package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/habitual/internal/models"
)

// ErrNotFound is returned when a requested habit, checkpoint or completion does not exist
var ErrNotFound = errors.New("record not found")

// Provider is the durable Habit Store. Every method commits before returning;
// no transaction is held open across calls.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	// ListOngoingHabits returns habits without a completion, oldest first
	ListOngoingHabits(ctx context.Context) ([]models.Habit, error)
	// ListCompletedHabits returns habits with a completion, oldest first
	ListCompletedHabits(ctx context.Context) ([]models.Habit, error)

	// Checkpoints
	GetCheckpoint(ctx context.Context, habitID string) (models.Checkpoint, error)
	ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error)
	UpsertCheckpoint(ctx context.Context, checkpoint models.Checkpoint) error
	DeleteCheckpoint(ctx context.Context, habitID string) error

	// Completions
	GetCompletion(ctx context.Context, habitID string) (models.Completion, error)
	ListCompletions(ctx context.Context) ([]models.Completion, error)
	CreateCompletion(ctx context.Context, completion models.Completion) error
	// CompleteHabit creates the completion and deletes the habit's checkpoint atomically
	CompleteHabit(ctx context.Context, completion models.Completion) error

	// ImportRecords writes a batch of records in one transaction; either all
	// of them are stored or none are
	ImportRecords(ctx context.Context, habits []models.Habit, completions []models.Completion, checkpoints []models.Checkpoint) error

	// Utils
	GetConfigPath() string
}
