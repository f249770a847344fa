package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitual/internal/models"
)

type checkpointRow struct {
	HabitID           string         `db:"habit_id"`
	LastCheckpoint    string         `db:"last_checkpoint"`
	CurrentCheckpoint string         `db:"current_checkpoint"`
	NextCheckpoint    sql.NullString `db:"next_checkpoint"`
	IsValidStreak     bool           `db:"is_valid_streak"`
}

func (r checkpointRow) toModel() (models.Checkpoint, error) {
	c := models.Checkpoint{
		HabitID:       r.HabitID,
		IsValidStreak: r.IsValidStreak,
	}

	var err error
	if c.LastCheckpoint, err = parseDate("last_checkpoint", r.LastCheckpoint); err != nil {
		return models.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", r.HabitID, err)
	}
	if c.CurrentCheckpoint, err = parseDate("current_checkpoint", r.CurrentCheckpoint); err != nil {
		return models.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", r.HabitID, err)
	}
	if c.NextCheckpoint, err = parseNullDate("next_checkpoint", r.NextCheckpoint); err != nil {
		return models.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", r.HabitID, err)
	}
	return c, nil
}

const checkpointColumns = "habit_id, last_checkpoint, current_checkpoint, next_checkpoint, is_valid_streak"

func (s *Store) GetCheckpoint(ctx context.Context, habitID string) (models.Checkpoint, error) {
	var row checkpointRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+checkpointColumns+` FROM checkpoints WHERE habit_id = ?`), habitID)
	if err != nil {
		return models.Checkpoint{}, notFound(err, "checkpoint", habitID)
	}
	return row.toModel()
}

func (s *Store) ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error) {
	var rows []checkpointRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+checkpointColumns+` FROM checkpoints ORDER BY habit_id`); err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}

	checkpoints := make([]models.Checkpoint, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, c)
	}
	return checkpoints, nil
}

func (s *Store) UpsertCheckpoint(ctx context.Context, checkpoint models.Checkpoint) error {
	return upsertCheckpoint(ctx, s.db, checkpoint)
}

func upsertCheckpoint(ctx context.Context, ext sqlx.ExtContext, checkpoint models.Checkpoint) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO checkpoints (`+checkpointColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			last_checkpoint = excluded.last_checkpoint,
			current_checkpoint = excluded.current_checkpoint,
			next_checkpoint = excluded.next_checkpoint,
			is_valid_streak = excluded.is_valid_streak`),
		checkpoint.HabitID,
		formatDate(checkpoint.LastCheckpoint),
		formatDate(checkpoint.CurrentCheckpoint),
		formatNullDate(checkpoint.NextCheckpoint),
		checkpoint.IsValidStreak)
	if err != nil {
		return fmt.Errorf("saving checkpoint for habit %s: %w", checkpoint.HabitID, err)
	}
	return nil
}

// DeleteCheckpoint removes a habit's checkpoint. Deleting a missing checkpoint is not an error.
func (s *Store) DeleteCheckpoint(ctx context.Context, habitID string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM checkpoints WHERE habit_id = ?`), habitID)
	if err != nil {
		return fmt.Errorf("deleting checkpoint for habit %s: %w", habitID, err)
	}
	return nil
}
