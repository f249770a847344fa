package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitual/internal/models"
)

type completionRow struct {
	HabitID          string `db:"habit_id"`
	CompletionStatus string `db:"completion_status"`
	CompletionDate   string `db:"completion_date"`
}

func (r completionRow) toModel() (models.Completion, error) {
	status, err := models.ParseCompletionStatus(r.CompletionStatus)
	if err != nil {
		return models.Completion{}, fmt.Errorf("completion %s: %w", r.HabitID, err)
	}
	date, err := parseDate("completion_date", r.CompletionDate)
	if err != nil {
		return models.Completion{}, fmt.Errorf("completion %s: %w", r.HabitID, err)
	}
	return models.Completion{
		HabitID:          r.HabitID,
		CompletionStatus: status,
		CompletionDate:   date,
	}, nil
}

const completionColumns = "habit_id, completion_status, completion_date"

func (s *Store) GetCompletion(ctx context.Context, habitID string) (models.Completion, error) {
	var row completionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+completionColumns+` FROM completions WHERE habit_id = ?`), habitID)
	if err != nil {
		return models.Completion{}, notFound(err, "completion", habitID)
	}
	return row.toModel()
}

func (s *Store) ListCompletions(ctx context.Context) ([]models.Completion, error) {
	var rows []completionRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+completionColumns+` FROM completions ORDER BY completion_date, habit_id`); err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}

	completions := make([]models.Completion, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, nil
}

func (s *Store) CreateCompletion(ctx context.Context, completion models.Completion) error {
	return insertCompletion(ctx, s.db, completion)
}

func (s *Store) CompleteHabit(ctx context.Context, completion models.Completion) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertCompletion(ctx, tx, completion); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM checkpoints WHERE habit_id = ?`), completion.HabitID); err != nil {
			return fmt.Errorf("deleting checkpoint for habit %s: %w", completion.HabitID, err)
		}
		return nil
	})
}

func insertCompletion(ctx context.Context, ext sqlx.ExtContext, completion models.Completion) error {
	if !completion.CompletionStatus.Valid() {
		return fmt.Errorf("invalid completion status %q", completion.CompletionStatus)
	}
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO completions (`+completionColumns+`) VALUES (?, ?, ?)`),
		completion.HabitID, string(completion.CompletionStatus), formatDate(completion.CompletionDate))
	if err != nil {
		return fmt.Errorf("creating completion for habit %s: %w", completion.HabitID, err)
	}
	return nil
}

// ImportRecords writes habits, then completions, then checkpoints in a single
// transaction. A failure on any record leaves the store unchanged.
func (s *Store) ImportRecords(ctx context.Context, habits []models.Habit, completions []models.Completion, checkpoints []models.Checkpoint) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, h := range habits {
			if _, err := insertHabit(ctx, tx, h); err != nil {
				return err
			}
		}
		for _, c := range completions {
			if err := insertCompletion(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, cp := range checkpoints {
			if err := upsertCheckpoint(ctx, tx, cp); err != nil {
				return err
			}
		}
		return nil
	})
}
