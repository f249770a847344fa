package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitual/internal/models"
)

type habitRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Periodicity string         `db:"periodicity"`
	CreatedAt   string         `db:"created_at"`
	TargetDate  sql.NullString `db:"target_date"`
}

func (r habitRow) toModel() (models.Habit, error) {
	h := models.Habit{
		ID:          r.ID,
		Name:        r.Name,
		Periodicity: models.Periodicity(r.Periodicity),
	}

	var err error
	h.CreatedAt, err = parseDate("created_at", r.CreatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", r.ID, err)
	}
	h.TargetDate, err = parseNullDate("target_date", r.TargetDate)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", r.ID, err)
	}
	return h, nil
}

const habitColumns = "h.id, h.name, h.periodicity, h.created_at, h.target_date"

// CreateHabit inserts a new habit, generating a UUID if ID is empty
func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	return insertHabit(ctx, s.db, habit)
}

func insertHabit(ctx context.Context, ext sqlx.ExtContext, habit models.Habit) (models.Habit, error) {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}

	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO habits (id, name, periodicity, created_at, target_date)
		VALUES (?, ?, ?, ?, ?)`),
		habit.ID, habit.Name, string(habit.Periodicity),
		formatDate(habit.CreatedAt), formatNullDate(habit.TargetDate))
	if err != nil {
		return models.Habit{}, fmt.Errorf("creating habit %s: %w", habit.ID, err)
	}
	return habit, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	var row habitRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+habitColumns+` FROM habits h WHERE h.id = ?`), id)
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	return row.toModel()
}

func (s *Store) ListOngoingHabits(ctx context.Context) ([]models.Habit, error) {
	return s.listHabits(ctx, `
		SELECT `+habitColumns+`
		FROM habits h
		LEFT JOIN completions c ON c.habit_id = h.id
		WHERE c.habit_id IS NULL
		ORDER BY h.created_at, h.name`)
}

func (s *Store) ListCompletedHabits(ctx context.Context) ([]models.Habit, error) {
	return s.listHabits(ctx, `
		SELECT `+habitColumns+`
		FROM habits h
		JOIN completions c ON c.habit_id = h.id
		ORDER BY h.created_at, h.name`)
}

func (s *Store) listHabits(ctx context.Context, query string) ([]models.Habit, error) {
	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	habits := make([]models.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toModel()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}
