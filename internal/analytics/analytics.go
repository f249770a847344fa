// Package analytics computes streak metrics over habit populations.
// Everything here is read-only.
package analytics

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// Ongoing pairs an ongoing habit with its checkpoint
type Ongoing struct {
	Habit      models.Habit
	Checkpoint models.Checkpoint
}

// Completed pairs a completed habit with its completion
type Completed struct {
	Habit      models.Habit
	Completion models.Completion
}

// OngoingStreakLength is the number of days from creation to the latest check-in, never negative
func OngoingStreakLength(habit models.Habit, cp models.Checkpoint) int {
	return clampedDays(habit, cp.CurrentCheckpoint)
}

// TotalStreakLength is the number of days from creation to completion, never negative
func TotalStreakLength(habit models.Habit, completion models.Completion) int {
	return clampedDays(habit, completion.CompletionDate)
}

func clampedDays(habit models.Habit, end time.Time) int {
	return max(0, utils.DaysBetween(habit.CreatedAt, end))
}

// LongestOngoingStreak returns the largest ongoing streak, or ErrEmptyPopulation
func LongestOngoingStreak(entries []Ongoing) (int, error) {
	if len(entries) == 0 {
		return 0, errors.ErrEmptyPopulation
	}
	longest := 0
	for _, e := range entries {
		longest = max(longest, OngoingStreakLength(e.Habit, e.Checkpoint))
	}
	return longest, nil
}

// LongestTotalStreak returns the largest completed streak, or ErrEmptyPopulation
func LongestTotalStreak(entries []Completed) (int, error) {
	if len(entries) == 0 {
		return 0, errors.ErrEmptyPopulation
	}
	longest := 0
	for _, e := range entries {
		longest = max(longest, TotalStreakLength(e.Habit, e.Completion))
	}
	return longest, nil
}

// GroupByPeriodicity partitions habits into daily and weekly buckets.
// Habits with any other periodicity are left out.
func GroupByPeriodicity(habits []models.Habit) map[models.Periodicity][]models.Habit {
	groups := make(map[models.Periodicity][]models.Habit, len(models.Periodicities))
	for _, p := range models.Periodicities {
		groups[p] = []models.Habit{}
	}
	for _, h := range habits {
		if _, ok := groups[h.Periodicity]; ok {
			groups[h.Periodicity] = append(groups[h.Periodicity], h)
		}
	}
	return groups
}

// StatusBreakdown counts completions per status
func StatusBreakdown(completions []models.Completion) map[models.CompletionStatus]int {
	counts := make(map[models.CompletionStatus]int, len(models.CompletionStatuses))
	for _, s := range models.CompletionStatuses {
		counts[s] = 0
	}
	for _, c := range completions {
		counts[c.CompletionStatus]++
	}
	return counts
}

// Store is the read-only subset of the Habit Store analytics needs
type Store interface {
	ListOngoingHabits(ctx context.Context) ([]models.Habit, error)
	ListCompletedHabits(ctx context.Context) ([]models.Habit, error)
	GetCheckpoint(ctx context.Context, habitID string) (models.Checkpoint, error)
	ListCompletions(ctx context.Context) ([]models.Completion, error)
}

type Analyzer struct {
	store Store
}

func NewAnalyzer(store Store) *Analyzer {
	return &Analyzer{store: store}
}

// Analyze builds a report over the ongoing and completed populations.
// An empty population reports a streak of 0; CheckedInCount and
// CompletedCount tell it apart from a real zero-day streak.
func (a *Analyzer) Analyze(ctx context.Context) (models.Report, error) {
	ongoing, ongoingHabits, err := a.ongoing(ctx)
	if err != nil {
		return models.Report{}, err
	}
	completed, completions, err := a.completed(ctx)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		OngoingCount:   len(ongoingHabits),
		CheckedInCount: len(ongoing),
		CompletedCount: len(completed),
		StatusCounts:   StatusBreakdown(completions),
	}

	if report.LongestOngoingStreak, err = LongestOngoingStreak(ongoing); err != nil && !stderrors.Is(err, errors.ErrEmptyPopulation) {
		return models.Report{}, err
	}
	if report.LongestTotalStreak, err = LongestTotalStreak(completed); err != nil && !stderrors.Is(err, errors.ErrEmptyPopulation) {
		return models.Report{}, err
	}

	groups := GroupByPeriodicity(ongoingHabits)
	report.DailyHabits = groups[models.PeriodicityDaily]
	report.WeeklyHabits = groups[models.PeriodicityWeekly]

	return report, nil
}

func (a *Analyzer) ongoing(ctx context.Context) ([]Ongoing, []models.Habit, error) {
	habits, err := a.store.ListOngoingHabits(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ongoing habits: %w", err)
	}

	entries := make([]Ongoing, 0, len(habits))
	for _, h := range habits {
		cp, err := a.store.GetCheckpoint(ctx, h.ID)
		if stderrors.Is(err, storage.ErrNotFound) {
			logger.Debug("Skipping habit without checkpoint", "habit", h.ID)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load checkpoint for %s: %w", h.ID, err)
		}
		entries = append(entries, Ongoing{Habit: h, Checkpoint: cp})
	}
	return entries, habits, nil
}

func (a *Analyzer) completed(ctx context.Context) ([]Completed, []models.Completion, error) {
	habits, err := a.store.ListCompletedHabits(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completed habits: %w", err)
	}
	completions, err := a.store.ListCompletions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completions: %w", err)
	}

	byHabit := make(map[string]models.Completion, len(completions))
	for _, c := range completions {
		byHabit[c.HabitID] = c
	}

	entries := make([]Completed, 0, len(habits))
	for _, h := range habits {
		c, ok := byHabit[h.ID]
		if !ok {
			continue
		}
		entries = append(entries, Completed{Habit: h, Completion: c})
	}
	return entries, completions, nil
}
