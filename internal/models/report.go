package models

// Report aggregates streak metrics over the ongoing and completed populations
type Report struct {
	LongestOngoingStreak int                      `json:"longest_ongoing_streak"`
	LongestTotalStreak   int                      `json:"longest_total_streak"`
	DailyHabits          []Habit                  `json:"daily_habits"`
	WeeklyHabits         []Habit                  `json:"weekly_habits"`
	OngoingCount         int                      `json:"ongoing_count"`
	// CheckedInCount is the number of ongoing habits with a checkpoint, the
	// population LongestOngoingStreak is taken over
	CheckedInCount       int                      `json:"checked_in_count"`
	CompletedCount       int                      `json:"completed_count"`
	StatusCounts         map[CompletionStatus]int `json:"status_counts"`
}

// HabitStatus bundles a habit with its current checkpoint or completion
type HabitStatus struct {
	Habit      Habit
	Checkpoint *Checkpoint
	Completion *Completion
	State      HabitState
}
