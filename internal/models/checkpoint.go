package models

import "time"

// Checkpoint is the check-in window of an ongoing habit.
// At most one exists per habit and none once the habit is completed.
type Checkpoint struct {
	HabitID           string     `json:"habit_id" yaml:"habit_id"`
	LastCheckpoint    time.Time  `json:"last_checkpoint" yaml:"last_checkpoint"`
	CurrentCheckpoint time.Time  `json:"current_checkpoint" yaml:"current_checkpoint"`
	NextCheckpoint    *time.Time `json:"next_checkpoint,omitempty" yaml:"next_checkpoint,omitempty"` // nil once the target has passed
	IsValidStreak     bool       `json:"is_valid_streak" yaml:"is_valid_streak"`
}

// State maps the validity flag onto the habit state machine
func (c Checkpoint) State() HabitState {
	if c.IsValidStreak {
		return StateActive
	}
	return StateAtRisk
}
