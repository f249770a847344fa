package models

import (
	"fmt"
	"strings"
	"time"
)

// CompletionStatus is the terminal classification of a habit
type CompletionStatus string

const (
	StatusSucceeded CompletionStatus = "SUCCEEDED"
	StatusFailed    CompletionStatus = "FAILED"
	StatusAborted   CompletionStatus = "ABORTED"
)

// CompletionStatuses lists every status in display order
var CompletionStatuses = []CompletionStatus{StatusSucceeded, StatusFailed, StatusAborted}

func ParseCompletionStatus(s string) (CompletionStatus, error) {
	switch CompletionStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusSucceeded:
		return StatusSucceeded, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusAborted:
		return StatusAborted, nil
	default:
		return "", fmt.Errorf("unknown completion status %q", s)
	}
}

func (s CompletionStatus) Valid() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusAborted
}

func (s CompletionStatus) String() string { return string(s) }

// Completion records how and when a habit ended. Created once per habit.
type Completion struct {
	HabitID          string           `json:"habit_id" yaml:"habit_id"`
	CompletionStatus CompletionStatus `json:"completion_status" yaml:"completion_status"`
	CompletionDate   time.Time        `json:"completion_date" yaml:"completion_date"`
}
