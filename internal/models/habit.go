package models

import (
	"fmt"
	"strings"
	"time"
)

// Periodicity is how often a habit must be checked in
type Periodicity string

const (
	PeriodicityDaily  Periodicity = "daily"
	PeriodicityWeekly Periodicity = "weekly"
)

// Periodicities lists every supported periodicity in display order
var Periodicities = []Periodicity{PeriodicityDaily, PeriodicityWeekly}

// ParsePeriodicity accepts the canonical names case-insensitively, plus the
// "every day" / "every week" spellings found in older seed files.
func ParsePeriodicity(s string) (Periodicity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "every day":
		return PeriodicityDaily, nil
	case "weekly", "every week":
		return PeriodicityWeekly, nil
	default:
		return "", fmt.Errorf("unknown periodicity %q (expected daily or weekly)", s)
	}
}

func (p Periodicity) Valid() bool {
	return p == PeriodicityDaily || p == PeriodicityWeekly
}

func (p Periodicity) String() string { return string(p) }

// Habit represents a recurring commitment being tracked
type Habit struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Periodicity Periodicity `json:"periodicity" yaml:"periodicity"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`                       // civil date, midnight UTC
	TargetDate  *time.Time  `json:"target_date,omitempty" yaml:"target_date,omitempty"` // nil means no expiry
}

// HasTarget reports whether the habit has an end date
func (h Habit) HasTarget() bool {
	return h.TargetDate != nil
}

// TargetPassed reports whether today is strictly after the habit's target date
func (h Habit) TargetPassed(today time.Time) bool {
	return h.TargetDate != nil && today.After(*h.TargetDate)
}

// HabitState is the derived lifecycle state of a habit
type HabitState string

const (
	StateNew       HabitState = "NEW"
	StateActive    HabitState = "ACTIVE"
	StateAtRisk    HabitState = "AT_RISK"
	StateCompleted HabitState = "COMPLETED"
)
