package models

import (
	"testing"
	"time"
)

func TestParsePeriodicity(t *testing.T) {
	tests := []struct {
		input   string
		want    Periodicity
		wantErr bool
	}{
		{"daily", PeriodicityDaily, false},
		{"Weekly", PeriodicityWeekly, false},
		{"  DAILY ", PeriodicityDaily, false},
		{"every day", PeriodicityDaily, false},
		{"every week", PeriodicityWeekly, false},
		{"monthly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriodicity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriodicity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriodicity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCompletionStatus(t *testing.T) {
	for _, s := range CompletionStatuses {
		got, err := ParseCompletionStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseCompletionStatus(%q) = %q, %v", s, got, err)
		}
	}
	if got, err := ParseCompletionStatus("succeeded"); err != nil || got != StatusSucceeded {
		t.Errorf("lowercase status should parse, got %q, %v", got, err)
	}
	if _, err := ParseCompletionStatus("DONE"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestHabitTargetPassed(t *testing.T) {
	target := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	h := Habit{TargetDate: &target}

	if h.TargetPassed(target) {
		t.Error("target date itself should not count as passed")
	}
	if !h.TargetPassed(target.AddDate(0, 0, 1)) {
		t.Error("day after target should count as passed")
	}
	if (Habit{}).TargetPassed(target) {
		t.Error("habit without target never passes it")
	}
}

func TestCheckpointState(t *testing.T) {
	if got := (Checkpoint{IsValidStreak: true}).State(); got != StateActive {
		t.Errorf("valid checkpoint state = %s, want %s", got, StateActive)
	}
	if got := (Checkpoint{}).State(); got != StateAtRisk {
		t.Errorf("invalid checkpoint state = %s, want %s", got, StateAtRisk)
	}
}
