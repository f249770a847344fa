package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrInvalidHabit is returned for habits with missing or malformed required fields
	ErrInvalidHabit = stderrors.New("invalid habit")
	// ErrHabitNotFound is returned when a habit id does not resolve
	ErrHabitNotFound = stderrors.New("habit not found")
	// ErrAlreadyCompleted is returned when a completed habit is checked in or completed again
	ErrAlreadyCompleted = stderrors.New("habit already completed")
	// ErrNoActiveCheckpoint marks a habit that was never checked in. It is expected
	// on the ABORTED completion path and is never returned to callers of Complete.
	ErrNoActiveCheckpoint = stderrors.New("no active checkpoint")
	// ErrEmptyPopulation is returned by aggregate metrics over an empty habit set
	ErrEmptyPopulation = stderrors.New("no habits to aggregate")
)

// Describe returns a user-facing hint for members of the error taxonomy.
// Errors outside the taxonomy are returned unchanged.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrHabitNotFound):
		return fmt.Sprintf("%v (run 'habitual habit list' to see habit ids)", err)
	case stderrors.Is(err, ErrAlreadyCompleted):
		return fmt.Sprintf("%v (completed habits are permanent; create a new habit to start over)", err)
	case stderrors.Is(err, ErrInvalidHabit):
		return fmt.Sprintf("%v (check the name, periodicity and target date)", err)
	case stderrors.Is(err, ErrEmptyPopulation):
		return fmt.Sprintf("%v (add a habit with 'habitual habit add')", err)
	default:
		return err.Error()
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", Describe(err))
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
