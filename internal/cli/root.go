package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/lifecycle"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/sweep"
	"github.com/julianstephens/habitual/internal/utils"
)

type Context struct {
	Ctx     context.Context
	Store   storage.Provider
	Tracker *lifecycle.Tracker
	Config  *config.Config
	Out     io.Writer
	In      io.Reader
}

// Context returns the request context, defaulting to Background
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Confirm asks a yes/no question on the context's input
func (c *Context) Confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.Printf("%s [y/N]: ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// UsesSQLite reports whether the habit store is a local SQLite file
func (c *Context) UsesSQLite() bool {
	return c.Config == nil || c.Config.Database.Driver == constants.DriverSQLite
}

// Reconcile runs the sweep once and reports habits it force-completed
func (c *Context) Reconcile() error {
	result, err := c.Tracker.ValidateAll(c.Context())
	if err != nil {
		return fmt.Errorf("failed to validate streaks: %w", err)
	}
	c.PrintSweepResult(result)
	return nil
}

func (c *Context) PrintSweepResult(result sweep.Result) {
	if len(result.Completed) > 0 {
		c.Printf("⚠ %d habit(s) missed their check-in window and were marked FAILED:\n", len(result.Completed))
		for _, h := range result.Completed {
			c.Printf("   - %s (%s)\n", h.Name, ShortID(h.ID))
		}
	}
	for _, f := range result.Failed {
		c.Printf("❌ Could not reconcile %s (%s): %v\n", f.Habit.Name, ShortID(f.Habit.ID), f.Err)
	}
}

// PerformAutomaticBackup creates a backup and logs failures without interrupting the user
func (c *Context) PerformAutomaticBackup() {
	if !c.UsesSQLite() {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveID expands a unique id prefix to the full habit id. Anything that
// is not a unique prefix is returned unchanged.
func (c *Context) ResolveID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	ctx := c.Context()

	ongoing, err := c.Store.ListOngoingHabits(ctx)
	if err != nil {
		return "", err
	}
	completed, err := c.Store.ListCompletedHabits(ctx)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, h := range append(ongoing, completed...) {
		if h.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(h.ID, arg) {
			matches = append(matches, h.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("id prefix %q is ambiguous (%d habits match)", arg, len(matches))
	}
	return arg, nil
}

// ShortID returns the first eight characters of an id for display
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatWindow renders a checkpoint's check-in window
func FormatWindow(cp *models.Checkpoint) string {
	if cp == nil {
		return "no check-ins"
	}
	if cp.NextCheckpoint == nil {
		return fmt.Sprintf("last %s, target reached", utils.FormatDate(&cp.CurrentCheckpoint))
	}
	return fmt.Sprintf("%s → %s", utils.FormatDate(&cp.CurrentCheckpoint), utils.FormatDate(cp.NextCheckpoint))
}

// FormatState renders a habit's state, including its completion status
func FormatState(s models.HabitStatus) string {
	if s.Completion != nil {
		return fmt.Sprintf("%s (%s)", s.State, s.Completion.CompletionStatus)
	}
	return string(s.State)
}
