package streaks

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/sweep"
)

type SweepCmd struct {
	Watch    bool   `help:"Keep running and sweep on a schedule."`
	Schedule string `help:"Cron schedule for watch mode (defaults to sweep.schedule from config)."`
}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Tracker.ValidateAll(ctx.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	if result.Empty() {
		ctx.Println("✓ All streaks are up to date.")
	} else {
		ctx.PrintSweepResult(result)
	}

	if !c.Watch {
		return nil
	}

	watcher, err := c.watcher(ctx)
	if err != nil {
		return err
	}
	ctx.Printf("Watching for lapsed streaks (schedule %q). Press Ctrl+C to stop.\n", c.schedule(ctx))
	return watcher.Start(ctx.Context())
}

func (c *SweepCmd) schedule(ctx *cli.Context) string {
	if c.Schedule != "" {
		return c.Schedule
	}
	if ctx.Config != nil {
		return ctx.Config.Sweep.Schedule
	}
	return ""
}

func (c *SweepCmd) watcher(ctx *cli.Context) (*sweep.Watcher, error) {
	dir := "."
	if ctx.Config != nil {
		dir = ctx.Config.DataDir()
	}

	w, err := sweep.NewWatcher(ctx.Tracker.Validator(), c.schedule(ctx), sweep.NewLock(dir))
	if err != nil {
		return nil, err
	}

	if ctx.UsesSQLite() && (ctx.Config == nil || ctx.Config.Sweep.Backup) {
		w.BeforeRun = func(context.Context) error {
			_, err := backup.NewManager(ctx.Store.GetConfigPath()).Create()
			return err
		}
	}
	w.OnResult = ctx.PrintSweepResult
	return w, nil
}
