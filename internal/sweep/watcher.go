package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// Runner performs one sweep pass
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Watcher runs the sweep on a cron schedule until its context is cancelled
type Watcher struct {
	runner   Runner
	schedule string
	lock     *Lock
	cron     *cron.Cron

	// BeforeRun, if set, is called before every scheduled pass. An error is
	// logged and the pass still runs.
	BeforeRun func(ctx context.Context) error
	// OnResult, if set, receives every completed pass
	OnResult func(Result)
}

// NewWatcher creates a watcher. An empty schedule uses the daily default.
func NewWatcher(runner Runner, schedule string, lock *Lock) (*Watcher, error) {
	if schedule == "" {
		schedule = constants.DefaultSweepSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return &Watcher{
		runner:   runner,
		schedule: schedule,
		lock:     lock,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Start acquires the lock and blocks running scheduled sweeps until ctx is done
func (w *Watcher) Start(ctx context.Context) error {
	if w.lock != nil {
		if err := w.lock.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := w.lock.Release(); err != nil {
				logger.Warn("Failed to release watcher lock", "error", err)
			}
		}()
	}

	if _, err := w.cron.AddFunc(w.schedule, func() { w.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logger.Info("Starting sweep watcher", "schedule", w.schedule)
	w.cron.Start()

	<-ctx.Done()

	logger.Info("Stopping sweep watcher")
	stopped := w.cron.Stop()
	<-stopped.Done()
	logger.Info("Sweep watcher stopped")
	return nil
}

func (w *Watcher) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, constants.SweepTimeout)
	defer cancel()

	started := time.Now()
	if w.BeforeRun != nil {
		if err := w.BeforeRun(ctx); err != nil {
			logger.Warn("Pre-sweep hook failed", "error", err)
		}
	}

	result, err := w.runner.Run(ctx)
	if err != nil {
		logger.Error("Scheduled sweep failed", "error", err)
		return
	}
	logger.Debug("Scheduled sweep completed", "duration", time.Since(started))
	if w.OnResult != nil {
		w.OnResult(result)
	}
}
