package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/utils"
)

// sqlStore is implemented by the SQLite and PostgreSQL stores
type sqlStore interface {
	DB() *sqlx.DB
	MigrationRunner() (*migration.Runner, error)
}

type check struct {
	name        string
	run         func(*cli.Context) error
	needsDB     bool
	warningOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Habit records readable", run: checkRecordsReadable, needsDB: true},
	{name: "Habit integrity", run: checkHabitIntegrity, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warningOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", run: checkKeyring, warningOnly: true},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED\n", c.name)
		case err != nil && c.warningOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		case err != nil:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		default:
			ctx.Printf("✓ %s: OK\n", c.name)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

var errSkipped = errors.New("check skipped")

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, ok := ctx.Store.(sqlStore)
	if !ok {
		return nil
	}
	var result int
	if err := store.DB().GetContext(ctx.Context(), &result, "SELECT 1"); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaStatus(ctx *cli.Context) (migration.Status, error) {
	store, ok := ctx.Store.(sqlStore)
	if !ok {
		return migration.Status{}, errSkipped
	}
	runner, err := store.MigrationRunner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if err := st.Check(); errors.Is(err, migration.ErrSchemaTooNew) {
		return err
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("%d migration(s) pending: current version %d, latest version %d", len(st.Pending), st.Current, st.Latest)
	}
	return nil
}

// checkRecordsReadable loads every record, which surfaces malformed dates
func checkRecordsReadable(ctx *cli.Context) error {
	c := ctx.Context()
	if _, err := ctx.Store.ListOngoingHabits(c); err != nil {
		return err
	}
	if _, err := ctx.Store.ListCompletedHabits(c); err != nil {
		return err
	}
	if _, err := ctx.Store.ListCompletions(c); err != nil {
		return err
	}
	_, err := ctx.Store.ListCheckpoints(c)
	return err
}

// checkHabitIntegrity finds completed habits that still have a checkpoint
func checkHabitIntegrity(ctx *cli.Context) error {
	store, ok := ctx.Store.(sqlStore)
	if !ok {
		return errSkipped
	}

	var count int
	err := store.DB().GetContext(ctx.Context(), &count, `
		SELECT COUNT(*)
		FROM checkpoints cp
		JOIN completions c ON c.habit_id = cp.habit_id
	`)
	if err != nil {
		return fmt.Errorf("failed to check checkpoints: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("found %d completed habits that still have a checkpoint", count)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.UsesSQLite() {
		return errSkipped
	}

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitual backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config != nil {
		if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
			return err
		}
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.UsesSQLite() {
		return errSkipped
	}
	if !keyring.Available() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
