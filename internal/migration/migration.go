package migration

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrSchemaTooNew is returned when the database was migrated by a newer build.
	ErrSchemaTooNew = errors.New("database schema is newer than this build of habitual")
	// ErrSchemaBehind is returned when embedded migrations have not been applied yet.
	ErrSchemaBehind = errors.New("database schema has pending migrations")
)

// Migration is one versioned SQL file, e.g. 001_init.sql.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status compares the stored schema version with the embedded migrations.
type Status struct {
	Current int
	Latest  int
	Pending []Migration
}

// Check reports whether the schema can be used as is.
func (s Status) Check() error {
	switch {
	case s.Current > s.Latest:
		return fmt.Errorf("%w: database is at version %d, this build supports up to %d", ErrSchemaTooNew, s.Current, s.Latest)
	case s.Current < s.Latest:
		return fmt.Errorf("%w: database is at version %d, expected %d (run 'habitual init')", ErrSchemaBehind, s.Current, s.Latest)
	}
	return nil
}

// Runner applies the *.sql files at the root of an fs.FS to a database.
type Runner struct {
	db *sqlx.DB
	fs fs.FS
}

func NewRunner(db *sqlx.DB, migrationFS fs.FS) *Runner {
	return &Runner{db: db, fs: migrationFS}
}

// EnsureSchemaVersionTable creates schema_version when missing.
func (r *Runner) EnsureSchemaVersionTable() error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// GetCurrentVersion returns the stored version, 0 for a fresh database.
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return 0, err
	}

	var version int
	switch err := r.db.Get(&version, "SELECT version FROM schema_version"); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (r *Runner) SetVersion(version int) error {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return err
	}
	return r.inTx(func(tx *sqlx.Tx) error {
		return storeVersion(tx, version)
	})
}

// ReadMigrationFiles returns the migrations ordered by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		m, err := parseFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, entry.Name(), m.Version)
		}
		seen[m.Version] = entry.Name()

		body, err := fs.ReadFile(r.fs, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		m.SQL = string(body)
		out = append(out, m)
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

// parseFilename splits "NNN_name.sql" into version and name.
func parseFilename(name string) (Migration, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
	if !ok || rest == "" {
		return Migration{}, fmt.Errorf("migration %s: expected NNN_name.sql", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return Migration{}, fmt.Errorf("migration %s: bad version prefix: %w", name, err)
	}
	if version < 1 {
		return Migration{}, fmt.Errorf("migration %s: versions start at 1", name)
	}
	return Migration{Version: version, Name: rest}, nil
}

func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil || len(migrations) == 0 {
		return 0, err
	}
	return migrations[len(migrations)-1].Version, nil
}

// Status loads the stored version and the migrations still to run.
func (r *Runner) Status() (Status, error) {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return Status{}, err
	}
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return Status{}, err
	}

	st := Status{Current: current}
	for _, m := range migrations {
		st.Latest = m.Version
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// ApplyMigrations runs every pending migration, each in its own transaction
// together with the version bump. It returns how many were applied.
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	st, err := r.Status()
	if err != nil {
		return 0, err
	}
	if err := st.Check(); errors.Is(err, ErrSchemaTooNew) {
		return 0, err
	}
	if len(st.Pending) == 0 {
		logFn(fmt.Sprintf("Schema is current (version %d)", st.Current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating schema from version %d to %d", st.Current, st.Latest))
	started := time.Now()
	for i, m := range st.Pending {
		logFn(fmt.Sprintf("  %03d_%s", m.Version, m.Name))
		err := r.inTx(func(tx *sqlx.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return err
			}
			return storeVersion(tx, m.Version)
		})
		if err != nil {
			return i, fmt.Errorf("migration %03d_%s failed: %w", m.Version, m.Name, err)
		}
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", len(st.Pending), time.Since(started).Round(time.Millisecond)))

	return len(st.Pending), nil
}

// ValidateVersion fails unless the database is exactly at the latest version.
func (r *Runner) ValidateVersion() error {
	st, err := r.Status()
	if err != nil {
		return err
	}
	return st.Check()
}

func (r *Runner) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func storeVersion(tx *sqlx.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec(tx.Rebind("INSERT INTO schema_version (version) VALUES (?)"), version); err != nil {
		return fmt.Errorf("failed to store schema version: %w", err)
	}
	return nil
}
