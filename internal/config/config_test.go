package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitual/internal/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != constants.DriverSQLite {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Sweep.Schedule != constants.DefaultSweepSchedule {
		t.Errorf("schedule = %q, want %q", cfg.Sweep.Schedule, constants.DefaultSweepSchedule)
	}
	if !cfg.Sweep.Backup {
		t.Error("backup should default to true")
	}
	if filepath.Base(cfg.Database.Path) != "habitual.db" {
		t.Errorf("path = %q", cfg.Database.Path)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "custom.db")
	path := writeConfig(t, `
database:
  path: `+dbPath+`
timezone: UTC
logging:
  debug: true
sweep:
  schedule: "@every 1h"
  backup: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != dbPath {
		t.Errorf("path = %q, want %q", cfg.Database.Path, dbPath)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if !cfg.Logging.Debug {
		t.Error("debug should be true")
	}
	if cfg.Sweep.Schedule != "@every 1h" || cfg.Sweep.Backup {
		t.Errorf("sweep = %+v", cfg.Sweep)
	}
	// untouched keys keep their defaults
	if cfg.Database.Driver != constants.DriverSQLite {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HABITUAL_TEST_DIR", dir)
	path := writeConfig(t, "database:\n  path: ${HABITUAL_TEST_DIR}/env.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != filepath.Join(dir, "env.db") {
		t.Errorf("path = %q", cfg.Database.Path)
	}
	if cfg.DataDir() != dir {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), dir)
	}
}

func TestLoadPostgresConnString(t *testing.T) {
	path := writeConfig(t, "database:\n  path: postgres://habits@localhost:5432/habitual\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != constants.DriverPostgres {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv(constants.EnvConfigPath, "")
	if got := Path(""); got != constants.DefaultConfigFile {
		t.Errorf("Path() = %q", got)
	}

	t.Setenv(constants.EnvConfigPath, "/etc/habitual.yaml")
	if got := Path(""); got != "/etc/habitual.yaml" {
		t.Errorf("Path() with env = %q", got)
	}
	if got := Path("/explicit.yaml"); got != "/explicit.yaml" {
		t.Errorf("Path() explicit = %q", got)
	}
}

func TestOverride(t *testing.T) {
	cfg := Default()
	dbPath := filepath.Join(t.TempDir(), "flag.db")

	if err := cfg.Override(dbPath, "UTC", true); err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	if cfg.Database.Path != dbPath || cfg.Database.Driver != constants.DriverSQLite {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Location().String() != "UTC" {
		t.Errorf("Location() = %s, want UTC", cfg.Location())
	}
	if !cfg.Logging.Debug {
		t.Error("debug flag should enable debug logging")
	}

	if err := cfg.Override("postgres://me@localhost/habitual", "", false); err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	if cfg.Database.Driver != constants.DriverPostgres {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}

	if err := cfg.Override("", "Not/AZone", false); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
