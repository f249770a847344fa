package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/config"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/utils"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Timezone string         `yaml:"timezone"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	Path   string `yaml:"path"`   // SQLite file path or PostgreSQL connection string without password
}

type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Level string `yaml:"level"`
}

type SweepConfig struct {
	Schedule string `yaml:"schedule"` // cron spec for watch mode
	Backup   bool   `yaml:"backup"`   // snapshot SQLite before each scheduled sweep
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: constants.DriverSQLite,
			Path:   constants.DefaultDBPath,
		},
		Timezone: constants.DefaultTimezone,
		Logging: LoggingConfig{
			Level: "warn",
		},
		Sweep: SweepConfig{
			Schedule: constants.DefaultSweepSchedule,
			Backup:   true,
		},
	}
}

// Path returns the config file location: explicit path, then $HABITUAL_CONFIG, then the default
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(constants.EnvConfigPath); env != "" {
		return env
	}
	return constants.DefaultConfigFile
}

// Load layers the YAML file at path over the defaults. A missing file is not an error.
// ${VAR} references in the file are expanded from the environment.
func Load(path string) (*Config, error) {
	opts := []config.YAMLOption{
		config.Static(Default()),
		config.Expand(os.LookupEnv),
	}

	if path != "" {
		expanded, err := utils.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(expanded); err == nil {
			opts = append(opts, config.File(expanded))
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to access config file: %w", err)
		}
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create config provider: %w", err)
	}

	var cfg Config
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("failed to populate config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if IsPostgresConnString(c.Database.Path) {
		c.Database.Driver = constants.DriverPostgres
	}

	switch c.Database.Driver {
	case constants.DriverSQLite:
		path, err := utils.ExpandPath(c.Database.Path)
		if err != nil {
			return err
		}
		c.Database.Path = path
	case constants.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (expected %s or %s)",
			c.Database.Driver, constants.DriverSQLite, constants.DriverPostgres)
	}

	if _, err := utils.LoadLocation(c.Timezone); err != nil {
		return err
	}
	return nil
}

// Override applies command-line values on top of the loaded file. Empty
// values leave the file's settings in place.
func (c *Config) Override(database, timezone string, debug bool) error {
	if database != "" {
		c.Database.Path = database
		if !IsPostgresConnString(database) {
			c.Database.Driver = constants.DriverSQLite
		}
	}
	if timezone != "" {
		c.Timezone = timezone
	}
	if debug {
		c.Logging.Debug = true
	}
	return c.normalize()
}

// Location returns the timezone used to resolve "today"
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DataDir is the directory holding logs, backups and lockfiles
func (c *Config) DataDir() string {
	if c.Database.Driver == constants.DriverSQLite {
		return filepath.Dir(c.Database.Path)
	}
	dir, err := utils.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		return "."
	}
	return dir
}

// IsPostgresConnString reports whether s looks like a PostgreSQL URL
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}
