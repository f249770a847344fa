package constants

import "time"

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitual"
	DefaultDBPath      = "~/.config/habitual/habitual.db"
	DefaultConfigFile  = "~/.config/habitual/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the date format used for every persisted and displayed date (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment variables
	EnvConfigPath   = "HABITUAL_CONFIG"
	EnvDBConnection = "HABITUAL_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "habitual.log"

	// Sweep constants
	DefaultSweepSchedule = "@daily"
	WatchLockfileName    = "habitual-watch.lock"
	SweepTimeout         = 5 * time.Minute

	// Storage drivers
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// Periodicity lengths in days
	DailyIntervalDays  = 1
	WeeklyIntervalDays = 7

	DefaultTimezone = "Local"
)
