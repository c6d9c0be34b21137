package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/records"
	"github.com/DukeRupert/parkchain/internal/storage"
)

type Config struct {
	Env      string
	LogLevel string

	// Timestamps in the chain file and typed at the console are read in Location.
	Timezone string
	Location *time.Location

	LoadMode records.LoadMode

	// Admission policy switches
	StrictIntervals         bool
	RestoreLastExitOnReject bool
	UniqueNames             bool

	// Metrics listener, disabled when empty
	MetricsAddr string

	// Backup of the saved file: "none", "local" or "r2"
	BackupProvider  string
	LocalBackupPath string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string

	// SQL archive, disabled when ArchiveDriver is empty
	ArchiveDriver string // "pgx" or "sqlite"
	ArchiveURL    string

	// Workbook written at shutdown, disabled when empty
	ReportPath string

	// Upper bound for archive, backup and report together
	PostSaveTimeout time.Duration
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "Local"),

		StrictIntervals:         getEnvBool("STRICT_INTERVALS", false),
		RestoreLastExitOnReject: getEnvBool("RESTORE_LAST_EXIT_ON_REJECT", false),
		UniqueNames:             getEnvBool("UNIQUE_NAMES", false),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		BackupProvider:  getEnv("BACKUP_PROVIDER", storage.ProviderNone),
		LocalBackupPath: getEnv("LOCAL_BACKUP_PATH", "./backups"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		ArchiveDriver: getEnv("ARCHIVE_DRIVER", ""),
		ArchiveURL:    getEnv("ARCHIVE_URL", ""),

		ReportPath: getEnv("REPORT_PATH", ""),

		PostSaveTimeout: getEnvDuration("POST_SAVE_TIMEOUT", 30*time.Second),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE is not a valid location: %w", err)
	}
	cfg.Location = loc

	mode, err := records.ParseLoadMode(getEnv("LOAD_MODE", string(records.LoadModeAbort)))
	if err != nil {
		return nil, fmt.Errorf("LOAD_MODE: %w", err)
	}
	cfg.LoadMode = mode

	// Validate backup configuration
	switch cfg.BackupProvider {
	case storage.ProviderNone:
	case storage.ProviderLocal:
		if cfg.LocalBackupPath == "" {
			return nil, fmt.Errorf("LOCAL_BACKUP_PATH is required when BACKUP_PROVIDER is 'local'")
		}
	case storage.ProviderR2:
		if cfg.R2AccountID == "" && cfg.R2Endpoint == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required when BACKUP_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when BACKUP_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when BACKUP_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when BACKUP_PROVIDER is 'r2'")
		}
	default:
		return nil, fmt.Errorf("BACKUP_PROVIDER must be one of 'none', 'local' or 'r2', got: %s", cfg.BackupProvider)
	}

	// Validate archive configuration
	switch cfg.ArchiveDriver {
	case "":
	case "pgx", "sqlite":
		if cfg.ArchiveURL == "" {
			return nil, fmt.Errorf("ARCHIVE_URL is required when ARCHIVE_DRIVER is set")
		}
	default:
		return nil, fmt.Errorf("ARCHIVE_DRIVER must be either 'pgx' or 'sqlite', got: %s", cfg.ArchiveDriver)
	}

	return cfg, nil
}

// Policy returns the admission policy selected by the environment.
func (c *Config) Policy() domain.Policy {
	return domain.Policy{
		StrictIntervals:         c.StrictIntervals,
		RestoreLastExitOnReject: c.RestoreLastExitOnReject,
		UniqueNames:             c.UniqueNames,
	}
}

// StorageConfig returns the backup storage settings.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Provider: c.BackupProvider,
		Local:    storage.LocalConfig{BasePath: c.LocalBackupPath},
		R2: storage.R2Config{
			AccountID:       c.R2AccountID,
			AccessKeyID:     c.R2AccessKeyID,
			SecretAccessKey: c.R2SecretAccessKey,
			BucketName:      c.R2BucketName,
			Endpoint:        c.R2Endpoint,
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
