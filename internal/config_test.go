package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/records"
	"github.com/DukeRupert/parkchain/internal/storage"
)

var configKeys = []string{
	"ENV", "LOG_LEVEL", "TIMEZONE", "LOAD_MODE",
	"STRICT_INTERVALS", "RESTORE_LAST_EXIT_ON_REJECT", "UNIQUE_NAMES",
	"METRICS_ADDR", "BACKUP_PROVIDER", "LOCAL_BACKUP_PATH",
	"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_ENDPOINT",
	"ARCHIVE_DRIVER", "ARCHIVE_URL", "REPORT_PATH", "POST_SAVE_TIMEOUT",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, records.LoadModeAbort, cfg.LoadMode)
	assert.Equal(t, domain.Policy{}, cfg.Policy())
	assert.Equal(t, storage.ProviderNone, cfg.BackupProvider)
	assert.Empty(t, cfg.ArchiveDriver)
	assert.Equal(t, 30*time.Second, cfg.PostSaveTimeout)
}

func TestNewConfig_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOAD_MODE", "skip")
	t.Setenv("STRICT_INTERVALS", "true")
	t.Setenv("RESTORE_LAST_EXIT_ON_REJECT", "1")
	t.Setenv("UNIQUE_NAMES", "true")
	t.Setenv("BACKUP_PROVIDER", "r2")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "backups")
	t.Setenv("ARCHIVE_DRIVER", "sqlite")
	t.Setenv("ARCHIVE_URL", "file:archive.db")
	t.Setenv("POST_SAVE_TIMEOUT", "5s")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, records.LoadModeSkip, cfg.LoadMode)
	assert.Equal(t, domain.Policy{StrictIntervals: true, RestoreLastExitOnReject: true, UniqueNames: true}, cfg.Policy())
	assert.Equal(t, 5*time.Second, cfg.PostSaveTimeout)

	sc := cfg.StorageConfig()
	assert.Equal(t, storage.ProviderR2, sc.Provider)
	assert.Equal(t, "backups", sc.R2.BucketName)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"bad load mode", map[string]string{"LOAD_MODE": "ignore"}, "LOAD_MODE"},
		{"unknown backup provider", map[string]string{"BACKUP_PROVIDER": "ftp"}, "BACKUP_PROVIDER"},
		{"r2 without bucket", map[string]string{
			"BACKUP_PROVIDER": "r2", "R2_ACCOUNT_ID": "a", "R2_ACCESS_KEY_ID": "k", "R2_SECRET_ACCESS_KEY": "s",
		}, "R2_BUCKET_NAME"},
		{"r2 without account", map[string]string{"BACKUP_PROVIDER": "r2"}, "R2_ACCOUNT_ID"},
		{"archive without url", map[string]string{"ARCHIVE_DRIVER": "pgx"}, "ARCHIVE_URL"},
		{"unknown archive driver", map[string]string{"ARCHIVE_DRIVER": "mysql", "ARCHIVE_URL": "x"}, "ARCHIVE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
