// Package storage keeps backup copies of the chain file and generated
// reports.
//
// Two providers are available:
//   - LocalStorage: a directory on the local filesystem
//   - R2Storage: Cloudflare R2 or any other S3-compatible bucket
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is an object store addressed by slash-separated keys.
type Storage interface {
	// Put stores data at key. Unless opts.Overwrite is set an existing key
	// yields ErrKeyExists.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get opens the object at key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	ContentType string // derived from the key extension when empty
	MaxSize     int64  // 0 means unlimited
	Overwrite   bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// Providers
const (
	ProviderNone  = "none"
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	BasePath string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// Endpoint overrides the R2 endpoint derived from AccountID, for other
	// S3-compatible services.
	Endpoint string

	// Region defaults to "auto".
	Region string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Local    LocalConfig
	R2       R2Config
}

// New builds the configured provider. It returns nil when backups are disabled.
func New(cfg Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderLocal:
		return NewLocalStorage(cfg.Local, logger)
	case ProviderR2:
		return NewR2Storage(cfg.R2, logger)
	}
	return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
}

// SnapshotKey generates a unique key for a backup of the chain file.
// Format: snapshots/{yyyy}/{mm}/{dd}/{uuid}.csv
func SnapshotKey(now time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.csv", now.Format("2006/01/02"), uuid.New())
}

// ReportKey generates a unique key for a workbook generated on day.
// Format: reports/{yyyy-mm-dd}/{uuid}.xlsx
func ReportKey(day time.Time) string {
	return fmt.Sprintf("reports/%s/%s.xlsx", day.Format("2006-01-02"), uuid.New())
}

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".txt":  "text/plain",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentTypeFor returns the MIME type implied by the key extension.
func ContentTypeFor(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// validateKey rejects empty keys and keys that climb out of the store.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
