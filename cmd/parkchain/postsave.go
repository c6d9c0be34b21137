package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/parkchain/internal"
	"github.com/DukeRupert/parkchain/internal/archive"
	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/metrics"
	"github.com/DukeRupert/parkchain/internal/report"
	"github.com/DukeRupert/parkchain/internal/service"
	"github.com/DukeRupert/parkchain/internal/storage"
)

// Post-save step names, used as the metrics target label.
const (
	stepArchive = "archive"
	stepBackup  = "backup"
	stepReport  = "report"
)

// runPostSave runs the optional steps that follow a successful save. Every
// step runs even if an earlier one failed; the failures are returned joined.
func runPostSave(ctx context.Context, cfg *internal.Config, svc service.ParkingService, chain *domain.ParkingChain, path string, now time.Time, logger *slog.Logger) error {
	var errs []error

	if cfg.ArchiveDriver != "" {
		errs = append(errs, step(stepArchive, logger, func() error {
			return archiveChain(ctx, cfg, chain, now, logger)
		}))
	}

	var st storage.Storage
	if cfg.BackupProvider != storage.ProviderNone {
		var err error
		st, err = storage.New(cfg.StorageConfig(), logger)
		if err != nil {
			metrics.SnapshotFailed(stepBackup)
			errs = append(errs, fmt.Errorf("backup storage initialization failed: %w", err))
		}
	}

	if st != nil {
		errs = append(errs, step(stepBackup, logger, func() error {
			key := storage.SnapshotKey(now)
			if err := storage.UploadFile(ctx, st, path, key); err != nil {
				return err
			}
			logger.Info("chain file backed up", "key", key)
			return nil
		}))
	}

	if cfg.ReportPath != "" {
		errs = append(errs, step(stepReport, logger, func() error {
			return writeReport(ctx, cfg, svc, st, now, logger)
		}))
	}

	return errors.Join(errs...)
}

// step times fn and records its outcome.
func step(name string, logger *slog.Logger, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		metrics.SnapshotFailed(name)
		logger.Error("post-save step failed", "step", name, "error", err)
		return fmt.Errorf("%s failed: %w", name, err)
	}
	metrics.SnapshotCompleted(name, time.Since(start))
	return nil
}

func archiveChain(ctx context.Context, cfg *internal.Config, chain *domain.ParkingChain, now time.Time, logger *slog.Logger) error {
	store, err := archive.Open(ctx, cfg.ArchiveDriver, cfg.ArchiveURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Save(ctx, chain, now)
	return err
}

func writeReport(ctx context.Context, cfg *internal.Config, svc service.ParkingService, st storage.Storage, now time.Time, logger *slog.Logger) error {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	summary, err := svc.Summary(ctx, day)
	if err != nil {
		return err
	}

	if err := report.WriteFile(ctx, report.NewXLSXGenerator(), summary, cfg.ReportPath); err != nil {
		return err
	}
	logger.Info("report written", "path", cfg.ReportPath, "total_gain", summary.TotalGain())

	if st == nil {
		return nil
	}
	key := storage.ReportKey(day)
	if err := storage.UploadFile(ctx, st, cfg.ReportPath, key); err != nil {
		return err
	}
	logger.Info("report backed up", "key", key)
	return nil
}
