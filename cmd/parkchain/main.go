package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/DukeRupert/parkchain/internal"
	"github.com/DukeRupert/parkchain/internal/console"
	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/metrics"
	"github.com/DukeRupert/parkchain/internal/records"
	"github.com/DukeRupert/parkchain/internal/service"
)

const usage = "usage: parkchain <file>"

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return errors.New(usage)
	}
	path := args[0]

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Logs go to stderr so they never mix with the menu
	logger, _ := internal.WithSession(internal.NewLogger(stderr, cfg.Env, cfg.LogLevel))

	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info("metrics listener started", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics listener shutdown error", "error", err)
			}
		}()
	}

	// Load the chain
	chain, err := records.LoadFile(path, records.LoadOptions{
		Mode:         cfg.LoadMode,
		Location:     cfg.Location,
		ChainOptions: []domain.Option{domain.WithPolicy(cfg.Policy())},
		Logger:       logger,
		OnApply:      func(r records.Record) { metrics.RecordLoaded(r.Kind()) },
	})
	if err != nil {
		if chain == nil || cfg.LoadMode != records.LoadModeSkip {
			return fmt.Errorf("loading %s failed: %w", path, err)
		}
		logger.Warn("chain loaded with skipped records", "path", path, "error", err)
	}
	logger.Info("chain loaded", "path", path, "lots", len(chain.Lots()))

	// Interactive session
	svc := service.NewParkingService(chain, logger)
	session := console.NewSession(svc, stdin, stdout,
		console.WithLocation(cfg.Location),
		console.WithLogger(logger),
	)
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	// Save over the input file
	if err := records.WriteFile(path, chain); err != nil {
		return fmt.Errorf("saving %s failed: %w", path, err)
	}
	logger.Info("chain saved", "path", path)

	postCtx, cancel := context.WithTimeout(ctx, cfg.PostSaveTimeout)
	defer cancel()

	return runPostSave(postCtx, cfg, svc, chain, path, time.Now().In(cfg.Location), logger)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}
