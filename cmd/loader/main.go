// Command loader ingests the EIA monthly primary energy production
// workbook into the shared SQLite database. It is the write side of the
// system; the web server only ever reads. Re-running it replaces the
// production table wholesale, so ingestion is idempotent for a given
// input file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"energymix/internal/config"
	"energymix/internal/dataprocessing"
	apperrors "energymix/internal/errors"
	"energymix/internal/infrastructure"
	"energymix/internal/storage"
	"energymix/internal/validation"
	"energymix/pkg/contracts"
)

func main() {
	inPath := flag.String("in", "", "input workbook (defaults to the configured ingest path)")
	dbPath := flag.String("db", "", "database file (defaults to the configured database path)")
	configPath := flag.String("config", "", "explicit YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *inPath != "" {
		cfg.Ingest.InputPath = *inPath
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// run performs one ingestion: parse the workbook, then atomically replace
// the production table. The parse happens entirely before the store is
// opened, so a missing file or broken schema never mutates the table.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	started := time.Now()

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return fmt.Errorf("initialize opentelemetry: %w", err)
	}
	defer providers.Shutdown(ctx)

	var metrics *infrastructure.BusinessMetrics
	if providers.Meter != nil {
		if metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter); err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
	}

	validator := validation.NewWorkbookValidator(logger)
	if err := validator.ValidateInputFile(cfg.Ingest.InputPath); err != nil {
		infrastructure.RecordIngestMetrics(ctx, metrics, 0, 0, time.Since(started), err)
		return err
	}

	samples, stats, err := dataprocessing.ParseFile(cfg.Ingest.InputPath, logger)
	if err != nil {
		infrastructure.RecordIngestMetrics(ctx, metrics, 0, 0, time.Since(started), err)
		if errors.Is(err, apperrors.ErrSourceFileNotFound) {
			return fmt.Errorf("input workbook %s does not exist", cfg.Ingest.InputPath)
		}
		return err
	}

	store, err := storage.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		infrastructure.RecordIngestMetrics(ctx, metrics, 0, 0, time.Since(started), err)
		return err
	}
	defer store.Close()

	record, err := store.Replace(ctx, samples, stats.CoercionFallbacks)
	if err != nil {
		infrastructure.RecordIngestMetrics(ctx, metrics, 0, 0, time.Since(started), err)
		return err
	}

	infrastructure.RecordIngestMetrics(ctx, metrics,
		int64(record.RecordCount), int64(record.CoercionFallbacks),
		time.Since(started), nil)

	logger.Info("load complete",
		slog.String("table", storage.ProductionTable),
		slog.String("database", cfg.Database.Path),
		slog.Int("records", record.RecordCount),
		slog.Int("coercion_fallbacks", record.CoercionFallbacks),
		slog.Int("skipped_dates", stats.SkippedDates),
		slog.Duration("elapsed", time.Since(started)))

	return nil
}
