package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/nordiccms/content-expiry/internal/config"
	"github.com/nordiccms/content-expiry/internal/database"
	"github.com/nordiccms/content-expiry/internal/expiry"
	"github.com/nordiccms/content-expiry/internal/logger"
)

// Backfill creates expiry records for every version that lacks one. When
// overrideDate is non-empty it is parsed with overrideFormat and used verbatim
// for every created record; a parse failure aborts before anything is written.
func Backfill(ctx context.Context, configPath, overrideDate, overrideFormat string, progress func(string)) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var override *time.Time
	if overrideDate != "" {
		parsed, parseErr := expiry.ParseOverrideDate(overrideDate, overrideFormat)
		if parseErr != nil {
			return parseErr
		}
		override = &parsed
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	app := buildApp(cfg, db, log)

	result, err := app.service.Backfill(ctx, override, progress)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	log.Info("Backfill finished",
		logger.Int("created", result.Created),
		logger.Int("skipped", result.Skipped),
	)
	return nil
}
