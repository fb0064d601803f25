package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
)

// DefaultExpiryRepository is the lookup table of per-content-type default
// durations. The service only ever reads it; rows are written by
// administrators through the configuration endpoints.
type DefaultExpiryRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDefaultExpiryRepository(db *sql.DB, log logger.Logger) *DefaultExpiryRepository {
	return &DefaultExpiryRepository{
		db:     db,
		logger: log,
	}
}

// Get returns the configuration row for a content type, or ErrNotFound.
func (r *DefaultExpiryRepository) Get(ctx context.Context, contentType string) (*models.DefaultExpiryConfiguration, error) {
	query := `
		SELECT content_type, duration_months
		FROM default_expiry_configurations
		WHERE content_type = $1
	`

	var cfg models.DefaultExpiryConfiguration
	err := r.db.QueryRowContext(ctx, query, contentType).Scan(&cfg.ContentType, &cfg.DurationMonths)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("default duration for %s: %w", contentType, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query default duration: %w", err)
	}
	return &cfg, nil
}

func (r *DefaultExpiryRepository) List(ctx context.Context) ([]models.DefaultExpiryConfiguration, error) {
	query := `
		SELECT content_type, duration_months
		FROM default_expiry_configurations
		ORDER BY content_type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query default durations: %w", err)
	}
	defer rows.Close()

	configs := make([]models.DefaultExpiryConfiguration, 0)
	for rows.Next() {
		var cfg models.DefaultExpiryConfiguration
		if scanErr := rows.Scan(&cfg.ContentType, &cfg.DurationMonths); scanErr != nil {
			return nil, fmt.Errorf("scan default duration: %w", scanErr)
		}
		configs = append(configs, cfg)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate default durations: %w", rowsErr)
	}
	return configs, nil
}

// Upsert creates or replaces the configuration row for a content type.
func (r *DefaultExpiryRepository) Upsert(ctx context.Context, cfg *models.DefaultExpiryConfiguration) error {
	query := `
		INSERT INTO default_expiry_configurations (content_type, duration_months)
		VALUES ($1, $2)
		ON CONFLICT (content_type) DO UPDATE SET duration_months = EXCLUDED.duration_months
	`

	if _, err := r.db.ExecContext(ctx, query, cfg.ContentType, cfg.DurationMonths); err != nil {
		return fmt.Errorf("upsert default duration: %w", err)
	}
	return nil
}

func (r *DefaultExpiryRepository) Delete(ctx context.Context, contentType string) error {
	query := `DELETE FROM default_expiry_configurations WHERE content_type = $1`

	result, err := r.db.ExecContext(ctx, query, contentType)
	if err != nil {
		return fmt.Errorf("delete default duration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("default duration for %s: %w", contentType, ErrNotFound)
	}
	return nil
}
