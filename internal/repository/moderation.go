package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
)

// ModerationRepository reads the moderation service's tables: collections of
// versions submitted together for review.
type ModerationRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewModerationRepository(db *sql.DB, log logger.Logger) *ModerationRepository {
	return &ModerationRepository{
		db:     db,
		logger: log,
	}
}

// GetRequest returns one moderation request, or ErrNotFound.
func (r *ModerationRepository) GetRequest(ctx context.Context, id int64) (*models.ModerationRequest, error) {
	query := `
		SELECT id, collection_id, version_id
		FROM moderation_requests
		WHERE id = $1
	`

	var request models.ModerationRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.CollectionID,
		&request.VersionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("moderation request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query moderation request: %w", err)
	}
	return &request, nil
}

// ListCollectionVersions returns the versions inside a collection, joined
// through its moderation requests.
func (r *ModerationRepository) ListCollectionVersions(ctx context.Context, collectionID int64) ([]models.Version, error) {
	query := `
		SELECT` + prefixVersionColumns("v") + `
		FROM moderation_requests mr
		JOIN versions v ON v.id = mr.version_id
		WHERE mr.collection_id = $1
		ORDER BY mr.id
	`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("query collection versions: %w", err)
	}
	defer rows.Close()

	versions := make([]models.Version, 0)
	for rows.Next() {
		version, scanErr := scanVersion(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan collection version: %w", scanErr)
		}
		versions = append(versions, *version)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate collection versions: %w", rowsErr)
	}
	return versions, nil
}

func prefixVersionColumns(alias string) string {
	return fmt.Sprintf(`
	%[1]s.id, %[1]s.grouper_id, %[1]s.content_type, %[1]s.object_id, %[1]s.content_title,
	%[1]s.polymorphic_type, %[1]s.state, %[1]s.source_id, %[1]s.created_by, %[1]s.created,
	%[1]s.modified`, alias)
}
