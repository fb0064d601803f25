package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
)

// VersionRepository reads the versioning service's table. Versions are never
// written from here.
type VersionRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewVersionRepository(db *sql.DB, log logger.Logger) *VersionRepository {
	return &VersionRepository{
		db:     db,
		logger: log,
	}
}

const versionColumns = `
	id, grouper_id, content_type, object_id, content_title, polymorphic_type,
	state, source_id, created_by, created, modified`

func (r *VersionRepository) GetByID(ctx context.Context, id int64) (*models.Version, error) {
	query := `
		SELECT` + versionColumns + `
		FROM versions
		WHERE id = $1
	`

	version, err := scanVersion(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

// ListMissingExpiry returns every version that owns no expiry record yet, in
// id order. Used by the backfill command.
func (r *VersionRepository) ListMissingExpiry(ctx context.Context) ([]models.Version, error) {
	query := `
		SELECT` + versionColumns + `
		FROM versions v
		WHERE NOT EXISTS (
			SELECT 1 FROM content_expiry ce WHERE ce.version_id = v.id
		)
		ORDER BY v.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query versions missing expiry: %w", err)
	}
	defer rows.Close()

	versions := make([]models.Version, 0)
	for rows.Next() {
		version, scanErr := scanVersion(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan version: %w", scanErr)
		}
		versions = append(versions, *version)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate versions: %w", rowsErr)
	}
	return versions, nil
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var version models.Version
	var polymorphicType sql.NullString
	var sourceID sql.NullInt64

	err := row.Scan(
		&version.ID,
		&version.GrouperID,
		&version.ContentType,
		&version.ObjectID,
		&version.ContentTitle,
		&polymorphicType,
		&version.State,
		&sourceID,
		&version.CreatedBy,
		&version.Created,
		&version.Modified,
	)
	if err != nil {
		return nil, err
	}

	if polymorphicType.Valid {
		version.PolymorphicType = polymorphicType.String
	}
	if sourceID.Valid {
		version.SourceID = &sourceID.Int64
	}
	return &version, nil
}
