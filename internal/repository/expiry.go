package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

type ExpiryRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewExpiryRepository(db *sql.DB, log logger.Logger) *ExpiryRepository {
	return &ExpiryRepository{
		db:     db,
		logger: log,
	}
}

// ListFilter is the fully resolved scoping for a changelist query. The
// zero value means "everything": defaults (published-only state, date window)
// are applied by the changelist scoper before the filter reaches here.
type ListFilter struct {
	// Exclusions is the mandatory site-visibility boundary, applied before
	// any user-selected filter.
	Exclusions []contenttypes.ContentRef
	// ContentTypes restricts to the given root type tokens when non-empty.
	ContentTypes []string
	// CreatedBy restricts to records created by one author when non-empty.
	CreatedBy string
	// States restricts to versions in the given states when non-empty.
	States []string
	// ExpiresGTE/ExpiresLTE bound the expiry date, inclusive on both ends.
	ExpiresGTE *time.Time
	ExpiresLTE *time.Time
	// ComplianceNumber is an exact-match filter when non-empty.
	ComplianceNumber string

	Limit  int
	Offset int
}

const expiryRecordColumns = `
	ce.id, ce.version_id, ce.created, ce.created_by, ce.expires, ce.compliance_number,
	v.grouper_id, v.content_type, v.object_id, v.content_title, v.polymorphic_type,
	v.state, v.source_id, v.created_by, v.created, v.modified`

// Create inserts a new expiry record. A second record for the same version
// violates the one-per-version constraint and returns ErrAlreadyExists.
func (r *ExpiryRepository) Create(ctx context.Context, expiry *models.ContentExpiry) error {
	query := `
		INSERT INTO content_expiry (version_id, created, created_by, expires, compliance_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx,
		query,
		expiry.VersionID,
		expiry.Created,
		expiry.CreatedBy,
		expiry.Expires,
		nullString(expiry.ComplianceNumber),
	).Scan(&expiry.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("expiry record for version %d: %w", expiry.VersionID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert expiry record: %w", err)
	}

	return nil
}

// GetByID returns one expiry record joined with its owning version.
func (r *ExpiryRepository) GetByID(ctx context.Context, id int64) (*models.ExpiryRecord, error) {
	query := `
		SELECT` + expiryRecordColumns + `
		FROM content_expiry ce
		JOIN versions v ON v.id = ce.version_id
		WHERE ce.id = $1
	`

	record, err := scanExpiryRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expiry record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query expiry record: %w", err)
	}
	return record, nil
}

// GetByVersionID returns the expiry record owned by a version, without the
// version join.
func (r *ExpiryRepository) GetByVersionID(ctx context.Context, versionID int64) (*models.ContentExpiry, error) {
	query := `
		SELECT id, version_id, created, created_by, expires, compliance_number
		FROM content_expiry
		WHERE version_id = $1
	`

	var expiry models.ContentExpiry
	var compliance sql.NullString
	err := r.db.QueryRowContext(ctx, query, versionID).Scan(
		&expiry.ID,
		&expiry.VersionID,
		&expiry.Created,
		&expiry.CreatedBy,
		&expiry.Expires,
		&compliance,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expiry record for version %d: %w", versionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query expiry record by version: %w", err)
	}

	if compliance.Valid {
		expiry.ComplianceNumber = &compliance.String
	}
	return &expiry, nil
}

// List returns the scoped changelist rows ordered by expiry date.
func (r *ExpiryRepository) List(ctx context.Context, filter ListFilter) ([]models.ExpiryRecord, error) {
	whereClause, whereArgs := buildListWhere(filter)
	argCount := len(whereArgs)
	limitPlaceholder := strconv.Itoa(argCount + 1)
	offsetPlaceholder := strconv.Itoa(argCount + 2)

	query := `
		SELECT` + expiryRecordColumns + `
		FROM content_expiry ce
		JOIN versions v ON v.id = ce.version_id
		WHERE 1=1` + whereClause + `
		ORDER BY ce.expires ASC, ce.id ASC
		LIMIT $` + limitPlaceholder + ` OFFSET $` + offsetPlaceholder

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args := append(append([]any{}, whereArgs...), limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expiry records: %w", err)
	}
	defer rows.Close()

	return scanExpiryRecordRows(rows)
}

const defaultListLimit = 100

// ListAll returns every scoped row without pagination, for exports.
func (r *ExpiryRepository) ListAll(ctx context.Context, filter ListFilter) ([]models.ExpiryRecord, error) {
	whereClause, whereArgs := buildListWhere(filter)

	query := `
		SELECT` + expiryRecordColumns + `
		FROM content_expiry ce
		JOIN versions v ON v.id = ce.version_id
		WHERE 1=1` + whereClause + `
		ORDER BY ce.expires ASC, ce.id ASC`

	rows, err := r.db.QueryContext(ctx, query, whereArgs...)
	if err != nil {
		return nil, fmt.Errorf("query expiry records: %w", err)
	}
	defer rows.Close()

	return scanExpiryRecordRows(rows)
}

// Count returns the number of rows matching the filter, ignoring pagination.
func (r *ExpiryRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	whereClause, args := buildListWhere(filter)
	query := `
		SELECT COUNT(*)
		FROM content_expiry ce
		JOIN versions v ON v.id = ce.version_id
		WHERE 1=1` + whereClause

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count expiry records: %w", err)
	}
	return count, nil
}

// UpdateExpires overwrites the expiry date of one record.
func (r *ExpiryRepository) UpdateExpires(ctx context.Context, id int64, expires time.Time) error {
	return r.updateField(ctx, id, "expires", expires)
}

// UpdateCompliance overwrites the compliance number of one record. A nil
// value clears it.
func (r *ExpiryRepository) UpdateCompliance(ctx context.Context, id int64, compliance *string) error {
	return r.updateField(ctx, id, "compliance_number", nullString(compliance))
}

func (r *ExpiryRepository) updateField(ctx context.Context, id int64, column string, value any) error {
	// column comes from the two exported update methods only, never from
	// request input.
	query := fmt.Sprintf(`UPDATE content_expiry SET %s = $2 WHERE id = $1`, column)

	result, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("update expiry %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("expiry record %d: %w", id, ErrNotFound)
	}
	return nil
}

// Authors returns the distinct authors owning expiry records.
func (r *ExpiryRepository) Authors(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT created_by
		FROM content_expiry
		ORDER BY created_by
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	authors := make([]string, 0)
	for rows.Next() {
		var author string
		if scanErr := rows.Scan(&author); scanErr != nil {
			return nil, fmt.Errorf("scan author: %w", scanErr)
		}
		authors = append(authors, author)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate authors: %w", rowsErr)
	}
	return authors, nil
}

// buildListWhere renders the filter as AND clauses with positional args. The
// site exclusion clauses come first: they are the mandatory visibility
// boundary, everything after them only narrows further.
func buildListWhere(filter ListFilter) (whereClause string, args []any) {
	var clauses []string
	args = make([]any, 0)
	pos := 1

	for _, group := range groupExclusions(filter.Exclusions) {
		clauses = append(clauses, fmt.Sprintf(
			"NOT (v.content_type = $%d AND v.object_id = ANY($%d))", pos, pos+1,
		))
		args = append(args, group.contentType, pq.Array(group.objectIDs))
		pos += 2
	}

	if len(filter.ContentTypes) > 0 {
		clauses = append(clauses, fmt.Sprintf("v.content_type = ANY($%d)", pos))
		args = append(args, pq.Array(filter.ContentTypes))
		pos++
	}

	if filter.CreatedBy != "" {
		clauses = append(clauses, fmt.Sprintf("ce.created_by = $%d", pos))
		args = append(args, filter.CreatedBy)
		pos++
	}

	if len(filter.States) > 0 {
		clauses = append(clauses, fmt.Sprintf("v.state = ANY($%d)", pos))
		args = append(args, pq.Array(filter.States))
		pos++
	}

	if filter.ExpiresGTE != nil {
		clauses = append(clauses, fmt.Sprintf("ce.expires >= $%d", pos))
		args = append(args, *filter.ExpiresGTE)
		pos++
	}
	if filter.ExpiresLTE != nil {
		clauses = append(clauses, fmt.Sprintf("ce.expires <= $%d", pos))
		args = append(args, *filter.ExpiresLTE)
		pos++
	}

	if filter.ComplianceNumber != "" {
		clauses = append(clauses, fmt.Sprintf("ce.compliance_number = $%d", pos))
		args = append(args, filter.ComplianceNumber)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

type exclusionGroup struct {
	contentType string
	objectIDs   []int64
}

// groupExclusions collapses (type, id) pairs into one clause per content type,
// preserving first-seen type order.
func groupExclusions(refs []contenttypes.ContentRef) []exclusionGroup {
	byType := make(map[string]int)
	groups := make([]exclusionGroup, 0)

	for _, ref := range refs {
		idx, seen := byType[ref.ContentType]
		if !seen {
			idx = len(groups)
			byType[ref.ContentType] = idx
			groups = append(groups, exclusionGroup{contentType: ref.ContentType})
		}
		groups[idx].objectIDs = append(groups[idx].objectIDs, ref.ObjectID)
	}
	return groups
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpiryRecord(row rowScanner) (*models.ExpiryRecord, error) {
	var record models.ExpiryRecord
	var compliance, polymorphicType sql.NullString
	var sourceID sql.NullInt64

	err := row.Scan(
		&record.ID,
		&record.VersionID,
		&record.Created,
		&record.CreatedBy,
		&record.Expires,
		&compliance,
		&record.Version.GrouperID,
		&record.Version.ContentType,
		&record.Version.ObjectID,
		&record.Version.ContentTitle,
		&polymorphicType,
		&record.Version.State,
		&sourceID,
		&record.Version.CreatedBy,
		&record.Version.Created,
		&record.Version.Modified,
	)
	if err != nil {
		return nil, err
	}

	record.Version.ID = record.VersionID
	if compliance.Valid {
		record.ComplianceNumber = &compliance.String
	}
	if polymorphicType.Valid {
		record.Version.PolymorphicType = polymorphicType.String
	}
	if sourceID.Valid {
		record.Version.SourceID = &sourceID.Int64
	}
	return &record, nil
}

func scanExpiryRecordRows(rows *sql.Rows) ([]models.ExpiryRecord, error) {
	records := make([]models.ExpiryRecord, 0)
	for rows.Next() {
		record, err := scanExpiryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expiry record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiry records: %w", err)
	}
	return records, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
