package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
)

// ContentRepository reads the site-bound content tables. It backs the
// site-exclusion predicates and the URL resolvers registered for page and
// alias content.
type ContentRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewContentRepository(db *sql.DB, log logger.Logger) *ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: log,
	}
}

// PageIDsNotOnSite returns the ids of page content bound to any other site.
func (r *ContentRepository) PageIDsNotOnSite(ctx context.Context, siteID int64) ([]int64, error) {
	return r.idsNotOnSite(ctx, "page_contents", siteID)
}

// AliasIDsNotOnSite returns the ids of alias content bound to any other site.
func (r *ContentRepository) AliasIDsNotOnSite(ctx context.Context, siteID int64) ([]int64, error) {
	return r.idsNotOnSite(ctx, "alias_contents", siteID)
}

func (r *ContentRepository) idsNotOnSite(ctx context.Context, table string, siteID int64) ([]int64, error) {
	// table is one of the two fixed names above, never request input.
	query := fmt.Sprintf(`SELECT id FROM %s WHERE site_id <> $1 ORDER BY id`, table)

	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("query %s exclusions: %w", table, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, scanErr)
		}
		ids = append(ids, id)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", table, rowsErr)
	}
	return ids, nil
}

// PagePath returns the public path of one page, or ErrNotFound.
func (r *ContentRepository) PagePath(ctx context.Context, pageID int64) (string, error) {
	query := `SELECT path FROM page_contents WHERE id = $1`

	var path string
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("page %d: %w", pageID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query page path: %w", err)
	}
	return path, nil
}
