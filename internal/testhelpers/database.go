package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/nordiccms/content-expiry/internal/logger"
)

// RunMigrations executes the SQL migration files on a database connection.
// Integration tests point this at a local PostgreSQL instance; the unit tests
// in this repo use sqlmock and never need it.
func RunMigrations(ctx context.Context, db *sql.DB, log logger.Logger) error {
	_, filename, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(filename), "..", "..", "migrations")

	for _, name := range []string{"000_external_fixtures.sql", "001_initial.sql"} {
		migrationFile := filepath.Join(migrationsPath, name)
		sqlBytes, err := os.ReadFile(migrationFile)
		if err != nil {
			return fmt.Errorf("read migration file: %w", err)
		}

		if _, execErr := db.ExecContext(ctx, string(sqlBytes)); execErr != nil {
			return fmt.Errorf("execute migration %s: %w", name, execErr)
		}

		if log != nil {
			log.Info("Migration applied",
				logger.String("migration_file", migrationFile),
			)
		}
	}

	return nil
}
