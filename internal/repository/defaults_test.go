package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
	"github.com/nordiccms/content-expiry/internal/testhelpers"
)

func newDefaultsRepo(t *testing.T) (*repository.DefaultExpiryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := repository.NewDefaultExpiryRepository(mockDB, testhelpers.NewTestLogger())
	return repo, mock, func() { mockDB.Close() }
}

func TestDefaultExpiryRepository_Get(t *testing.T) {
	repo, mock, cleanup := newDefaultsRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT content_type, duration_months").
		WithArgs("page").
		WillReturnRows(
			sqlmock.NewRows([]string{"content_type", "duration_months"}).AddRow("page", 6),
		)

	cfg, err := repo.Get(context.Background(), "page")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cfg.DurationMonths != 6 {
		t.Errorf("expected duration 6, got %d", cfg.DurationMonths)
	}
}

func TestDefaultExpiryRepository_Get_NotFound(t *testing.T) {
	repo, mock, cleanup := newDefaultsRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT content_type, duration_months").
		WithArgs("banner").
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "duration_months"}))

	_, err := repo.Get(context.Background(), "banner")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDefaultExpiryRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := newDefaultsRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO default_expiry_configurations").
		WithArgs("page", 6).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.DefaultExpiryConfiguration{
		ContentType:    "page",
		DurationMonths: 6,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDefaultExpiryRepository_Delete_NotFound(t *testing.T) {
	repo, mock, cleanup := newDefaultsRepo(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM default_expiry_configurations").
		WithArgs("banner").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "banner")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
