package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nordiccms/content-expiry/internal/repository"
	"github.com/nordiccms/content-expiry/internal/testhelpers"
)

var versionColumns = []string{
	"id", "grouper_id", "content_type", "object_id", "content_title", "polymorphic_type",
	"state", "source_id", "created_by", "created", "modified",
}

func newVersionRepo(t *testing.T) (*repository.VersionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := repository.NewVersionRepository(mockDB, testhelpers.NewTestLogger())
	return repo, mock, func() { mockDB.Close() }
}

func TestVersionRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := newVersionRepo(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT(.|\n)*FROM versions").
		WithArgs(int64(5)).
		WillReturnRows(
			sqlmock.NewRows(versionColumns).AddRow(
				int64(5), int64(2), "project", int64(9), "Mural", "artproject",
				"draft", int64(4), "editor", now, now,
			),
		)

	version, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if version.PolymorphicType != "artproject" {
		t.Errorf("expected polymorphic type artproject, got %q", version.PolymorphicType)
	}
	if version.SourceID == nil || *version.SourceID != 4 {
		t.Errorf("expected source id 4, got %v", version.SourceID)
	}
}

func TestVersionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newVersionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT(.|\n)*FROM versions").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(versionColumns))

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVersionRepository_ListMissingExpiry(t *testing.T) {
	repo, mock, cleanup := newVersionRepo(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT(.|\n)*WHERE NOT EXISTS").
		WillReturnRows(
			sqlmock.NewRows(versionColumns).
				AddRow(int64(1), int64(1), "page", int64(1), "Home", nil, "published", nil, "editor", now, now).
				AddRow(int64(2), int64(2), "alias", int64(2), "Footer", nil, "draft", nil, "author", now, now),
		)

	versions, err := repo.ListMissingExpiry(context.Background())
	if err != nil {
		t.Fatalf("ListMissingExpiry() error = %v", err)
	}

	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].ContentType != "page" || versions[1].ContentType != "alias" {
		t.Errorf("unexpected content types: %q, %q", versions[0].ContentType, versions[1].ContentType)
	}
}
