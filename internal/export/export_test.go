package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nordiccms/content-expiry/internal/export"
	"github.com/nordiccms/content-expiry/internal/models"
)

type stubResolver struct {
	url string
}

func (s stubResolver) ResolveURL(_ context.Context, _ *models.Version) string {
	return s.url
}

func sampleRecords() []models.ExpiryRecord {
	compliance := "COMP-7"
	return []models.ExpiryRecord{
		{
			ContentExpiry: models.ContentExpiry{
				Expires:          time.Date(2025, time.March, 1, 14, 0, 0, 0, time.UTC),
				ComplianceNumber: &compliance,
			},
			Version: models.Version{
				ContentTitle: "About us",
				ContentType:  "page",
				State:        models.StatePublished,
				CreatedBy:    "editor",
			},
		},
		{
			Version: models.Version{
				ContentTitle: "Footer alias",
				ContentType:  "alias",
				State:        models.StateDraft,
				CreatedBy:    "author",
			},
		},
	}
}

func TestRows(t *testing.T) {
	e := export.NewExporter(stubResolver{url: "/about-us/"}, "2006-01-02")

	rows := e.Rows(context.Background(), sampleRecords(), "https://cms.example.com")
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"About us", "page", "2025-03-01", "COMP-7", "Published", "editor",
		"https://cms.example.com/about-us/",
	}, rows[0])

	// Missing expiry date and compliance render as empty cells.
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, "Draft", rows[1][4])
}

func TestRows_AbsoluteURLPassesThrough(t *testing.T) {
	e := export.NewExporter(stubResolver{url: "https://cdn.example.com/x/"}, "2006-01-02")

	rows := e.Rows(context.Background(), sampleRecords()[:1], "https://cms.example.com")
	assert.Equal(t, "https://cdn.example.com/x/", rows[0][6])
}

func TestRows_CustomDateFormat(t *testing.T) {
	e := export.NewExporter(stubResolver{url: "/x/"}, "02.01.2006")

	rows := e.Rows(context.Background(), sampleRecords()[:1], "https://cms.example.com")
	assert.Equal(t, "01.03.2025", rows[0][2])
}

func TestWriteCSV(t *testing.T) {
	e := export.NewExporter(stubResolver{url: "/about-us/"}, "2006-01-02")
	rows := e.Rows(context.Background(), sampleRecords(), "https://cms.example.com")

	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(&buf, rows))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, export.Header, parsed[0])
	assert.Equal(t, "About us", parsed[1][0])
	assert.Equal(t, "Footer alias", parsed[2][0])
}

func TestWriteXLSX(t *testing.T) {
	e := export.NewExporter(stubResolver{url: "/about-us/"}, "2006-01-02")
	rows := e.Rows(context.Background(), sampleRecords(), "https://cms.example.com")

	var buf bytes.Buffer
	require.NoError(t, e.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheetRows, err := f.GetRows("Content Expiry")
	require.NoError(t, err)
	require.Len(t, sheetRows, 3)
	assert.Equal(t, export.Header, sheetRows[0])
	assert.Equal(t, "COMP-7", sheetRows[1][3])
}
