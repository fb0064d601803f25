// Package export renders a scoped changelist as tabular rows for download.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/models"
)

// Header is the fixed export column order.
var Header = []string{
	"Title",
	"Content Type",
	"Expiry Date",
	"Compliance Number",
	"Version State",
	"Version Author",
	"Url",
}

// URLResolver picks the best URL for a version's content. Satisfied by
// *contenttypes.Registry.
type URLResolver interface {
	ResolveURL(ctx context.Context, v *models.Version) string
}

// Exporter renders expiry records with a fixed column order and date layout.
type Exporter struct {
	urls       URLResolver
	dateFormat string
}

func NewExporter(urls URLResolver, dateFormat string) *Exporter {
	return &Exporter{
		urls:       urls,
		dateFormat: dateFormat,
	}
}

// Rows renders one row per record. origin is the requesting client's
// scheme+host; URLs are expanded to fully qualified ones because the export
// artifact is shared outside the browsing session.
func (e *Exporter) Rows(ctx context.Context, records []models.ExpiryRecord, origin string) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		record := &records[i]
		rows = append(rows, []string{
			record.Version.ContentTitle,
			record.Version.ContentType,
			e.formatDate(record.Expires),
			complianceValue(record),
			models.StateDisplay(record.Version.State),
			record.Version.CreatedBy,
			absoluteURL(origin, e.urls.ResolveURL(ctx, &record.Version)),
		})
	}
	return rows
}

// WriteCSV writes the header and rows as CSV.
func (e *Exporter) WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

const xlsxSheet = "Content Expiry"

// WriteXLSX writes the header and rows as a single-sheet workbook.
func (e *Exporter) WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeSheetRow(f, 1, Header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", rowNum, err)
	}
	return nil
}

// formatDate renders a timestamp with the configured layout. A missing date
// renders as an empty cell rather than erroring.
func (e *Exporter) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(e.dateFormat)
}

func complianceValue(record *models.ExpiryRecord) string {
	if record.ComplianceNumber == nil {
		return ""
	}
	return *record.ComplianceNumber
}

// absoluteURL prefixes origin onto relative paths; already absolute URLs pass
// through untouched.
func absoluteURL(origin, url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.TrimSuffix(origin, "/") + url
}

var _ URLResolver = (*contenttypes.Registry)(nil)
