// Package handlers contains the gin handlers for the content expiry API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nordiccms/content-expiry/internal/changelist"
	"github.com/nordiccms/content-expiry/internal/export"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// ExpiryStore is the slice of the expiry repository the handler reads and
// writes through.
type ExpiryStore interface {
	List(ctx context.Context, filter repository.ListFilter) ([]models.ExpiryRecord, error)
	ListAll(ctx context.Context, filter repository.ListFilter) ([]models.ExpiryRecord, error)
	Count(ctx context.Context, filter repository.ListFilter) (int, error)
	GetByID(ctx context.Context, id int64) (*models.ExpiryRecord, error)
	UpdateExpires(ctx context.Context, id int64, expires time.Time) error
	UpdateCompliance(ctx context.Context, id int64, compliance *string) error
	Authors(ctx context.Context) ([]string, error)
}

// Scoper resolves parsed params into a repository filter.
type Scoper interface {
	Scope(ctx context.Context, p changelist.Params) (repository.ListFilter, error)
}

type ExpiryHandler struct {
	repo          ExpiryStore
	scoper        Scoper
	exporter      *export.Exporter
	defaultSiteID int64
	logger        logger.Logger
}

func NewExpiryHandler(repo ExpiryStore, scoper Scoper, exporter *export.Exporter, defaultSiteID int64, log logger.Logger) *ExpiryHandler {
	return &ExpiryHandler{
		repo:          repo,
		scoper:        scoper,
		exporter:      exporter,
		defaultSiteID: defaultSiteID,
		logger:        log,
	}
}

// List serves the scoped changelist.
func (h *ExpiryHandler) List(c *gin.Context) {
	params, err := changelist.ParseParams(c.Request.URL.Query(), h.defaultSiteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter, err := h.scoper.Scope(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("Failed to scope changelist", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scope changelist"})
		return
	}

	records, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list expiry records", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list expiry records"})
		return
	}

	count, err := h.repo.Count(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to count expiry records", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count expiry records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   count,
	})
}

// Export serves the scoped changelist as a CSV or XLSX download. The export
// honors the same query parameters as List and ignores pagination.
func (h *ExpiryHandler) Export(c *gin.Context) {
	params, err := changelist.ParseParams(c.Request.URL.Query(), h.defaultSiteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	filter, err := h.scoper.Scope(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("Failed to scope export", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scope export"})
		return
	}

	records, err := h.repo.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list expiry records for export", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list expiry records"})
		return
	}

	rows := h.exporter.Rows(c.Request.Context(), records, requestOrigin(c))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "content-expiry."+format))
	switch format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.exporter.WriteXLSX(c.Writer, rows)
	default:
		c.Header("Content-Type", "text/csv")
		err = h.exporter.WriteCSV(c.Writer, rows)
	}
	if err != nil {
		h.logger.Error("Failed to write export", logger.Error(err))
	}
}

// GetByID serves one expiry record with its version.
func (h *ExpiryHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expiry record not found"})
			return
		}
		h.logger.Error("Failed to get expiry record",
			logger.Int64("expiry_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expiry record"})
		return
	}

	c.JSON(http.StatusOK, record)
}

type updateExpiryRequest struct {
	Expires          *time.Time `json:"expires"`
	ComplianceNumber *string    `json:"compliance_number"`
}

// Update edits one expiry record. The expiry date is always editable; the
// compliance number only while the owning version is still a draft, because a
// compliance number is assigned at review and must not drift afterwards. A
// compliance edit on a non-draft version is dropped, not rejected, so bulk
// clients do not have to special-case it.
func (h *ExpiryHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req updateExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body",
			logger.Int64("expiry_id", id),
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expiry record not found"})
			return
		}
		h.logger.Error("Failed to get expiry record",
			logger.Int64("expiry_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expiry record"})
		return
	}

	if req.Expires != nil {
		if err := h.repo.UpdateExpires(c.Request.Context(), id, *req.Expires); err != nil {
			h.logger.Error("Failed to update expiry date",
				logger.Int64("expiry_id", id),
				logger.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expiry record"})
			return
		}
	}

	if req.ComplianceNumber != nil {
		if record.Version.State == models.StateDraft {
			if err := h.repo.UpdateCompliance(c.Request.Context(), id, req.ComplianceNumber); err != nil {
				h.logger.Error("Failed to update compliance number",
					logger.Int64("expiry_id", id),
					logger.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expiry record"})
				return
			}
		} else {
			h.logger.Debug("Compliance edit ignored for non-draft version",
				logger.Int64("expiry_id", id),
				logger.String("state", record.Version.State),
			)
		}
	}

	updated, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusOK, record)
		return
	}

	h.logger.Info("Expiry record updated",
		logger.Int64("expiry_id", id),
	)

	c.JSON(http.StatusOK, updated)
}

// Authors serves the distinct record authors, for filter dropdowns.
func (h *ExpiryHandler) Authors(c *gin.Context) {
	authors, err := h.repo.Authors(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list authors", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list authors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authors": authors,
		"count":   len(authors),
	})
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// requestOrigin reconstructs the scheme and host of the incoming request so
// exported URLs are absolute.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
