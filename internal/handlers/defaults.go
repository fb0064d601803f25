package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// DefaultStore manages per-content-type duration overrides.
type DefaultStore interface {
	List(ctx context.Context) ([]models.DefaultExpiryConfiguration, error)
	Upsert(ctx context.Context, cfg *models.DefaultExpiryConfiguration) error
	Delete(ctx context.Context, contentType string) error
}

// TypeChecker validates content type tokens against the registry.
type TypeChecker interface {
	IsVersionable(contentType string) bool
}

type DefaultsHandler struct {
	repo   DefaultStore
	types  TypeChecker
	logger logger.Logger
}

func NewDefaultsHandler(repo DefaultStore, types TypeChecker, log logger.Logger) *DefaultsHandler {
	return &DefaultsHandler{
		repo:   repo,
		types:  types,
		logger: log,
	}
}

func (h *DefaultsHandler) List(c *gin.Context) {
	configs, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list default durations", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list default durations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configurations": configs,
		"count":          len(configs),
	})
}

// Upsert creates or replaces the duration override for one content type. Only
// registered versionable types can carry an override; anything else would be a
// dead row that never resolves.
func (h *DefaultsHandler) Upsert(c *gin.Context) {
	var cfg models.DefaultExpiryConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if cfg.DurationMonths <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_months must be positive"})
		return
	}
	if !h.types.IsVersionable(cfg.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unknown or unversioned content type %q", cfg.ContentType),
		})
		return
	}

	if err := h.repo.Upsert(c.Request.Context(), &cfg); err != nil {
		h.logger.Error("Failed to save default duration",
			logger.String("content_type", cfg.ContentType),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save default duration"})
		return
	}

	h.logger.Info("Default duration saved",
		logger.String("content_type", cfg.ContentType),
		logger.Int("duration_months", cfg.DurationMonths),
	)

	c.JSON(http.StatusOK, cfg)
}

func (h *DefaultsHandler) Delete(c *gin.Context) {
	contentType := c.Param("content_type")

	if err := h.repo.Delete(c.Request.Context(), contentType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Default duration not found"})
			return
		}
		h.logger.Error("Failed to delete default duration",
			logger.String("content_type", contentType),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete default duration"})
		return
	}

	h.logger.Info("Default duration deleted",
		logger.String("content_type", contentType),
	)

	c.JSON(http.StatusNoContent, nil)
}
