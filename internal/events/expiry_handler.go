package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// VersionLookup reads a version row by id.
type VersionLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Version, error)
}

// DraftCreatedHandler applies a draft creation event.
type DraftCreatedHandler interface {
	HandleDraftCreated(ctx context.Context, version *models.Version) error
}

// ExpiryHandler resolves the event's version row and hands it to the expiry
// service. An event referencing a version that no longer exists is dropped;
// the version was deleted between publish and delivery and there is nothing
// left to track.
type ExpiryHandler struct {
	versions VersionLookup
	service  DraftCreatedHandler
	log      logger.Logger
}

func NewExpiryHandler(versions VersionLookup, service DraftCreatedHandler, log logger.Logger) *ExpiryHandler {
	return &ExpiryHandler{
		versions: versions,
		service:  service,
		log:      log,
	}
}

// HandleDraftCreated implements EventHandler.
func (h *ExpiryHandler) HandleDraftCreated(ctx context.Context, event VersionEvent) error {
	version, err := h.versions.GetByID(ctx, event.VersionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Warn("Dropping event for unknown version",
				logger.String("event_id", event.EventID.String()),
				logger.Int64("version_id", event.VersionID),
			)
			return nil
		}
		return fmt.Errorf("lookup version %d: %w", event.VersionID, err)
	}

	return h.service.HandleDraftCreated(ctx, version)
}
