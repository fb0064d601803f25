package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nordiccms/content-expiry/internal/expiry"
	"github.com/nordiccms/content-expiry/internal/logger"
)

// Propagator fans out one expiry field across a moderation collection.
type Propagator interface {
	Propagate(ctx context.Context, collectionID, requestID int64, mode expiry.Mode, actor string) error
}

type ModerationHandler struct {
	service Propagator
	logger  logger.Logger
}

func NewModerationHandler(service Propagator, log logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		service: service,
		logger:  log,
	}
}

// CopyExpiry triggers propagation from one moderation request's version to the
// rest of its collection. The response is always a redirect back to the
// collection view; a request that cannot be propagated (missing request,
// missing source record) is a silent no-op so the admin lands back where they
// started either way.
func (h *ModerationHandler) CopyExpiry(c *gin.Context) {
	collectionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid collection id %q", c.Param("id"))})
		return
	}

	requestID, err := strconv.ParseInt(c.Query("moderation_request"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid moderation_request %q", c.Query("moderation_request")),
		})
		return
	}

	mode := expiry.ParseMode(c.Query("copy"))
	actor := c.GetHeader("X-User")

	if err := h.service.Propagate(c.Request.Context(), collectionID, requestID, mode, actor); err != nil {
		h.logger.Error("Failed to propagate expiry",
			logger.Int64("collection_id", collectionID),
			logger.Int64("request_id", requestID),
			logger.String("mode", string(mode)),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to propagate expiry"})
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/collections/%d/", collectionID))
}
