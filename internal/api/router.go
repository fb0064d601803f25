// Package api assembles the gin router for the content expiry service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nordiccms/content-expiry/internal/handlers"
	"github.com/nordiccms/content-expiry/internal/logger"
)

const (
	corsMaxAgeHours = 12
)

// Handlers carries the wired handlers the router mounts.
type Handlers struct {
	Expiry     *handlers.ExpiryHandler
	Defaults   *handlers.DefaultsHandler
	Moderation *handlers.ModerationHandler
}

func NewRouter(h Handlers, corsOrigins []string, log logger.Logger) *gin.Engine {
	router := gin.New()

	// CORS middleware - must be first
	router.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"X-CSRF-Token", "Authorization", "accept", "origin",
			"Cache-Control", "X-Requested-With", "X-User",
		},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}))

	// Middleware
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1
	v1 := router.Group("/api/v1")

	// Changelist endpoints
	expiry := v1.Group("/content-expiry")
	expiry.GET("", h.Expiry.List)
	expiry.GET("/export", h.Expiry.Export)
	expiry.GET("/:id", h.Expiry.GetByID)
	expiry.PUT("/:id", h.Expiry.Update)

	// Default duration configuration
	defaults := v1.Group("/default-durations")
	defaults.GET("", h.Defaults.List)
	defaults.PUT("", h.Defaults.Upsert)
	defaults.DELETE("/:content_type", h.Defaults.Delete)

	// Moderation collection actions
	v1.POST("/collections/:id/copy-expiry", h.Moderation.CopyExpiry)

	// Authors endpoint for filter dropdowns
	v1.GET("/authors", h.Expiry.Authors)

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", statusCode),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", duration),
		)
	}
}
