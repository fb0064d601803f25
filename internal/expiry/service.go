// Package expiry implements the content expiry policy: default duration
// resolution, calendar-month expiry calculation, reaction to draft creation,
// propagation across moderation collections, and the backfill run.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nordiccms/content-expiry/internal/config"
	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// ExpiryStore is the slice of the expiry repository the service writes
// through.
type ExpiryStore interface {
	Create(ctx context.Context, expiry *models.ContentExpiry) error
	GetByVersionID(ctx context.Context, versionID int64) (*models.ContentExpiry, error)
	UpdateExpires(ctx context.Context, id int64, expires time.Time) error
	UpdateCompliance(ctx context.Context, id int64, compliance *string) error
}

// DefaultStore looks up per-content-type duration overrides.
type DefaultStore interface {
	Get(ctx context.Context, contentType string) (*models.DefaultExpiryConfiguration, error)
}

// VersionStore reads the external versions table.
type VersionStore interface {
	GetByID(ctx context.Context, id int64) (*models.Version, error)
	ListMissingExpiry(ctx context.Context) ([]models.Version, error)
}

// ModerationStore reads the external moderation tables.
type ModerationStore interface {
	GetRequest(ctx context.Context, id int64) (*models.ModerationRequest, error)
	ListCollectionVersions(ctx context.Context, collectionID int64) ([]models.Version, error)
}

// Service is the expiry policy engine. All configuration is threaded in at
// construction; nothing reads settings at call time.
type Service struct {
	expiries   ExpiryStore
	defaults   DefaultStore
	versions   VersionStore
	moderation ModerationStore
	registry   *contenttypes.Registry
	cfg        config.ExpiryConfig
	logger     logger.Logger
	now        func() time.Time
}

func NewService(
	expiries ExpiryStore,
	defaults DefaultStore,
	versions VersionStore,
	moderation ModerationStore,
	registry *contenttypes.Registry,
	cfg config.ExpiryConfig,
	log logger.Logger,
) *Service {
	return &Service{
		expiries:   expiries,
		defaults:   defaults,
		versions:   versions,
		moderation: moderation,
		registry:   registry,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// ResolveDurationMonths returns the expiry duration for a version's content
// type: the configured override if one exists, else the global default. A
// polymorphic hierarchy shares one version stream under its root type, so the
// concrete subtype decides the policy when the version carries one.
func (s *Service) ResolveDurationMonths(ctx context.Context, version *models.Version) int {
	contentType := version.ContentType
	if version.PolymorphicType != "" {
		contentType = version.PolymorphicType
	}

	cfg, err := s.defaults.Get(ctx, contentType)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			// A lookup miss is policy, a lookup failure is not; fall back
			// either way but keep the failure visible.
			s.logger.Warn("Default duration lookup failed, using global default",
				logger.String("content_type", contentType),
				logger.Error(err),
			)
		}
		return s.cfg.DefaultDurationMonths
	}
	return cfg.DurationMonths
}

// ComputeExpiry returns the expiry timestamp for a new draft version. When
// the draft was created from a source version that already owns an expiry
// record, that record's date carries over verbatim so the expiry survives
// edit/publish cycles. Otherwise the date is the version's modification time
// plus the resolved duration.
func (s *Service) ComputeExpiry(ctx context.Context, version *models.Version) (time.Time, error) {
	if version.SourceID != nil {
		source, err := s.expiries.GetByVersionID(ctx, *version.SourceID)
		if err == nil {
			return source.Expires, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, fmt.Errorf("lookup source expiry: %w", err)
		}
	}

	months := s.ResolveDurationMonths(ctx, version)
	return AddMonths(version.Modified, months), nil
}

// HandleDraftCreated creates the expiry record for a version that just
// entered its initial draft state. Re-delivery for a version that already
// owns a record is a no-op; the one-per-version constraint enforces it.
func (s *Service) HandleDraftCreated(ctx context.Context, version *models.Version) error {
	expires, err := s.ComputeExpiry(ctx, version)
	if err != nil {
		return fmt.Errorf("compute expiry for version %d: %w", version.ID, err)
	}

	record := &models.ContentExpiry{
		VersionID: version.ID,
		Created:   version.Created,
		CreatedBy: version.CreatedBy,
		Expires:   expires,
	}

	if err := s.expiries.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.logger.Debug("Expiry record already exists, skipping",
				logger.Int64("version_id", version.ID),
			)
			return nil
		}
		return fmt.Errorf("create expiry record for version %d: %w", version.ID, err)
	}

	s.logger.Info("Expiry record created",
		logger.Int64("expiry_id", record.ID),
		logger.Int64("version_id", version.ID),
		logger.Time("expires", expires),
	)
	return nil
}
