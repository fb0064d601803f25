package changelist

import (
	"context"
	"fmt"
	"time"

	"github.com/nordiccms/content-expiry/internal/config"
	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// ExclusionSource yields site exclusions on a cache miss. Satisfied by
// *contenttypes.Registry.
type ExclusionSource interface {
	SiteExclusions(ctx context.Context, siteID int64) ([]contenttypes.ContentRef, error)
}

// ExclusionCache is the short-lived per-site cache in front of the exclusion
// computation. Satisfied by *cache.ExclusionCache.
type ExclusionCache interface {
	Get(ctx context.Context, siteID int64) ([]contenttypes.ContentRef, bool)
	Set(ctx context.Context, siteID int64, refs []contenttypes.ContentRef) error
}

// Scoper resolves parsed changelist params into a repository filter. The
// site exclusion runs first and unconditionally; the remaining filters apply
// the documented defaults: published-only when no state is selected, and a
// trailing date window when no expires bound is supplied.
type Scoper struct {
	exclusions ExclusionSource
	cache      ExclusionCache
	cfg        config.ExpiryConfig
	logger     logger.Logger
	now        func() time.Time
}

func NewScoper(exclusions ExclusionSource, exclusionCache ExclusionCache, cfg config.ExpiryConfig, log logger.Logger) *Scoper {
	return &Scoper{
		exclusions: exclusions,
		cache:      exclusionCache,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// Scope builds the repository filter for one changelist request.
func (s *Scoper) Scope(ctx context.Context, p Params) (repository.ListFilter, error) {
	refs, err := s.siteExclusions(ctx, p.SiteID)
	if err != nil {
		return repository.ListFilter{}, err
	}

	filter := repository.ListFilter{
		Exclusions:       refs,
		ContentTypes:     p.ContentTypes,
		CreatedBy:        p.CreatedBy,
		States:           p.States,
		ComplianceNumber: p.ComplianceNumber,
		Limit:            p.Limit,
		Offset:           p.Offset,
	}

	// The changelist exists to surface content that is about to lapse or
	// already has; only published content has consequences when it does, so
	// that is the default state scope.
	if !p.AllStates && len(p.States) == 0 {
		filter.States = []string{models.StatePublished}
	}
	if p.AllStates {
		filter.States = nil
	}

	filter.ExpiresGTE = p.ExpiresGTE
	filter.ExpiresLTE = p.ExpiresLTE
	if filter.ExpiresGTE == nil {
		gte := s.now().AddDate(0, 0, -s.cfg.RangeFilterDays)
		filter.ExpiresGTE = &gte
	}
	if filter.ExpiresLTE == nil {
		lte := s.now()
		filter.ExpiresLTE = &lte
	}

	return filter, nil
}

// siteExclusions serves the exclusion set from the cache, computing and
// repopulating it synchronously on a miss. A miss is never user-visible; a
// failed cache write only costs the next request a recompute.
func (s *Scoper) siteExclusions(ctx context.Context, siteID int64) ([]contenttypes.ContentRef, error) {
	if refs, ok := s.cache.Get(ctx, siteID); ok {
		return refs, nil
	}

	refs, err := s.exclusions.SiteExclusions(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("compute site exclusions: %w", err)
	}

	if setErr := s.cache.Set(ctx, siteID, refs); setErr != nil {
		s.logger.Warn("Exclusion cache write failed",
			logger.Int64("site_id", siteID),
			logger.Error(setErr),
		)
	}

	return refs, nil
}
