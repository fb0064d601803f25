package expiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// Mode selects which field Propagate fans out.
type Mode string

const (
	// ModeExpiry copies the expiry date.
	ModeExpiry Mode = "expiry"
	// ModeCompliance copies the compliance number.
	ModeCompliance Mode = "compliance"
)

// ParseMode maps the request's copy flag onto a Mode. Anything other than the
// compliance token means expiry, matching the action's default.
func ParseMode(value string) Mode {
	if value == "compliance" {
		return ModeCompliance
	}
	return ModeExpiry
}

// Propagate copies one field of the source version's expiry record to every
// other version in the moderation collection. Versions that already own a
// record get only that field overwritten; versions without one get a new
// record carrying the source's expiry date. The compliance number is never
// defaulted onto new records, even in compliance mode.
//
// The action is fire and forget: a missing collection, request, or source
// record is a silent no-op because the administrator can always re-trigger it
// from the collection view.
func (s *Service) Propagate(ctx context.Context, collectionID, requestID int64, mode Mode, actor string) error {
	request, err := s.moderation.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("Propagation skipped: moderation request not found",
				logger.Int64("request_id", requestID),
			)
			return nil
		}
		return fmt.Errorf("lookup moderation request: %w", err)
	}
	if request.CollectionID != collectionID {
		s.logger.Debug("Propagation skipped: request not in collection",
			logger.Int64("request_id", requestID),
			logger.Int64("collection_id", collectionID),
		)
		return nil
	}

	source, err := s.expiries.GetByVersionID(ctx, request.VersionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("Propagation skipped: source version has no expiry record",
				logger.Int64("version_id", request.VersionID),
			)
			return nil
		}
		return fmt.Errorf("lookup source expiry record: %w", err)
	}

	versions, err := s.moderation.ListCollectionVersions(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("list collection versions: %w", err)
	}

	for i := range versions {
		target := &versions[i]
		if target.ID == source.VersionID {
			continue
		}
		if err := s.propagateToVersion(ctx, source, target, mode, actor); err != nil {
			return err
		}
	}

	s.logger.Info("Expiry propagation finished",
		logger.Int64("collection_id", collectionID),
		logger.Int64("source_version_id", source.VersionID),
		logger.String("mode", string(mode)),
	)
	return nil
}

func (s *Service) propagateToVersion(
	ctx context.Context,
	source *models.ContentExpiry,
	target *models.Version,
	mode Mode,
	actor string,
) error {
	existing, err := s.expiries.GetByVersionID(ctx, target.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup expiry for version %d: %w", target.ID, err)
		}

		record := &models.ContentExpiry{
			VersionID: target.ID,
			Created:   target.Created,
			CreatedBy: actor,
			Expires:   source.Expires,
		}
		if createErr := s.expiries.Create(ctx, record); createErr != nil {
			return fmt.Errorf("create expiry for version %d: %w", target.ID, createErr)
		}
		return nil
	}

	switch mode {
	case ModeCompliance:
		if err := s.expiries.UpdateCompliance(ctx, existing.ID, source.ComplianceNumber); err != nil {
			return fmt.Errorf("copy compliance number to version %d: %w", target.ID, err)
		}
	default:
		if err := s.expiries.UpdateExpires(ctx, existing.ID, source.Expires); err != nil {
			return fmt.Errorf("copy expiry date to version %d: %w", target.ID, err)
		}
	}
	return nil
}
