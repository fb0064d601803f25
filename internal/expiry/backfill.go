package expiry

import (
	"context"
	"fmt"
	"time"

	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
)

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Created int
	Skipped int
}

// Backfill creates expiry records for every version that lacks one. When
// override is non-nil all created records use that fixed date; otherwise each
// record gets the version's modified time plus the resolved duration. The
// modified time is when a published version went live, which is what matters
// for expiry. Versions of unregistered content types are skipped with a
// warning. progress receives one line per processed version.
func (s *Service) Backfill(ctx context.Context, override *time.Time, progress func(string)) (BackfillResult, error) {
	if progress == nil {
		progress = func(string) {}
	}

	var result BackfillResult

	versions, err := s.versions.ListMissingExpiry(ctx)
	if err != nil {
		return result, fmt.Errorf("list versions missing expiry: %w", err)
	}

	for i := range versions {
		version := &versions[i]
		progress(fmt.Sprintf("Processing version: %d", version.ID))

		if _, ok := s.registry.Get(version.ContentType); !ok {
			result.Skipped++
			progress(fmt.Sprintf("No registered content found for version: %d", version.ID))
			s.logger.Warn("Backfill skipped version with unregistered content type",
				logger.Int64("version_id", version.ID),
				logger.String("content_type", version.ContentType),
			)
			continue
		}

		var expires time.Time
		if override != nil {
			expires = *override
		} else {
			expires = AddMonths(version.Modified, s.ResolveDurationMonths(ctx, version))
		}

		record := &models.ContentExpiry{
			VersionID: version.ID,
			Created:   version.Created,
			CreatedBy: version.CreatedBy,
			Expires:   expires,
		}
		if err := s.expiries.Create(ctx, record); err != nil {
			return result, fmt.Errorf("create expiry for version %d: %w", version.ID, err)
		}

		result.Created++
		progress(fmt.Sprintf("Content expiry: %d created for version: %d", record.ID, version.ID))
	}

	return result, nil
}
