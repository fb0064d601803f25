package bootstrap

import (
	"context"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
)

// BuildRegistry declares the content types this deployment tracks and the
// capabilities each one carries. Pages and aliases are site-bound and excluded
// from foreign sites' changelists; snippets have no site binding; projects are
// a polymorphic hierarchy whose subtypes carry their own duration defaults.
func BuildRegistry(content *repository.ContentRepository, log logger.Logger) *contenttypes.Registry {
	registry := contenttypes.NewRegistry()

	mustRegister(registry, contenttypes.Registration{
		Name:        "page",
		Versionable: true,
		SiteExclusions: func(ctx context.Context, siteID int64) ([]int64, error) {
			return content.PageIDsNotOnSite(ctx, siteID)
		},
		LiveURL: func(ctx context.Context, v *models.Version) (string, bool) {
			path, err := content.PagePath(ctx, v.ObjectID)
			if err != nil {
				return "", false
			}
			return path, true
		},
		PreviewURL: func(ctx context.Context, v *models.Version) string {
			return fmt.Sprintf("/admin/pages/%d/preview/", v.ObjectID)
		},
	})

	mustRegister(registry, contenttypes.Registration{
		Name:        "alias",
		Versionable: true,
		SiteExclusions: func(ctx context.Context, siteID int64) ([]int64, error) {
			return content.AliasIDsNotOnSite(ctx, siteID)
		},
	})

	mustRegister(registry, contenttypes.Registration{
		Name:        "snippet",
		Versionable: true,
	})

	mustRegister(registry, contenttypes.Registration{
		Name:        "project",
		Subtypes:    []string{"artproject", "researchproject"},
		Versionable: true,
	})

	log.Info("Content type registry built",
		logger.Strings("types", registry.Names()),
	)
	return registry
}

// mustRegister panics on a duplicate or unnamed registration. The registrations
// above are static, so a failure here is a programming error caught at startup.
func mustRegister(registry *contenttypes.Registry, reg contenttypes.Registration) {
	if err := registry.Register(reg); err != nil {
		panic(err)
	}
}
