package contenttypes

import (
	"context"
	"fmt"

	"github.com/nordiccms/content-expiry/internal/models"
)

// FallbackPreviewURL is the generic admin preview path used when a content
// type registers no preview resolver of its own.
func FallbackPreviewURL(v *models.Version) string {
	return fmt.Sprintf("/admin/preview/%s/%d/", v.ContentType, v.ObjectID)
}

// ResolveURL picks the best URL for a version's content: the live URL when the
// version is published and the type has that capability, else the type's own
// preview URL, else the generic preview fallback. It never fails; the fallback
// always resolves.
func (r *Registry) ResolveURL(ctx context.Context, v *models.Version) string {
	reg, ok := r.Get(v.ContentType)
	if !ok {
		return FallbackPreviewURL(v)
	}

	if v.State == models.StatePublished && reg.LiveURL != nil {
		if url, found := reg.LiveURL(ctx, v); found {
			return url
		}
	}
	if reg.PreviewURL != nil {
		return reg.PreviewURL(ctx, v)
	}
	return FallbackPreviewURL(v)
}
