// Package contenttypes is the capability registry for the content models this
// service decorates. Each content type registers, at wiring time, exactly the
// capabilities it has: whether it is site-bound (and how to compute the ids to
// exclude from a site's changelist), whether a published version has a live
// URL, and how to build a preview URL. Code never probes content objects for
// abilities at runtime; absence of a capability is an explicit nil.
package contenttypes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nordiccms/content-expiry/internal/models"
)

// ContentRef identifies one content object within its type's id space.
// Object ids are only unique per content type, so exclusions always travel as
// (type, id) pairs.
type ContentRef struct {
	ContentType string `json:"content_type"`
	ObjectID    int64  `json:"object_id"`
}

// SiteExclusionFunc returns the object ids of one content type that must not
// appear on the given site's changelist. Types with no site binding do not
// register one at all.
type SiteExclusionFunc func(ctx context.Context, siteID int64) ([]int64, error)

// LiveURLFunc returns the public URL of a version's content. ok is false when
// no live URL exists for this particular object.
type LiveURLFunc func(ctx context.Context, v *models.Version) (string, bool)

// PreviewURLFunc returns an authenticated preview URL for a version's content.
type PreviewURLFunc func(ctx context.Context, v *models.Version) string

// Registration declares one content type and its capability set.
type Registration struct {
	// Name is the content type token versions carry. For polymorphic
	// hierarchies this is the root type; subtypes are listed in Subtypes.
	Name string
	// Subtypes names the concrete polymorphic subtypes versioned under this
	// root, if any. They share the root's registration but may carry their
	// own default duration configuration.
	Subtypes []string
	// Versionable marks the type as eligible for a default duration
	// configuration row.
	Versionable bool
	// SiteExclusions is nil for content with no site binding.
	SiteExclusions SiteExclusionFunc
	// LiveURL is nil for content that is never publicly addressable.
	LiveURL LiveURLFunc
	// PreviewURL is nil to fall back to the generic admin preview URL.
	PreviewURL PreviewURLFunc
}

// Registry holds all content type registrations. Registration happens during
// bootstrap; lookups are concurrent afterwards.
type Registry struct {
	mu    sync.RWMutex
	regs  map[string]Registration
	order []string
}

func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]Registration)}
}

// Register adds a content type. Registering an empty or duplicate name is a
// wiring bug and returns an error.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("content type registration requires a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[reg.Name]; exists {
		return fmt.Errorf("content type %q already registered", reg.Name)
	}
	r.regs[reg.Name] = reg
	r.order = append(r.order, reg.Name)
	return nil
}

// Get returns the registration for a content type token. Subtype tokens
// resolve to their root's registration.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.regs[name]; ok {
		return reg, true
	}
	for _, reg := range r.regs {
		for _, sub := range reg.Subtypes {
			if sub == name {
				return reg, true
			}
		}
	}
	return Registration{}, false
}

// IsVersionable reports whether a content type token (root or subtype) may
// acquire a default duration configuration.
func (r *Registry) IsVersionable(name string) bool {
	reg, ok := r.Get(name)
	return ok && reg.Versionable
}

// Names returns all registered root type tokens in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// SiteExclusions computes the union of every registered exclusion predicate
// for the given site. Predicates run in registration order; a predicate error
// aborts the whole computation because a partial exclusion set would leak
// content across sites.
func (r *Registry) SiteExclusions(ctx context.Context, siteID int64) ([]ContentRef, error) {
	r.mu.RLock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	r.mu.RUnlock()

	refs := make([]ContentRef, 0)
	for _, name := range names {
		reg, ok := r.Get(name)
		if !ok || reg.SiteExclusions == nil {
			continue
		}

		ids, err := reg.SiteExclusions(ctx, siteID)
		if err != nil {
			return nil, fmt.Errorf("site exclusions for %s: %w", name, err)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			refs = append(refs, ContentRef{ContentType: name, ObjectID: id})
		}
	}
	return refs, nil
}
