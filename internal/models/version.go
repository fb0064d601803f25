package models

import "time"

// Version state tokens, matching the versioning service's lifecycle.
const (
	StateDraft       = "draft"
	StatePublished   = "published"
	StateUnpublished = "unpublished"
	StateArchived    = "archived"
)

// StateAll is the sentinel a changelist request uses to disable the default
// published-only state filter.
const StateAll = "_all_"

// ValidStates lists every lifecycle state a version can be in.
var ValidStates = []string{StateDraft, StatePublished, StateUnpublished, StateArchived}

// Version is one edit of a content item, owned by the external versioning
// service. This service only reads versions; it never writes them.
type Version struct {
	ID        int64     `json:"id" db:"id"`
	GrouperID int64     `json:"grouper_id" db:"grouper_id"`
	// ContentType is the registered (root) content type token. Polymorphic
	// subtypes version under their root's token.
	ContentType string `json:"content_type" db:"content_type"`
	ObjectID    int64  `json:"object_id" db:"object_id"`
	// ContentTitle is denormalized onto the version row by the versioning
	// service so changelists and exports never join content tables per row.
	ContentTitle string `json:"content_title" db:"content_title"`
	// PolymorphicType names the concrete subtype when the content belongs to
	// a polymorphic hierarchy. Empty for plain content.
	PolymorphicType string    `json:"polymorphic_type,omitempty" db:"polymorphic_type"`
	State           string    `json:"state" db:"state"`
	SourceID        *int64    `json:"source_id,omitempty" db:"source_id"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	Created         time.Time `json:"created" db:"created"`
	Modified        time.Time `json:"modified" db:"modified"`
}

// StateDisplay returns the human readable form of a state token.
func StateDisplay(state string) string {
	switch state {
	case StateDraft:
		return "Draft"
	case StatePublished:
		return "Published"
	case StateUnpublished:
		return "Unpublished"
	case StateArchived:
		return "Archived"
	}
	return state
}

// IsValidState reports whether state is a known lifecycle state token.
func IsValidState(state string) bool {
	for _, s := range ValidStates {
		if s == state {
			return true
		}
	}
	return false
}
