// Package events consumes version lifecycle events published by the CMS core
// via Redis Streams and drives expiry record creation from them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream carrying version lifecycle events.
const StreamName = "version-events"

// ConsumerGroup is the consumer group for content-expiry workers.
const ConsumerGroup = "content-expiry-workers"

// EventType represents the type of version event.
type EventType string

const (
	// VersionDraftCreated indicates a new draft version was created.
	VersionDraftCreated EventType = "VERSION_DRAFT_CREATED"
	// VersionPublished indicates a version transitioned to published.
	VersionPublished EventType = "VERSION_PUBLISHED"
	// VersionUnpublished indicates a version transitioned to unpublished.
	VersionUnpublished EventType = "VERSION_UNPUBLISHED"
	// VersionArchived indicates a version transitioned to archived.
	VersionArchived EventType = "VERSION_ARCHIVED"
)

// VersionEvent is the envelope for all version lifecycle events.
type VersionEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	VersionID int64     `json:"version_id"`
	Timestamp time.Time `json:"timestamp"`
}
