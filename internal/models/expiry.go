// Package models holds the persistent types of the content-expiry service and
// the read-only projections of the versioning and moderation services it
// decorates.
package models

import "time"

// ContentExpiry attaches an expiry date and optional compliance number to one
// version. Exactly one record exists per version; its lifecycle is bound to
// the version's (ON DELETE CASCADE), records are never deleted directly.
type ContentExpiry struct {
	ID        int64 `json:"id" db:"id"`
	VersionID int64 `json:"version_id" db:"version_id"`
	// Created is copied from the version at creation time and never changes.
	Created time.Time `json:"created" db:"created"`
	// CreatedBy is the version's author, immutable.
	CreatedBy string    `json:"created_by" db:"created_by"`
	Expires   time.Time `json:"expires" db:"expires"`
	// ComplianceNumber is free text, editable only while the owning version
	// is in draft state.
	ComplianceNumber *string `json:"compliance_number,omitempty" db:"compliance_number"`
}

// ExpiryRecord is the changelist row shape: an expiry record joined with its
// owning version.
type ExpiryRecord struct {
	ContentExpiry
	Version Version `json:"version"`
}

// DefaultExpiryConfiguration is a per-content-type override for the default
// expiry duration. At most one row exists per content type; only registered
// versionable content types may acquire one.
type DefaultExpiryConfiguration struct {
	ContentType    string `json:"content_type" db:"content_type"`
	DurationMonths int    `json:"duration_months" db:"duration_months"`
}
