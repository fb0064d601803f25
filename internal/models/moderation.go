package models

// ModerationRequest is one item of a moderation collection, owned by the
// external moderation service. It links a collection to a version.
type ModerationRequest struct {
	ID           int64 `json:"id" db:"id"`
	CollectionID int64 `json:"collection_id" db:"collection_id"`
	VersionID    int64 `json:"version_id" db:"version_id"`
}
