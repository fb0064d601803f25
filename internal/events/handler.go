package events

import "context"

// EventHandler processes version lifecycle events. Only draft creation has a
// handler; the remaining lifecycle events are acknowledged and dropped because
// expiry records follow a version for its whole life once created.
type EventHandler interface {
	HandleDraftCreated(ctx context.Context, event VersionEvent) error
}
