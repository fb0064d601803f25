package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordiccms/content-expiry/internal/events"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
	"github.com/nordiccms/content-expiry/internal/testhelpers"
)

type fakeVersionLookup struct {
	versions map[int64]*models.Version
	err      error
}

func (f *fakeVersionLookup) GetByID(_ context.Context, id int64) (*models.Version, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.versions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

type fakeDraftHandler struct {
	handled []int64
	err     error
}

func (f *fakeDraftHandler) HandleDraftCreated(_ context.Context, version *models.Version) error {
	f.handled = append(f.handled, version.ID)
	return f.err
}

func draftEvent(versionID int64) events.VersionEvent {
	return events.VersionEvent{
		EventID:   uuid.New(),
		EventType: events.VersionDraftCreated,
		VersionID: versionID,
		Timestamp: time.Now(),
	}
}

func TestExpiryHandler_HandleDraftCreated(t *testing.T) {
	lookup := &fakeVersionLookup{versions: map[int64]*models.Version{
		5: {ID: 5, ContentType: "page"},
	}}
	service := &fakeDraftHandler{}
	handler := events.NewExpiryHandler(lookup, service, testhelpers.NewTestLogger())

	err := handler.HandleDraftCreated(context.Background(), draftEvent(5))
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, service.handled)
}

func TestExpiryHandler_UnknownVersionDropped(t *testing.T) {
	lookup := &fakeVersionLookup{versions: map[int64]*models.Version{}}
	service := &fakeDraftHandler{}
	handler := events.NewExpiryHandler(lookup, service, testhelpers.NewTestLogger())

	// The version was deleted between publish and delivery; the event is
	// dropped, not retried.
	err := handler.HandleDraftCreated(context.Background(), draftEvent(99))
	require.NoError(t, err)
	assert.Empty(t, service.handled)
}

func TestExpiryHandler_LookupFailurePropagates(t *testing.T) {
	lookup := &fakeVersionLookup{err: errors.New("db down")}
	handler := events.NewExpiryHandler(lookup, &fakeDraftHandler{}, testhelpers.NewTestLogger())

	err := handler.HandleDraftCreated(context.Background(), draftEvent(5))
	require.Error(t, err, "a transient failure must surface so the message is redelivered")
}

func TestNewConsumer_RequiresClient(t *testing.T) {
	consumer := events.NewConsumer(nil, "test", nil, testhelpers.NewTestLogger())
	if consumer != nil {
		t.Error("expected nil consumer when client is nil")
	}
}
