package handlers_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordiccms/content-expiry/internal/changelist"
	"github.com/nordiccms/content-expiry/internal/export"
	"github.com/nordiccms/content-expiry/internal/handlers"
	"github.com/nordiccms/content-expiry/internal/models"
	"github.com/nordiccms/content-expiry/internal/repository"
	"github.com/nordiccms/content-expiry/internal/testhelpers"
)

// fakeExpiryStore is an in-memory handlers.ExpiryStore.
type fakeExpiryStore struct {
	records    map[int64]*models.ExpiryRecord
	lastFilter repository.ListFilter
}

func newFakeExpiryStore(records ...models.ExpiryRecord) *fakeExpiryStore {
	s := &fakeExpiryStore{records: make(map[int64]*models.ExpiryRecord)}
	for i := range records {
		record := records[i]
		s.records[record.ID] = &record
	}
	return s
}

func (s *fakeExpiryStore) list() []models.ExpiryRecord {
	out := make([]models.ExpiryRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out
}

func (s *fakeExpiryStore) List(_ context.Context, filter repository.ListFilter) ([]models.ExpiryRecord, error) {
	s.lastFilter = filter
	return s.list(), nil
}

func (s *fakeExpiryStore) ListAll(_ context.Context, filter repository.ListFilter) ([]models.ExpiryRecord, error) {
	s.lastFilter = filter
	return s.list(), nil
}

func (s *fakeExpiryStore) Count(_ context.Context, _ repository.ListFilter) (int, error) {
	return len(s.records), nil
}

func (s *fakeExpiryStore) GetByID(_ context.Context, id int64) (*models.ExpiryRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *fakeExpiryStore) UpdateExpires(_ context.Context, id int64, expires time.Time) error {
	record, ok := s.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	record.Expires = expires
	return nil
}

func (s *fakeExpiryStore) UpdateCompliance(_ context.Context, id int64, compliance *string) error {
	record, ok := s.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	record.ComplianceNumber = compliance
	return nil
}

func (s *fakeExpiryStore) Authors(_ context.Context) ([]string, error) {
	return []string{"alice", "bob"}, nil
}

// passthroughScoper copies the parsed params into a filter without defaults,
// so tests can assert what the handler forwarded.
type passthroughScoper struct{}

func (passthroughScoper) Scope(_ context.Context, p changelist.Params) (repository.ListFilter, error) {
	return repository.ListFilter{
		ContentTypes: p.ContentTypes,
		CreatedBy:    p.CreatedBy,
		States:       p.States,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}, nil
}

type stubResolver struct{}

func (stubResolver) ResolveURL(_ context.Context, v *models.Version) string {
	return "/preview/"
}

func expiryRouter(store *fakeExpiryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	exporter := export.NewExporter(stubResolver{}, "2006-01-02")
	handler := handlers.NewExpiryHandler(store, passthroughScoper{}, exporter, 1, testhelpers.NewTestLogger())

	router := gin.New()
	router.GET("/content-expiry", handler.List)
	router.GET("/content-expiry/export", handler.Export)
	router.GET("/content-expiry/:id", handler.GetByID)
	router.PUT("/content-expiry/:id", handler.Update)
	router.GET("/authors", handler.Authors)
	return router
}

func draftRecord(id int64) models.ExpiryRecord {
	return models.ExpiryRecord{
		ContentExpiry: models.ContentExpiry{
			ID:        id,
			VersionID: id * 10,
			CreatedBy: "editor",
			Expires:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		Version: models.Version{
			ID:           id * 10,
			ContentType:  "page",
			ContentTitle: "About us",
			State:        models.StateDraft,
			CreatedBy:    "editor",
		},
	}
}

func TestExpiryHandler_List(t *testing.T) {
	store := newFakeExpiryStore(draftRecord(1))
	router := expiryRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content-expiry?state=draft&created_by=editor", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Records []models.ExpiryRecord `json:"records"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Records, 1)
	assert.Equal(t, 1, resp.Count)

	assert.Equal(t, []string{"draft"}, store.lastFilter.States)
	assert.Equal(t, "editor", store.lastFilter.CreatedBy)
}

func TestExpiryHandler_List_InvalidParams(t *testing.T) {
	router := expiryRouter(newFakeExpiryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content-expiry?state=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiryHandler_GetByID_NotFound(t *testing.T) {
	router := expiryRouter(newFakeExpiryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content-expiry/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiryHandler_Update_ExpiresAlwaysEditable(t *testing.T) {
	record := draftRecord(1)
	record.Version.State = models.StatePublished
	store := newFakeExpiryStore(record)
	router := expiryRouter(store)

	body, _ := json.Marshal(map[string]any{"expires": "2026-06-01T00:00:00Z"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/content-expiry/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), updated.Expires)
}

func TestExpiryHandler_Update_ComplianceOnDraft(t *testing.T) {
	store := newFakeExpiryStore(draftRecord(1))
	router := expiryRouter(store)

	body, _ := json.Marshal(map[string]any{"compliance_number": "COMP-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/content-expiry/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, updated.ComplianceNumber)
	assert.Equal(t, "COMP-1", *updated.ComplianceNumber)
}

func TestExpiryHandler_Update_ComplianceIgnoredOnPublished(t *testing.T) {
	record := draftRecord(1)
	record.Version.State = models.StatePublished
	store := newFakeExpiryStore(record)
	router := expiryRouter(store)

	body, _ := json.Marshal(map[string]any{"compliance_number": "COMP-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/content-expiry/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Dropped, not rejected.
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, updated.ComplianceNumber)
}

func TestExpiryHandler_Export_CSV(t *testing.T) {
	store := newFakeExpiryStore(draftRecord(1))
	router := expiryRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content-expiry/export", nil)
	req.Host = "cms.example.com"
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "content-expiry.csv")

	parsed, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, export.Header, parsed[0])
	assert.Equal(t, "http://cms.example.com/preview/", parsed[1][6])
}

func TestExpiryHandler_Export_UnsupportedFormat(t *testing.T) {
	router := expiryRouter(newFakeExpiryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content-expiry/export?format=pdf", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiryHandler_Authors(t *testing.T) {
	router := expiryRouter(newFakeExpiryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authors", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Authors []string `json:"authors"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"alice", "bob"}, resp.Authors)
	assert.Equal(t, 2, resp.Count)
}
