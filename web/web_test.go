package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type fakeRepo struct {
	storage.Repository

	records []vanscrape.BuilderRecord
	err     error

	lastParams storage.SelectParams
}

func (f *fakeRepo) Select(_ context.Context, params storage.SelectParams) ([]vanscrape.BuilderRecord, error) {
	f.lastParams = params

	return f.records, f.err
}

func newTestServer(repo *fakeRepo) *Server {
	return New(NewService(repo), "localhost:0")
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(&fakeRepo{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAllBuilders(t *testing.T) {
	repo := &fakeRepo{
		records: []vanscrape.BuilderRecord{
			{Name: "Acme Van Co", State: "Texas", VanTypes: []string{"sprinter"}},
			{Name: "Rocky Vans", State: "Colorado"},
		},
	}

	rec := get(t, newTestServer(repo), "/api/builders")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                      `json:"success"`
		Data    []vanscrape.BuilderRecord `json:"data"`
		Count   int                       `json:"count"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Acme Van Co", resp.Data[0].Name)
}

func TestAllBuilders_EmptyStoreSerializesEmptyList(t *testing.T) {
	rec := get(t, newTestServer(&fakeRepo{}), "/api/builders")

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"data":[]`)
	assert.Contains(t, body, `"count":0`)
	assert.NotContains(t, body, "null")
}

func TestAllBuilders_NilFieldsSerializeAsEmptyShapes(t *testing.T) {
	repo := &fakeRepo{
		records: []vanscrape.BuilderRecord{{Name: "Acme Van Co", State: "Texas"}},
	}

	rec := get(t, newTestServer(repo), "/api/builders")

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"van_types":[]`)
	assert.Contains(t, body, `"amenities":[]`)
	assert.Contains(t, body, `"services":[]`)
	assert.Contains(t, body, `"social_media":{}`)
	assert.Contains(t, body, `"photos":[]`)
	assert.NotContains(t, body, "null")
}

func TestBuildersByState_CanonicalizesState(t *testing.T) {
	repo := &fakeRepo{}

	rec := get(t, newTestServer(repo), "/api/builders/state/tx")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Texas", repo.lastParams.State)
}

func TestSearchBuilders(t *testing.T) {
	repo := &fakeRepo{
		records: []vanscrape.BuilderRecord{{Name: "Acme Van Co", State: "Texas"}},
	}

	rec := get(t, newTestServer(repo), "/api/builders/search/sprinter")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sprinter", repo.lastParams.Query)
	assert.Contains(t, rec.Body.String(), "Acme Van Co")
}

func TestRepoErrorReturns500(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk on fire")}

	rec := get(t, newTestServer(repo), "/api/builders")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"success":false`)
	// Internal details never leak to clients.
	assert.False(t, strings.Contains(body, "disk on fire"), "got %q", body)
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := get(t, newTestServer(&fakeRepo{}), "/api/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteMethodsRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/builders", nil)
	rec := httptest.NewRecorder()

	newTestServer(&fakeRepo{}).Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
