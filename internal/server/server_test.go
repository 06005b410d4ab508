package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core"
	"github.com/orbitwatch/orbitgraph/internal/core/query"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

type stubStore struct {
	err error
}

func (s *stubStore) ExecuteQuery(context.Context, string, map[string]interface{}) (neo4j.EagerResult, error) {
	if s.err != nil {
		return neo4j.EagerResult{}, s.err
	}
	return neo4j.EagerResult{}, nil
}

func (s *stubStore) WriteBatch(context.Context, []driver.Statement) error { return s.err }
func (s *stubStore) BuildIndices(context.Context) error                   { return nil }
func (s *stubStore) Close(context.Context) error                          { return nil }

func testRouter(store driver.GraphStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	log := logger.NewNop()
	engine := core.NewEngine(store, cfg, log)
	svc := query.NewService(store, cfg, log)
	return NewServer(engine, svc, nil, cfg, log).SetupRouter()
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := envelope(t, rec)
	assert.NotEmpty(t, body["generated_at"])
}

func TestMergeSourceValidation(t *testing.T) {
	router := testRouter(&stubStore{})

	// Malformed JSON body.
	req := httptest.NewRequest(http.MethodPost, "/api/satellites/sat-1/sources/unoosa", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty payload rejected by the merger.
	rec = doRequest(t, router, http.MethodPost, "/api/satellites/sat-1/sources/unoosa", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMergeSourceSuccess(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodPost, "/api/satellites/sat-1/sources/unoosa",
		map[string]interface{}{"name": "SAT 1", "country_of_origin": "France"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := envelope(t, rec)
	data := body["data"].(map[string]interface{})
	canonical := data["canonical"].(map[string]interface{})
	assert.Equal(t, "SAT 1", canonical["name"])
}

func TestGetSatelliteNotFound(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodGet, "/api/satellites/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryGraphUnknownType(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodGet, "/api/graphs/orbits", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryGraphUnknownSelectorIsEmptyNotError(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodGet, "/api/graphs/registration?selector=no-such-doc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := envelope(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Empty(t, data["nodes"])
	assert.Empty(t, data["edges"])
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["count"])
}

func TestRebuildRejectsReadOnlyTypes(t *testing.T) {
	router := testRouter(&stubStore{})
	for _, relType := range []string{"timeline", "function", "bogus"} {
		rec := doRequest(t, router, http.MethodPost, "/api/admin/rebuild?type="+relType, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, relType)
	}
}

func TestRebuildSingleType(t *testing.T) {
	rec := doRequest(t, testRouter(&stubStore{}), http.MethodPost, "/api/admin/rebuild?type=constellation", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := envelope(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "constellation", data["type"])
}

func TestStoreOutageMapsToServiceUnavailable(t *testing.T) {
	store := &stubStore{err: fmt.Errorf("%w: connection refused", driver.ErrUnavailable)}
	rec := doRequest(t, testRouter(store), http.MethodGet, "/api/satellites", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
