package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/switchyard"
	switchyardhttp "github.com/sagarc03/switchyard/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestRouter(t *testing.T, cfg switchyardhttp.RouterConfig) http.Handler {
	t.Helper()

	reg := switchyard.NewRegistry(switchyard.RegistryConfig{})
	require.NoError(t, reg.Get("/", func(c *switchyard.Context, next switchyard.Next) {
		_ = c.String(http.StatusOK, "Hello World!")
	}))
	require.NoError(t, reg.Get("/event/:id([0-9]{5})", func(c *switchyard.Context, next switchyard.Next) {
		_ = c.String(http.StatusOK, c.Param("id"))
	}))

	d := switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{Logger: discard})
	adapter := switchyardhttp.NewAdapter(d, switchyardhttp.AdapterConfig{Logger: discard})
	return switchyardhttp.NewRouter(cfg, adapter, reg)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, switchyardhttp.RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/_/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t, switchyardhttp.RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/_/routes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var routes []switchyardhttp.RouteInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	assert.Equal(t, []switchyardhttp.RouteInfo{
		{Method: "GET", Pattern: "/", Handlers: 1},
		{Method: "GET", Pattern: "/event/:id([0-9]{5})", Params: []string{"id"}, Handlers: 1},
	}, routes)
}

func TestRouter_ForwardsToAdapter(t *testing.T) {
	router := newTestRouter(t, switchyardhttp.RouterConfig{})

	tests := []struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		{target: "/", wantStatus: http.StatusOK, wantBody: "Hello World!"},
		{target: "/event/12345", wantStatus: http.StatusOK, wantBody: "12345"},
		{target: "/event/1234", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			assert.NotEmpty(t, rec.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_Docs(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		router := newTestRouter(t, switchyardhttp.RouterConfig{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api-docs", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		router := newTestRouter(t, switchyardhttp.RouterConfig{
			Docs: switchyardhttp.DocsConfig{Enabled: true, Title: "demo", Version: "1.0.0"},
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api-docs", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var doc switchyardhttp.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "demo", doc.Info.Title)
		assert.Contains(t, doc.Paths, "/event/{id}")

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api-docs.yaml", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

		var fromYAML switchyardhttp.Document
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &fromYAML))
		assert.Equal(t, doc.Paths["/event/{id}"]["get"].OperationID, fromYAML.Paths["/event/{id}"]["get"].OperationID)
	})
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t, switchyardhttp.RouterConfig{
		CORS: switchyardhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET"},
		},
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
