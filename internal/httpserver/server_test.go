package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-uplift/internal/config"
	"github.com/radiusdt/vector-uplift/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth:      config.AuthConfig{Enabled: false},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Metrics:   config.MetricsConfig{Enabled: false},
		Engine: config.EngineConfig{
			BaselineWindowDays:  14,
			PostWindowDays:      7,
			LookbackCeilingDays: 60,
		},
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(&Dependencies{
		Config: testConfig(),
		Logger: zap.NewNop(),
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestActivityCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/activities", models.Activity{
		Channel: "newsletter",
		Date:    "2024-03-15",
		Status:  models.ActivityStatusLive,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID, "server mints an id when none is supplied")

	rec = doJSON(t, srv, http.MethodGet, "/activities/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/activities?channel=newsletter", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/activities/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/activities/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivityValidationRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/activities", models.Activity{
		Channel: "newsletter",
		Date:    "not-a-date",
		Status:  models.ActivityStatusLive,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/activities", models.Activity{
		Channel: "newsletter",
		Date:    "2024-03-15",
		Status:  "paused",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyMetricIngestAndComputeFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/activities", models.Activity{
		ID:           "nl-1",
		Channel:      "newsletter",
		Date:         "2024-03-15",
		Status:       models.ActivityStatusLive,
		ActualClicks: 100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := make([]models.DailyMetric, 0, 21)
	day := func(d string, signups int64) models.DailyMetric {
		return models.DailyMetric{Date: d, Channel: "newsletter", Signups: signups, Activations: signups / 2}
	}
	for _, d := range []string{
		"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05",
		"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10",
		"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14",
	} {
		rows = append(rows, day(d, 10))
	}
	for _, d := range []string{
		"2024-03-15", "2024-03-16", "2024-03-17", "2024-03-18",
		"2024-03-19", "2024-03-20", "2024-03-21",
	} {
		rows = append(rows, day(d, 20))
	}

	rec = doJSON(t, srv, http.MethodPost, "/metrics/daily", rows)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/reports/compute?channel=newsletter", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var computed []models.ActivityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &computed))
	require.Len(t, computed, 1)
	assert.Equal(t, "nl-1", computed[0].ActivityID)
	assert.InDelta(t, 70.0, computed[0].IncrementalSignups, 1e-9)

	rec = doJSON(t, srv, http.MethodGet, "/reports?channel=newsletter", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched []models.ActivityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Len(t, fetched, 1)

	rec = doJSON(t, srv, http.MethodGet, "/reports/activity/nl-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/reports/activity/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyMetricValidationRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/metrics/daily", []models.DailyMetric{
		{Date: "2024-03-15", Channel: "newsletter", Signups: -1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportsRequireChannel(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodDelete, "/reports/compute", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthRejectsMissingKey(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{
		Enabled:   true,
		MasterKey: "secret-key",
		SkipPaths: []string{"/health"},
	}
	srv := NewServer(&Dependencies{Config: cfg, Logger: zap.NewNop()})

	rec := doJSON(t, srv, http.MethodGet, "/activities", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	req.Header.Set("X-API-Key", "secret-key")
	authed := httptest.NewRecorder()
	srv.ServeHTTP(authed, req)
	assert.Equal(t, http.StatusOK, authed.Code)
}
