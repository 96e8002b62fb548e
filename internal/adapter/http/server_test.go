package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/quake-data-etl/internal/adapter/http"
)

// stubReadiness reports a fixed readiness result and records whether the
// probe ran under a deadline.
type stubReadiness struct {
	err         error
	sawDeadline bool
}

func (s *stubReadiness) CheckReadiness(ctx context.Context) error {
	_, s.sawDeadline = ctx.Deadline()
	return s.err
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReportsServiceIdentity(t *testing.T) {
	srv := httpadapter.NewServer(":0", &stubReadiness{}, slog.Default())

	rec := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "quake-data-etl", body["service"])
}

func TestReadyzFollowsPipelineState(t *testing.T) {
	t.Run("ready once a fetch has landed", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", &stubReadiness{}, slog.Default())

		rec := get(t, srv, "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", decodeBody(t, rec)["status"])
	})

	t.Run("unavailable while the first fetch is outstanding", func(t *testing.T) {
		check := &stubReadiness{err: fmt.Errorf("no successful fetch yet")}
		srv := httpadapter.NewServer(":0", check, slog.Default())

		rec := get(t, srv, "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "not ready", body["status"])
		assert.Equal(t, "no successful fetch yet", body["error"])
	})
}

func TestReadyzRunsProbeUnderDeadline(t *testing.T) {
	check := &stubReadiness{}
	srv := httpadapter.NewServer(":0", check, slog.Default())

	get(t, srv, "/readyz")

	assert.True(t, check.sawDeadline, "readiness probe should carry a deadline")
}

func TestMetricsServesPrometheusExposition(t *testing.T) {
	srv := httpadapter.NewServer(":0", &stubReadiness{}, slog.Default())

	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestOpsRoutesAreGetOnly(t *testing.T) {
	srv := httpadapter.NewServer(":0", &stubReadiness{}, slog.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/readyz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
