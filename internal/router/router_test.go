package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/kentalbores/IntProg-sub001/internal/auth"
	"github.com/kentalbores/IntProg-sub001/internal/metrics"
)

func newTestHandler(t *testing.T, authRequired bool) http.Handler {
	return RegisterRoutes(Deps{
		Logger:       zaptest.NewLogger(t).Sugar(),
		Tokens:       auth.NewTokenService("s3cret", "eventhub", time.Minute),
		AuthRequired: authRequired,
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, false)
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "200"))

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "200")))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, false)
	get(h, "/health")

	rec := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestNotFound(t *testing.T) {
	rec := get(newTestHandler(t, false), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"not found"}`, rec.Body.String())
}

func TestRoleRequiresTokenWhenEnabled(t *testing.T) {
	h := newTestHandler(t, true)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/role", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
