package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othmanee23/oraxonoptic/internal/auth"
	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/observability"
)

func newLoginRouter(t *testing.T) (*chi.Mux, *mockRepo, *observability.Metrics) {
	t.Helper()
	service, repo, _, _ := newService(t)
	metrics := observability.NewMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, service, "http://localhost:5173", metrics)
	router := chi.NewRouter()
	router.Route("/api/auth", handler.MountRoutes)
	return router, repo, metrics
}

func postLogin(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func scrapeMetrics(t *testing.T, metrics *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestLoginRecordsOutcomeMetrics(t *testing.T) {
	router, repo, metrics := newLoginRouter(t)
	seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	rec := postLogin(t, router, `{"email":"v@oraxon.ma","password":"wrongpassword"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postLogin(t, router, `{"email":"v@oraxon.ma","password":"longenough"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, `oraxon_logins_total{outcome="failure"} 1`)
	assert.Contains(t, body, `oraxon_logins_total{outcome="success"} 1`)
}

func TestLoginValidationFailureCountsAsFailure(t *testing.T) {
	router, _, metrics := newLoginRouter(t)

	rec := postLogin(t, router, `{"email":"not-an-email","password":"longenough"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Contains(t, scrapeMetrics(t, metrics), `oraxon_logins_total{outcome="failure"} 1`)
}
