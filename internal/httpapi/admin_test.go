package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/refresh"
)

func TestDefaultWeight(t *testing.T) {
	require.Equal(t, 100, defaultWeight(0, 100))
	require.Equal(t, 100, defaultWeight(-5, 100))
	require.Equal(t, 42, defaultWeight(42, 100))
}

// Blacklist handlers short-circuit on a missing value before ever
// touching the repository, so a nil repo/hasher is safe here.
func TestBlacklistEmailRejectsMissingValue(t *testing.T) {
	h := NewAdminHandler(nil, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/blacklist/email", bytes.NewReader([]byte(`{"reason":"test"}`)))
	rec := httptest.NewRecorder()

	h.BlacklistEmail(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlacklistIPRejectsInvalidJSON(t *testing.T) {
	h := NewAdminHandler(nil, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/blacklist/ip", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.BlacklistIP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshSourceAllWithNoRegisteredSources(t *testing.T) {
	pipeline := refresh.NewPipeline(testLogger())
	h := NewAdminHandler(nil, nil, pipeline, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/refresh/all", nil)
	req = withURLParam(req, "source", "all")
	rec := httptest.NewRecorder()

	h.RefreshSource(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshSourceUnknownSourceFails(t *testing.T) {
	pipeline := refresh.NewPipeline(testLogger())
	h := NewAdminHandler(nil, nil, pipeline, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/refresh/bogus", nil)
	req = withURLParam(req, "source", "bogus")
	rec := httptest.NewRecorder()

	h.RefreshSource(rec, req)

	require.NotEqual(t, http.StatusOK, rec.Code)
}

// withURLParam attaches a chi route param to a request the way chi's
// router would when dispatching through {source}, so handlers built
// around chi.URLParam can be unit tested without a full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
