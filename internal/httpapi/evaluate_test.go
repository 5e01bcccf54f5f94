package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/riskengine"
	"fraud-risk-engine/internal/scoring"
	"fraud-risk-engine/internal/vault"
	"fraud-risk-engine/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LogConfig{Level: "error", Format: "text", ServiceName: "httpapi-test", Environment: "test"})
}

type passingCheck struct{ name string }

func (c passingCheck) Name() string                  { return c.name }
func (c passingCheck) Applicable(in *checks.Input) bool { return in.Email != "" }
func (c passingCheck) Perform(ctx context.Context, in *checks.Input) checks.Result {
	return checks.Result{Name: c.name, Passed: true, Score: 5}
}

// stubAudit satisfies riskengine's unexported auditStore interface
// structurally — Evaluate only ever calls Open/Complete/Rollback, and a
// no-op double is enough to drive the handler end to end without a
// live Postgres connection, the same boundary evaluator_test.go
// exercises from inside the riskengine package itself.
type stubAudit struct{}

func (stubAudit) Open(p refdata.OpenParams) error                   { return nil }
func (stubAudit) Complete(id string, p refdata.CompleteParams) error { return nil }
func (stubAudit) Rollback(id string) error                          { return nil }

func newTestEvaluator(t *testing.T) *riskengine.Evaluator {
	t.Helper()
	h, err := hasher.New("evaluate-test-hasher-key")
	require.NoError(t, err)
	v, err := vault.New("01234567890123456789012345678901")
	require.NoError(t, err)

	return riskengine.NewEvaluator(riskengine.Config{
		Checks:     []checks.Check{passingCheck{name: "email"}},
		Thresholds: scoring.DefaultThresholds,
		Hasher:     h,
		Vault:      v,
		Audit:      stubAudit{},
		Log:        testLogger(),
	})
}

func TestEvaluateHandlerReturnsAllowDecision(t *testing.T) {
	evaluator := newTestEvaluator(t)
	handler := NewEvaluateHandler(evaluator, testLogger())

	body, _ := json.Marshal(map[string]string{"email": "user@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Evaluate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]interface{})
	require.Equal(t, "allow", data["decision"])
}

func TestEvaluateHandlerRejectsInvalidJSON(t *testing.T) {
	evaluator := newTestEvaluator(t)
	handler := NewEvaluateHandler(evaluator, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Evaluate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["success"])
}

func TestEvaluateHandlerRejectsEmptyInput(t *testing.T) {
	evaluator := newTestEvaluator(t)
	handler := NewEvaluateHandler(evaluator, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.Evaluate(rec, req)

	require.NotEqual(t, http.StatusOK, rec.Code)
}
