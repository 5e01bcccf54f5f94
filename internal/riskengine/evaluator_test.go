package riskengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/scoring"
	"fraud-risk-engine/internal/vault"
	apperrors "fraud-risk-engine/pkg/errors"
	"fraud-risk-engine/pkg/logger"
)

// fakeCheck is a hand-rolled checks.Check test double, matching the
// fake style internal/checks' own tests use: no mocking framework, a
// plain struct the test configures directly.
type fakeCheck struct {
	name      string
	result    checks.Result
	block     chan struct{}
}

func (f *fakeCheck) Name() string                    { return f.name }
func (f *fakeCheck) Applicable(in *checks.Input) bool { return true }
func (f *fakeCheck) Perform(ctx context.Context, in *checks.Input) checks.Result {
	if f.block != nil {
		<-f.block
	}
	return f.result
}

// fakeAuditStore is a hand-rolled auditStore test double, used instead
// of a live Postgres connection.
type fakeAuditStore struct {
	opened       []refdata.OpenParams
	completed    []refdata.CompleteParams
	rolledBack   []string
	completeErr  error
}

func (f *fakeAuditStore) Open(p refdata.OpenParams) error {
	f.opened = append(f.opened, p)
	return nil
}

func (f *fakeAuditStore) Complete(id string, p refdata.CompleteParams) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, p)
	return nil
}

func (f *fakeAuditStore) Rollback(id string) error {
	f.rolledBack = append(f.rolledBack, id)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.LogConfig{Level: "error", Format: "text", ServiceName: "riskengine-test", Environment: "test"})
}

func newTestEvaluator(t *testing.T, checksList []checks.Check, audit *fakeAuditStore) *Evaluator {
	h, err := hasher.New("test-hasher-key")
	require.NoError(t, err)
	v, err := vault.New("01234567890123456789012345678901")
	require.NoError(t, err)

	return NewEvaluator(Config{
		Checks:     checksList,
		Thresholds: scoring.DefaultThresholds,
		Hasher:     h,
		Vault:      v,
		Audit:      audit,
		Log:        testLogger(),
	})
}

func TestEvaluateRejectsEmptyInput(t *testing.T) {
	audit := &fakeAuditStore{}
	eval := newTestEvaluator(t, nil, audit)

	_, err := eval.Evaluate(context.Background(), &checks.Input{}, CallerInfo{})

	require.Error(t, err)
	require.Empty(t, audit.opened, "no audit record should be opened for invalid input")
}

func TestEvaluateAggregatesPassingChecks(t *testing.T) {
	low := &fakeCheck{name: "email", result: checks.Result{Name: "email", Passed: true, Score: 10}}
	audit := &fakeAuditStore{}
	eval := newTestEvaluator(t, []checks.Check{low}, audit)

	result, err := eval.Evaluate(context.Background(), &checks.Input{Email: "alice@example.com"}, CallerInfo{UserID: "u1"})

	require.NoError(t, err)
	require.Equal(t, "allow", result.Decision)
	require.Len(t, audit.opened, 1)
	require.Len(t, audit.completed, 1)
	require.Equal(t, result.RiskScore, audit.completed[0].Score)
	require.Contains(t, result.Checks, "email")
}

func TestEvaluateAppliesCriticalFailureFloor(t *testing.T) {
	blacklisted := &fakeCheck{
		name: "email",
		result: checks.Result{
			Name: "email", Passed: false, Score: 100,
			Details: map[string]interface{}{"blacklisted": true},
		},
	}
	audit := &fakeAuditStore{}
	eval := newTestEvaluator(t, []checks.Check{blacklisted}, audit)

	result, err := eval.Evaluate(context.Background(), &checks.Input{Email: "bad@example.com"}, CallerInfo{})

	require.NoError(t, err)
	require.GreaterOrEqual(t, result.RiskScore, 90)
	require.Equal(t, "block", result.Decision)
}

func TestEvaluateRollsBackOnCompleteFailure(t *testing.T) {
	low := &fakeCheck{name: "email", result: checks.Result{Name: "email", Passed: true, Score: 10}}
	audit := &fakeAuditStore{completeErr: errors.New("connection reset")}
	eval := newTestEvaluator(t, []checks.Check{low}, audit)

	result, err := eval.Evaluate(context.Background(), &checks.Input{Email: "alice@example.com"}, CallerInfo{})

	require.Nil(t, result)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrInternalServerError.Code, appErr.Code)
	require.Len(t, audit.opened, 1)
	require.Empty(t, audit.completed)
	require.Len(t, audit.rolledBack, 1)
	require.Equal(t, audit.opened[0].ID, audit.rolledBack[0])
}

func TestEvaluateTimesOutSlowCheck(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	slow := &fakeCheck{name: "domain", result: checks.Result{Name: "domain", Passed: true, Score: 0}, block: block}

	audit := &fakeAuditStore{}
	eval := newTestEvaluator(t, []checks.Check{slow}, audit)
	eval.deadline = 10 * time.Millisecond

	result, err := eval.Evaluate(context.Background(), &checks.Input{Email: "alice@example.com"}, CallerInfo{})

	require.NoError(t, err)
	require.False(t, result.Checks["domain"].Passed)
	require.Equal(t, "timeout", result.Checks["domain"].Details["error"])
}
