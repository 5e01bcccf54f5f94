package riskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/scoring"
	"fraud-risk-engine/internal/velocity"
	"fraud-risk-engine/internal/vault"
	apperrors "fraud-risk-engine/pkg/errors"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/messaging"
	"fraud-risk-engine/pkg/models"
)

// CallerInfo carries the request-scoped caller identity the audit
// record attaches for traceability: which authenticated user or API key
// triggered the evaluation.
type CallerInfo struct {
	UserID   string
	APIKeyID string
}

// CheckResult mirrors checks.Result in the Evaluate response's public
// shape: keyed by check name so callers don't need to know evaluation
// order.
type CheckResult struct {
	Passed  bool                   `json:"passed"`
	Score   int                    `json:"score"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EvaluationResult is the formatted response spec.md §3 describes for
// the Evaluate entry point.
type EvaluationResult struct {
	ID               string                 `json:"id"`
	RiskScore        int                    `json:"risk_score"`
	Decision         string                 `json:"decision"`
	Checks           map[string]CheckResult `json:"checks"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
}

// auditStore narrows refdata.AuditRepository to the three calls Evaluate
// makes (Open, Complete, and Rollback when Complete fails), the same boundary internal/riskengine's adapter.go draws
// between internal/checks and the rest of the persistence stack — it
// lets Evaluate be tested against a hand-rolled fake instead of a live
// Postgres connection.
type auditStore interface {
	Open(p refdata.OpenParams) error
	Complete(id string, p refdata.CompleteParams) error
	Rollback(id string) error
}

// Evaluator is the Evaluate(input) -> result entry point (C8): it
// validates input, opens an audit record, fans the applicable Checks out
// concurrently, scores and maps a decision, closes the audit record, and
// fires a high-risk notification when warranted.
type Evaluator struct {
	checksList []checks.Check
	scorer     *scoring.Scorer
	thresholds scoring.Thresholds
	hasher     *hasher.Hasher
	vault      *vault.Encryptor
	audit      auditStore
	mq         *messaging.RabbitMQ
	log        *logger.Logger
	deadline   time.Duration
}

// Config configures an Evaluator's dependencies and the set of Checks it
// runs; omitting a Check from Checks is how a per-check feature toggle
// is expressed at the wiring layer.
type Config struct {
	Checks     []checks.Check
	Thresholds scoring.Thresholds
	Hasher     *hasher.Hasher
	Vault      *vault.Encryptor
	Audit      auditStore
	MQ         *messaging.RabbitMQ
	Log        *logger.Logger
	Deadline   time.Duration
}

// NewEvaluator builds an Evaluator from Config, applying the spec
// default 5-second per-evaluation deadline when Deadline is unset.
func NewEvaluator(cfg Config) *Evaluator {
	deadline := cfg.Deadline
	if deadline == 0 {
		deadline = 5000 * time.Millisecond
	}
	return &Evaluator{
		checksList: cfg.Checks,
		scorer:     scoring.NewScorer(),
		thresholds: cfg.Thresholds,
		hasher:     cfg.Hasher,
		vault:      cfg.Vault,
		audit:      cfg.Audit,
		mq:         cfg.MQ,
		log:        cfg.Log,
		deadline:   deadline,
	}
}

// NewReferenceAdapter, NewVelocityAdapter, and NewHasherAdapter construct
// the narrow checks.ReferenceData/Velocity/Hasher views over the
// persistence stack, for use when wiring a Config's Checks slice.
func NewReferenceAdapter(repo *refdata.Repository, cache *refdata.Cache, audit *refdata.AuditRepository) checks.ReferenceData {
	return newReferenceAdapter(repo, cache, audit)
}

func NewVelocityAdapter(counters *velocity.Counters) checks.Velocity {
	return newVelocityAdapter(counters)
}

func NewHasherAdapter(h *hasher.Hasher) checks.Hasher {
	return newHasherAdapter(h)
}

// NewBINClassifier returns the static prepaid/virtual BIN classifier
// credit-card check wiring uses.
func NewBINClassifier() checks.BINClassifier {
	return newStaticBINClassifier()
}

// Evaluate runs the full pipeline spec.md §4.8 describes: validate,
// open audit, fan out Checks, score, decide, close audit, notify.
func (e *Evaluator) Evaluate(ctx context.Context, in *checks.Input, caller CallerInfo) (*EvaluationResult, error) {
	start := time.Now()

	if err := validateInput(in); err != nil {
		return nil, apperrors.ErrInvalidEvaluationInput.WithMessage(err.Error())
	}

	id := uuid.New().String()
	requestID := requestIDFromContext(ctx)

	openParams, err := e.buildOpenParams(id, requestID, caller, in)
	if err != nil {
		e.log.ErrorCtx(ctx, "failed to hash/encrypt evaluation input", err)
		return nil, apperrors.ErrSensitiveDataFailure
	}

	if err := e.audit.Open(openParams); err != nil {
		e.log.ErrorCtx(ctx, "failed to open audit record", err)
		return nil, apperrors.ErrInternalServerError
	}

	results := e.runChecks(ctx, in)

	score := e.scorer.Score(results)
	decision := scoring.Map(score, e.thresholds)

	checksJSON, failedJSON, passedJSON := marshalResults(results)
	processingMs := time.Since(start).Milliseconds()

	if err := e.audit.Complete(id, refdata.CompleteParams{
		Score:            score,
		Decision:         string(decision),
		ChecksRun:        checksJSON,
		FailedChecks:     failedJSON,
		PassedChecks:     passedJSON,
		ProcessingTimeMs: processingMs,
	}); err != nil {
		e.log.ErrorCtx(ctx, "failed to complete audit record", err)
		if rbErr := e.audit.Rollback(id); rbErr != nil {
			e.log.ErrorCtx(ctx, "failed to roll back pending audit record", rbErr)
		}
		return nil, apperrors.ErrInternalServerError
	}

	if score >= e.thresholds.AutoBlock {
		e.emitHighRiskEvent(id, in, caller, results, score, decision)
	}

	return &EvaluationResult{
		ID:               id,
		RiskScore:        score,
		Decision:         string(decision),
		Checks:           toCheckResultMap(results),
		ProcessingTimeMs: processingMs,
	}, nil
}

// validateInput enforces spec.md §3's baseline: at least one identity
// field must be present or there is nothing for any Check to evaluate.
func validateInput(in *checks.Input) error {
	if in == nil {
		return fmt.Errorf("evaluation input is required")
	}
	if in.Email == "" && in.IP == "" && in.CreditCard == "" && in.Phone == "" {
		return fmt.Errorf("at least one of email, ip, credit_card, or phone is required")
	}
	return nil
}

func (e *Evaluator) buildOpenParams(id, requestID string, caller CallerInfo, in *checks.Input) (refdata.OpenParams, error) {
	p := refdata.OpenParams{
		ID:        id,
		RequestID: requestID,
		UserID:    caller.UserID,
		APIKeyID:  caller.APIKeyID,
		UserAgent: in.UserAgent,
		Domain:    in.EffectiveDomain(),
	}

	if headers, err := json.Marshal(selectedHeaders(in.Headers)); err == nil {
		p.Headers = headers
	}

	var err error
	if in.Email != "" {
		p.EmailHash = e.hasher.Hash(in.Email)
		if p.EmailCipher, err = e.vault.Seal(in.Email); err != nil {
			return p, fmt.Errorf("sealing email: %w", err)
		}
	}
	if in.IP != "" {
		p.IPHash = e.hasher.Hash(in.IP)
		if p.IPCipher, err = e.vault.Seal(in.IP); err != nil {
			return p, fmt.Errorf("sealing ip: %w", err)
		}
	}
	if in.CreditCard != "" {
		p.CreditCardHash = e.hasher.Hash(in.CreditCard)
		if p.CreditCardCipher, err = e.vault.Seal(in.CreditCard); err != nil {
			return p, fmt.Errorf("sealing credit card: %w", err)
		}
	}
	if in.Phone != "" {
		p.PhoneHash = e.hasher.Hash(in.Phone)
		if p.PhoneCipher, err = e.vault.Seal(in.Phone); err != nil {
			return p, fmt.Errorf("sealing phone: %w", err)
		}
	}
	return p, nil
}

// selectedHeaders keeps only the small set of headers worth auditing
// (proxy/forwarding headers IPCheck already inspects) rather than
// persisting the full request header set verbatim.
func selectedHeaders(headers map[string][]string) map[string][]string {
	if len(headers) == 0 {
		return nil
	}
	wanted := []string{"X-Forwarded-For", "X-Real-IP", "Via", "Forwarded"}
	out := map[string][]string{}
	for _, w := range wanted {
		if v, ok := headers[w]; ok {
			out[w] = v
		}
	}
	return out
}

// runChecks fans out every applicable Check concurrently, bounded by the
// evaluator's deadline. A Check still running when the deadline expires
// contributes {passed:false, score:50, error:"timeout"}; the overall
// evaluation completes regardless, per spec.md §8's scheduling model.
func (e *Evaluator) runChecks(ctx context.Context, in *checks.Input) []checks.Result {
	deadlineCtx, cancel := context.WithTimeout(ctx, e.deadline)
	defer cancel()

	var applicable []checks.Check
	for _, c := range e.checksList {
		if c.Applicable(in) {
			applicable = append(applicable, c)
		}
	}

	results := make([]checks.Result, len(applicable))
	group, gctx := errgroup.WithContext(deadlineCtx)
	for i, c := range applicable {
		i, c := i, c
		group.Go(func() error {
			done := make(chan checks.Result, 1)
			go func() { done <- checks.Run(gctx, c, in) }()
			select {
			case r := <-done:
				results[i] = r
			case <-gctx.Done():
				results[i] = checks.Result{
					Name:    c.Name(),
					Passed:  false,
					Score:   50,
					Details: map[string]interface{}{"error": "timeout"},
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func marshalResults(results []checks.Result) (all, failed, passed refdata.RawJSON) {
	all, _ = json.Marshal(results)

	var failedResults, passedResults []checks.Result
	for _, r := range results {
		if r.Passed {
			passedResults = append(passedResults, r)
		} else {
			failedResults = append(failedResults, r)
		}
	}
	failed, _ = json.Marshal(failedResults)
	passed, _ = json.Marshal(passedResults)
	return all, failed, passed
}

func toCheckResultMap(results []checks.Result) map[string]CheckResult {
	m := make(map[string]CheckResult, len(results))
	for _, r := range results {
		m[r.Name] = CheckResult{Passed: r.Passed, Score: r.Score, Details: r.Details}
	}
	return m
}

// emitHighRiskEvent fires the risk.detected event fire-and-forget, per
// spec.md §4.8 step 8: a publish failure is logged but never surfaces to
// the caller or rolls back the evaluation that already completed.
func (e *Evaluator) emitHighRiskEvent(evaluationID string, in *checks.Input, caller CallerInfo, results []checks.Result, score int, decision scoring.Decision) {
	var flags []string
	for _, r := range results {
		if !r.Passed {
			flags = append(flags, r.Name)
		}
	}
	event := models.RiskDetectedEvent{
		EvaluationID: evaluationID,
		UserID:       caller.UserID,
		Email:        in.Email,
		RiskScore:    score,
		Decision:     string(decision),
		RiskLevel:    riskLevelFor(score),
		Reason:       fmt.Sprintf("risk score %d triggered %s decision", score, decision),
		Flags:        flags,
		DetectedAt:   time.Now(),
	}
	go func() {
		if e.mq == nil {
			return
		}
		if err := e.mq.Publish(models.EventRiskDetected, event); err != nil {
			e.log.Error("failed to publish risk.detected event", err)
		}
	}()
}

func riskLevelFor(score int) string {
	switch {
	case score >= 80:
		return "critical"
	case score >= 50:
		return "high"
	case score >= 30:
		return "medium"
	default:
		return "low"
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request ID to a context so Evaluate can
// thread it through to the audit record without an explicit parameter.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
