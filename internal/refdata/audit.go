package refdata

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AuditStatus is the lifecycle stage of an evaluation's audit record.
type AuditStatus string

const (
	AuditPending   AuditStatus = "pending"
	AuditCompleted AuditStatus = "completed"
	AuditFailed    AuditStatus = "failed"
)

// AuditRecord is the durable trail of a single risk evaluation: opened in
// the pending state before any Check runs, then closed out with the
// final score, decision, and per-check detail once the evaluator
// finishes. The pending row exists so a crash mid-evaluation still
// leaves a trace instead of silently vanishing. Keyed hashes support
// cross-record correlation (e.g. "how many times has this email been
// seen"); ciphertexts support operator disclosure of the original value
// when an investigation needs it — the two paths are intentionally
// separate so correlation never requires decrypting anything.
type AuditRecord struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	RequestID string      `json:"request_id" gorm:"type:varchar(64);index"`
	Status    AuditStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`

	// Caller identity
	UserID  string `json:"user_id" gorm:"type:varchar(64);index"`
	APIKeyID string `json:"api_key_id" gorm:"type:varchar(64);index"`

	// Keyed hashes, for correlation without decryption
	InputEmailHash      string `json:"-" gorm:"type:varchar(64);index"`
	InputIPHash         string `json:"-" gorm:"type:varchar(64);index"`
	InputCreditCardHash string `json:"-" gorm:"type:varchar(64);index"`
	InputPhoneHash      string `json:"-" gorm:"type:varchar(64);index"`

	// Reversible ciphertexts, for operator disclosure
	InputEmailCipher      string `json:"-" gorm:"type:text"`
	InputIPCipher         string `json:"-" gorm:"type:text"`
	InputCreditCardCipher string `json:"-" gorm:"type:text"`
	InputPhoneCipher      string `json:"-" gorm:"type:text"`

	UserAgent string  `json:"user_agent" gorm:"type:text"`
	Domain    string  `json:"domain" gorm:"type:varchar(255)"`
	Headers   RawJSON `json:"headers" gorm:"type:jsonb"`

	Score            int     `json:"risk_score" gorm:"default:0"`
	Decision         string  `json:"decision" gorm:"type:varchar(20)"`
	ChecksRun        RawJSON `json:"check_results" gorm:"type:jsonb"`
	FailedChecks     RawJSON `json:"failed_checks" gorm:"type:jsonb"`
	PassedChecks     RawJSON `json:"passed_checks" gorm:"type:jsonb"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Error            string  `json:"error" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specifies the database table name for AuditRecord entities.
func (AuditRecord) TableName() string { return "audit_records" }

// OpenParams carries the fields known before any Check has run: caller
// identity, per-field hashes and ciphertexts, and the request context
// worth keeping for later investigation.
type OpenParams struct {
	ID        string
	RequestID string
	UserID    string
	APIKeyID  string

	EmailHash, IPHash, CreditCardHash, PhoneHash                   string
	EmailCipher, IPCipher, CreditCardCipher, PhoneCipher string

	UserAgent string
	Domain    string
	Headers   RawJSON
}

// AuditRepository persists the pending -> completed/failed lifecycle of
// evaluation audit trails.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository wraps an existing database connection.
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Open inserts a pending audit record ahead of running any Check, so the
// evaluation is recorded even if the process dies before it completes.
func (r *AuditRepository) Open(p OpenParams) error {
	rec := AuditRecord{
		ID:                    p.ID,
		RequestID:             p.RequestID,
		Status:                AuditPending,
		UserID:                p.UserID,
		APIKeyID:              p.APIKeyID,
		InputEmailHash:        p.EmailHash,
		InputIPHash:           p.IPHash,
		InputCreditCardHash:   p.CreditCardHash,
		InputPhoneHash:        p.PhoneHash,
		InputEmailCipher:      p.EmailCipher,
		InputIPCipher:         p.IPCipher,
		InputCreditCardCipher: p.CreditCardCipher,
		InputPhoneCipher:      p.PhoneCipher,
		UserAgent:             p.UserAgent,
		Domain:                p.Domain,
		Headers:               p.Headers,
	}
	result := r.db.Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("refdata: opening audit record: %w", result.Error)
	}
	return nil
}

// CompleteParams carries the fields written exactly once, at the end of
// a successful evaluation.
type CompleteParams struct {
	Score            int
	Decision         string
	ChecksRun        RawJSON
	FailedChecks     RawJSON
	PassedChecks     RawJSON
	ProcessingTimeMs int64
}

// Complete closes out a pending record with the final score, decision,
// and the raw per-check result payload.
func (r *AuditRepository) Complete(id string, p CompleteParams) error {
	now := time.Now()
	result := r.db.Model(&AuditRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             AuditCompleted,
		"score":              p.Score,
		"decision":           p.Decision,
		"checks_run":         p.ChecksRun,
		"failed_checks":      p.FailedChecks,
		"passed_checks":      p.PassedChecks,
		"processing_time_ms": p.ProcessingTimeMs,
		"completed_at":       now,
	})
	if result.Error != nil {
		return fmt.Errorf("refdata: completing audit record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("refdata: audit record not found: %s", id)
	}
	return nil
}

// Rollback deletes a still-pending audit record. It is the compensating
// action the evaluator takes when Complete fails after Open already
// committed: Open and Complete are not one held-open transaction (a
// transaction spanning the concurrent Check fan-out would pin a
// connection for up to the evaluation deadline), so Rollback is what
// keeps spec.md §8's "an audit record is written iff the evaluation
// completes" invariant true in that failure path. The status guard
// avoids deleting a record a concurrent Complete call already closed
// out.
func (r *AuditRepository) Rollback(id string) error {
	result := r.db.Where("id = ? AND status = ?", id, AuditPending).Delete(&AuditRecord{})
	if result.Error != nil {
		return fmt.Errorf("refdata: rolling back pending audit record: %w", result.Error)
	}
	return nil
}

// Fail closes out a pending record with an error, used when the
// evaluator cannot produce a decision at all (as opposed to an
// individual Check failing, which is captured inline in checks_run).
func (r *AuditRepository) Fail(id string, cause error) error {
	now := time.Now()
	result := r.db.Model(&AuditRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       AuditFailed,
		"error":        cause.Error(),
		"completed_at": now,
	})
	if result.Error != nil {
		return fmt.Errorf("refdata: failing audit record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("refdata: audit record not found: %s", id)
	}
	return nil
}

// Get retrieves a single audit record by ID.
func (r *AuditRepository) Get(id string) (*AuditRecord, error) {
	var rec AuditRecord
	result := r.db.Where("id = ?", id).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: getting audit record: %w", result.Error)
	}
	return &rec, nil
}

// RecentByEmailHash lists the most recent completed evaluations for a
// hashed email, newest first, for velocity/history review in the admin
// surface.
func (r *AuditRepository) RecentByEmailHash(emailHash string, limit int) ([]AuditRecord, error) {
	var recs []AuditRecord
	result := r.db.Where("input_email_hash = ? AND status = ?", emailHash, AuditCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs)
	if result.Error != nil {
		return nil, fmt.Errorf("refdata: listing audit records by email hash: %w", result.Error)
	}
	return recs, nil
}

// PruneOlderThan deletes completed/failed audit records older than the
// retention cutoff, mirroring the reference-table soft-retention pattern
// (spec.md's default retention is 365 days for audit records).
func (r *AuditRepository) PruneOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("status IN ? AND created_at < ?", []AuditStatus{AuditCompleted, AuditFailed}, cutoff).
		Delete(&AuditRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("refdata: pruning audit records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// EvaluationHistorySummary aggregates audit history for a hashed subject
// over a trailing window, feeding the Checks' reputation sub-rules.
func (r *AuditRepository) EvaluationHistorySummary(emailHash string, since time.Time) (avgScore float64, blockCount int, evaluationCount int, err error) {
	var rows []AuditRecord
	result := r.db.Where("input_email_hash = ? AND status = ? AND created_at >= ?", emailHash, AuditCompleted, since).
		Find(&rows)
	if result.Error != nil {
		return 0, 0, 0, fmt.Errorf("refdata: summarizing evaluation history: %w", result.Error)
	}
	if len(rows) == 0 {
		return 0, 0, 0, nil
	}
	var total int
	for _, rec := range rows {
		total += rec.Score
		if rec.Decision == "block" {
			blockCount++
		}
	}
	return float64(total) / float64(len(rows)), blockCount, len(rows), nil
}
