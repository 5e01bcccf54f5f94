// Package checks implements the six independent fraud signal Checks:
// Email, Domain, IP, CreditCard, Phone, and UserAgent. Every Check
// shares the same small contract (Applicable/Perform) so the Evaluator
// can fan them out uniformly and the Scorer can aggregate their results
// by name rather than by type.
package checks

import (
	"context"
)

// Input is the caller-supplied identity bundle a single evaluation
// inspects. Every field is optional except that at least one of
// Email, IP, CreditCard, Phone must be present — the Evaluator enforces
// that invariant before any Check runs.
type Input struct {
	Email      string
	IP         string
	CreditCard string
	Phone      string
	UserAgent  string
	Domain     string
	Country    string
	Timezone   string
	Headers    map[string][]string
	DeviceType string
	Metadata   map[string]string
}

// EmailDomain returns the domain portion of Email, used when Domain is
// not supplied directly.
func (in *Input) EmailDomain() string {
	at := lastIndexByte(in.Email, '@')
	if at < 0 || at == len(in.Email)-1 {
		return ""
	}
	return in.Email[at+1:]
}

// EffectiveDomain returns Domain if set, else the domain derived from
// Email.
func (in *Input) EffectiveDomain() string {
	if in.Domain != "" {
		return in.Domain
	}
	return in.EmailDomain()
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Result is the outcome of a single Check. Score is additive across the
// Check's internal sub-rules and capped at 100 by the Check itself.
// Details carries check-specific structured facts the Scorer's
// cross-signal modifiers and the critical-failure floor read by
// well-known keys ("blacklisted", "velocity", "known_malicious", and so
// on) — see scoring.Scorer for the exact keys consulted.
type Result struct {
	Name    string                 `json:"name"`
	Passed  bool                   `json:"passed"`
	Score   int                    `json:"score"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Check is the shared contract every signal check implements.
type Check interface {
	// Name is the lowercase identifier the Scorer keys its per-check
	// weight table by (e.g. "email", "credit_card").
	Name() string
	// Applicable reports whether this check has enough input to run at
	// all. A check with Applicable==false contributes no sub-score and
	// no weight to the aggregate.
	Applicable(in *Input) bool
	// Perform runs the check's sub-rules and returns its Result. Perform
	// must never panic; any internal failure should be captured in the
	// returned Result by the caller (see Run).
	Perform(ctx context.Context, in *Input) Result
}

// errorResult is what the Evaluator substitutes for a Check that panics
// or whose Perform call returns by cancellation — it must never abort
// the overall evaluation because one check failed.
func errorResult(name string, err error) Result {
	return Result{
		Name:   name,
		Passed: false,
		Score:  50,
		Details: map[string]interface{}{
			"error": err.Error(),
		},
	}
}

// Run executes a single check, converting a panic into the standard
// {passed:false, score:50, error} shape rather than letting it escape
// and take down the whole evaluation's fan-out.
func Run(ctx context.Context, c Check, in *Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(c.Name(), panicError{r})
		}
	}()
	result = c.Perform(ctx, in)
	if result.Name == "" {
		result.Name = c.Name()
	}
	return capScore(result)
}

// capScore enforces the 100-point ceiling and forces passed=false once
// score reaches the 80-point hard-fail threshold, so individual checks
// cannot accidentally violate the shared contract.
func capScore(r Result) Result {
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score >= 80 {
		r.Passed = false
	}
	return r
}

type panicError struct{ v interface{} }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return "panic: unexpected failure in check"
}
