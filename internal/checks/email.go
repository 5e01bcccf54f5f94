package checks

import (
	"context"
	"regexp"
	"strings"
)

var (
	emailSyntaxRe = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	consecutiveSeparatorRe = regexp.MustCompile(`[._-]{2,}`)
	allDigitRe             = regexp.MustCompile(`^[0-9]+$`)
	hexPatternRe           = regexp.MustCompile(`^[a-f0-9]{16,}$`)
	alnumPatternRe         = regexp.MustCompile(`^[a-z0-9]{16,}$`)
)

var roleLocalParts = []string{
	"admin", "support", "info", "contact", "sales", "help", "webmaster",
	"postmaster", "noreply", "no-reply", "donotreply", "abuse", "spam",
	"security", "billing", "legal", "privacy",
}

// EmailCheck inspects a supplied email address for syntax validity,
// blacklist/disposable-domain membership, structural anomalies in the
// local part, DNS deliverability, and historical reputation.
type EmailCheck struct {
	hasher Hasher
	ref    ReferenceData
	collab *Collaborators
}

// NewEmailCheck builds an EmailCheck against the shared hasher,
// reference data source, and DNS collaborator.
func NewEmailCheck(hasher Hasher, ref ReferenceData, collab *Collaborators) *EmailCheck {
	return &EmailCheck{hasher: hasher, ref: ref, collab: collab}
}

func (c *EmailCheck) Name() string { return "email" }

func (c *EmailCheck) Applicable(in *Input) bool { return in.Email != "" }

func (c *EmailCheck) Perform(ctx context.Context, in *Input) Result {
	email := strings.TrimSpace(in.Email)
	details := map[string]interface{}{}

	if !emailSyntaxRe.MatchString(email) {
		details["invalid_syntax"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	at := strings.LastIndexByte(email, '@')
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])
	details["domain"] = domain

	emailHash := c.hasher.Hash(email)
	if weight, found, err := c.ref.IsBlacklistedEmail(ctx, emailHash); err == nil && found {
		details["blacklisted"] = true
		return Result{Passed: false, Score: weightOrDefault(weight, 100), Details: details}
	}

	score := 0

	if weight, found, err := c.ref.DisposableDomain(ctx, domain); err == nil && found {
		details["disposable_domain"] = true
		score += weightOrDefault(weight, 80)
		return capAndReturn(score, details, true)
	}

	if isRoleAddress(local) {
		details["role_address"] = true
		score += 30
	}

	dots := strings.Count(local, ".")
	dashes := strings.Count(local, "-")
	underscores := strings.Count(local, "_")
	totalSeparators := dots + dashes + underscores
	if totalSeparators > 5 {
		score += 15
	} else if totalSeparators > 3 {
		score += 10
	}
	if consecutiveSeparatorRe.MatchString(local) {
		details["consecutive_separators"] = true
		score += 20
	}

	if strings.Contains(local, "+") {
		details["has_tag"] = true
		score += 20
	}

	switch {
	case len(local) < 3:
		score += 20
	case len(local) > 30:
		score += 15
	}
	if allDigitRe.MatchString(local) {
		details["all_digit_local_part"] = true
		score += 30
	}
	if isRandomPattern(local) {
		details["random_pattern"] = true
		score += 25
	}

	if score < 100 {
		if !c.collab.HasMX(ctx, domain) && !c.collab.HasA(ctx, domain) {
			details["no_mx_or_a"] = true
			score += 50
			return capAndReturn(score, details, true)
		}
	}

	if hist, err := c.ref.EvaluationHistory(ctx, emailHash, 6); err == nil {
		if hist.AverageScore > 70 {
			details["reputation_avg_score"] = hist.AverageScore
			score += 20
		}
		if hist.PriorBlockCount > 2 {
			details["reputation_prior_blocks"] = hist.PriorBlockCount
			score += 30
		}
	}

	return capAndReturn(score, details, false)
}

func capAndReturn(score int, details map[string]interface{}, hardFail bool) Result {
	if score > 100 {
		score = 100
	}
	passed := !hardFail && score < 80
	return Result{Passed: passed, Score: score, Details: details}
}

func isRoleAddress(local string) bool {
	for _, role := range roleLocalParts {
		if local == role || strings.HasPrefix(local, role) {
			return true
		}
	}
	return false
}

// isRandomPattern implements spec.md's definition of a machine-generated
// looking local part: after stripping separators, either a high-entropy
// mixed-case-plus-digit string of at least 8 characters, or a long
// lowercase-alnum / hex run that reads like a generated token.
func isRandomPattern(local string) bool {
	cleaned := strings.NewReplacer(".", "", "_", "", "-", "").Replace(local)
	if len(cleaned) >= 8 {
		ratio := entropyRatio(cleaned)
		if ratio > 0.8 && hasLower(cleaned) && hasUpper(cleaned) && hasDigit(cleaned) {
			return true
		}
	}
	lower := strings.ToLower(cleaned)
	if alnumPatternRe.MatchString(lower) || hexPatternRe.MatchString(lower) {
		return true
	}
	return false
}

func entropyRatio(s string) float64 {
	seen := map[rune]bool{}
	for _, r := range s {
		seen[r] = true
	}
	return float64(len(seen)) / float64(len(s))
}

func hasLower(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// weightOrDefault returns weight when it carries a meaningful value,
// else falls back to the spec's literal constant for this sub-rule —
// reference rows created before a weight column was populated, or
// inserted by an admin tool that left it at the zero value, should not
// silently contribute nothing.
func weightOrDefault(weight, fallback int) int {
	if weight > 0 {
		return weight
	}
	return fallback
}
