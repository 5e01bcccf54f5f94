package checks

import (
	"context"
	"regexp"
	"strings"
)

var (
	hostnameLabelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	hostnameTLDRe   = regexp.MustCompile(`^[a-z]{2,}$`)
)

// DomainCheck inspects a referring domain (supplied directly, or derived
// from the email's domain part) for hostname validity, DNS health,
// domain age, parked-page hosting, and historical reputation.
type DomainCheck struct {
	hasher Hasher
	ref    ReferenceData
	collab *Collaborators
}

// NewDomainCheck builds a DomainCheck against the shared hasher,
// reference data source, and HTTP/DNS collaborators.
func NewDomainCheck(hasher Hasher, ref ReferenceData, collab *Collaborators) *DomainCheck {
	return &DomainCheck{hasher: hasher, ref: ref, collab: collab}
}

func (c *DomainCheck) Name() string { return "domain" }

func (c *DomainCheck) Applicable(in *Input) bool {
	return in.EffectiveDomain() != ""
}

func (c *DomainCheck) Perform(ctx context.Context, in *Input) Result {
	domain := strings.ToLower(strings.TrimSpace(in.EffectiveDomain()))
	details := map[string]interface{}{"domain": domain}

	if !isValidHostname(domain) {
		details["invalid_hostname"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	score := 0

	if !c.collab.HasMX(ctx, domain) {
		details["no_mx"] = true
		score += 50
	}

	if ageDays, ok := c.collab.DomainAgeDays(ctx, domain); ok {
		details["age_days"] = ageDays
		switch {
		case ageDays < 30:
			score += 40
		case ageDays < 180:
			score += 20
		}
	}

	if c.collab.IsParkedPage(ctx, domain) {
		details["parked"] = true
		score += 60
	}

	if !c.collab.HasA(ctx, domain) {
		details["no_a_or_aaaa"] = true
		score += 20
	}
	if !c.collab.HasSPF(ctx, domain) {
		details["no_spf"] = true
		score += 10
	}

	domainHash := c.hasher.Hash(domain)
	if hist, err := c.ref.EvaluationHistory(ctx, domainHash, 6); err == nil {
		if hist.AverageScore > 70 {
			details["reputation_avg_score"] = hist.AverageScore
			score += 30
		}
		if hist.PriorBlockCount > 5 {
			details["reputation_prior_blocks"] = hist.PriorBlockCount
			score += 40
		}
	}

	hardFail := details["no_mx"] == true || details["parked"] == true
	return capAndReturn(score, details, hardFail)
}

func isValidHostname(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels[:len(labels)-1] {
		if !hostnameLabelRe.MatchString(label) {
			return false
		}
	}
	return hostnameTLDRe.MatchString(labels[len(labels)-1])
}
