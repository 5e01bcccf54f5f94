package checks

import (
	"context"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	phoneAnomalyCharRe = regexp.MustCompile(`[^0-9+\-\s().]`)
	sequentialRuns      = []string{"0123456789", "9876543210"}
)

// parsedNumber is the result of normalizing a caller-supplied phone
// number against an optional default region, using a library-quality
// E.164 parser rather than hand-rolled calling-code tables (spec.md
// §4.5.5).
type parsedNumber struct {
	e164   string
	region string
	raw    *phonenumbers.PhoneNumber
}

// parsePhone normalizes raw into E.164 form using defaultRegion as the
// fallback country when raw has no leading '+'. It reports ok=false for
// anything phonenumbers cannot parse as a plausible, valid number.
func parsePhone(raw, defaultRegion string) (parsedNumber, bool) {
	trimmed := strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(trimmed, strings.ToUpper(defaultRegion))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return parsedNumber{}, false
	}
	return parsedNumber{
		e164:   phonenumbers.Format(num, phonenumbers.E164),
		region: phonenumbers.GetRegionCodeForNumber(num),
		raw:    num,
	}, true
}

// classifyNumberType maps phonenumbers' line-type classification onto
// spec.md §4.5.5's vocabulary. FIXED_LINE_OR_MOBILE covers regions
// (the NANP chief among them) where the numbering plan itself cannot
// distinguish a landline from a cell number; mobile is the more
// conservative assumption for risk scoring since mobile carries no
// sub-score penalty while fixed-line does.
func classifyNumberType(p parsedNumber) string {
	switch phonenumbers.GetNumberType(p.raw) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return "mobile"
	case phonenumbers.FIXED_LINE:
		return "fixed_line"
	case phonenumbers.TOLL_FREE:
		return "toll_free"
	case phonenumbers.PREMIUM_RATE:
		return "premium_rate"
	case phonenumbers.SHARED_COST:
		return "shared_cost"
	case phonenumbers.VOIP:
		return "voip"
	default:
		return "unknown"
	}
}

func numberTypeScore(numberType string) int {
	switch numberType {
	case "voip":
		return 40
	case "toll_free":
		return 50
	case "premium_rate":
		return 60
	case "shared_cost":
		return 30
	case "fixed_line":
		return 10
	case "mobile":
		return 0
	default:
		return 20
	}
}

// PhoneCheck inspects a phone number for E.164 parseability, number
// type, blacklist membership, country consistency, format anomalies,
// velocity, and disposable-prefix membership.
type PhoneCheck struct {
	hasher             Hasher
	ref                ReferenceData
	velocity           Velocity
	disposablePrefixes []string
}

// NewPhoneCheck builds a PhoneCheck against the shared hasher, reference
// data source, velocity counters, and a configured set of disposable
// number prefixes (e.g. known VOIP-trunk blocks an operator has flagged).
func NewPhoneCheck(hasher Hasher, ref ReferenceData, velocity Velocity, disposablePrefixes []string) *PhoneCheck {
	return &PhoneCheck{hasher: hasher, ref: ref, velocity: velocity, disposablePrefixes: disposablePrefixes}
}

func (c *PhoneCheck) Name() string { return "phone" }

func (c *PhoneCheck) Applicable(in *Input) bool { return in.Phone != "" }

func (c *PhoneCheck) Perform(ctx context.Context, in *Input) Result {
	raw := strings.TrimSpace(in.Phone)
	details := map[string]interface{}{}

	parsed, ok := parsePhone(raw, in.Country)
	if !ok {
		details["invalid"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	phoneHash := c.hasher.Hash(parsed.e164)
	score := 0

	if weight, found, lookupErr := c.ref.IsBlacklistedPhone(ctx, phoneHash); lookupErr == nil && found {
		details["blacklisted"] = true
		score += weightOrDefault(weight, 100)
	}

	numberType := classifyNumberType(parsed)
	details["number_type"] = numberType
	score += numberTypeScore(numberType)

	if in.Country != "" && parsed.region != "" && !strings.EqualFold(parsed.region, in.Country) {
		details["country_mismatch"] = true
		score += 30
	}

	if hasFormatAnomalies(raw, parsed.e164) {
		details["format_anomaly"] = true
		score += 15
	}

	if hourCount, velErr := c.velocity.Bump(ctx, "phone", phoneHash, "hour"); velErr == nil {
		velocityScore := 0
		switch {
		case hourCount > 5:
			velocityScore = 25
		case hourCount > 2:
			velocityScore = 15
		}
		if dayCount, dayErr := c.velocity.Bump(ctx, "phone", phoneHash, "day"); dayErr == nil && dayCount > 10 {
			velocityScore += 20
		}
		if velocityScore > 0 {
			details["velocity"] = map[string]interface{}{"hour_count": hourCount, "risk_score": velocityScore}
			score += velocityScore
		}
	}

	for _, prefix := range c.disposablePrefixes {
		if prefix != "" && strings.HasPrefix(parsed.e164, prefix) {
			details["disposable_prefix"] = true
			score += 50
			break
		}
	}

	return capAndReturn(score, details, false)
}

func hasFormatAnomalies(raw, e164 string) bool {
	if len(phoneAnomalyCharRe.FindAllString(raw, -1)) > 2 {
		return true
	}
	if hasRepeatedRun(e164, 7) {
		return true
	}
	digits := stripNonDigits(e164)
	for _, run := range sequentialRuns {
		if strings.Contains(digits, run[:8]) {
			return true
		}
	}
	return false
}
