package checks

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var cardDigitsOnlyRe = regexp.MustCompile(`^[0-9]{13,19}$`)

// brandPattern is a standard IIN (issuer identification number) regex
// for one card brand.
type brandPattern struct {
	name string
	re   *regexp.Regexp
}

var brandPatterns = []brandPattern{
	{"visa", regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?(?:[0-9]{3})?$`)},
	{"mastercard", regexp.MustCompile(`^(5[1-5][0-9]{14}|2(2[2-9][0-9]{12}|[3-6][0-9]{13}|7[01][0-9]{12}|720[0-9]{12}))$`)},
	{"amex", regexp.MustCompile(`^3[47][0-9]{13}$`)},
	{"discover", regexp.MustCompile(`^6(?:011|5[0-9]{2})[0-9]{12}$`)},
	{"diners", regexp.MustCompile(`^3(?:0[0-5]|[68][0-9])[0-9]{11}$`)},
	{"jcb", regexp.MustCompile(`^(?:2131|1800|35\d{3})\d{11}$`)},
	{"maestro", regexp.MustCompile(`^(5[06-8]|6\d)\d{10,17}$`)},
}

// knownTestCards is the enumerated set of publicly documented
// payment-processor test card numbers. A real transaction never
// legitimately uses one of these.
var knownTestCards = map[string]bool{
	"4111111111111111": true,
	"4242424242424242": true,
	"4012888888881881": true,
	"5555555555554444": true,
	"5105105105105100": true,
	"378282246310005":  true,
	"371449635398431":  true,
	"6011111111111117": true,
	"6011000990139424": true,
	"30569309025904":   true,
	"38520000023237":   true,
	"3530111333300000": true,
}

// CreditCardCheck inspects a PAN for structural validity (Luhn, length,
// brand), blacklist/test-card membership, BIN classification, and
// velocity.
type CreditCardCheck struct {
	hasher   Hasher
	ref      ReferenceData
	velocity Velocity
	binLookup BINClassifier
}

// BINClassifier classifies a 6-digit bank identification number prefix.
// Implementations may consult a reference table or a static curated
// list; CreditCardCheck treats "not found" the same as "standard".
type BINClassifier interface {
	ClassifyBIN(ctx context.Context, bin string) (prepaid, virtual bool, found bool)
}

// NewCreditCardCheck builds a CreditCardCheck against the shared hasher,
// reference data source, velocity counters, and BIN classifier.
func NewCreditCardCheck(hasher Hasher, ref ReferenceData, velocity Velocity, bins BINClassifier) *CreditCardCheck {
	return &CreditCardCheck{hasher: hasher, ref: ref, velocity: velocity, binLookup: bins}
}

func (c *CreditCardCheck) Name() string { return "credit_card" }

func (c *CreditCardCheck) Applicable(in *Input) bool { return in.CreditCard != "" }

func (c *CreditCardCheck) Perform(ctx context.Context, in *Input) Result {
	digits := stripNonDigits(in.CreditCard)
	details := map[string]interface{}{}

	if !cardDigitsOnlyRe.MatchString(digits) {
		details["invalid_format"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	if !luhnValid(digits) {
		details["luhn_failed"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	score := 0
	brand := classifyBrand(digits)
	details["brand"] = brand
	if brand == "unknown" {
		score += 30
	}

	cardHash := c.hasher.Hash(digits)
	if weight, found, err := c.ref.IsBlacklistedCard(ctx, cardHash); err == nil && found {
		details["blacklisted"] = true
		score += weightOrDefault(weight, 100)
	}

	if knownTestCards[digits] {
		details["test_card"] = true
		score += 80
		return capAndReturn(score, details, true)
	}

	if c.binLookup != nil {
		bin := digits[:6]
		if prepaid, virtual, found := c.binLookup.ClassifyBIN(ctx, bin); found {
			if prepaid {
				details["bin_prepaid"] = true
				score += 30
			}
			if virtual {
				details["bin_virtual"] = true
				score += 20
			}
		}
	}

	if hourCount, err := c.velocity.Bump(ctx, "card", cardHash, "hour"); err == nil {
		velocityScore := 0
		switch {
		case hourCount > 10:
			velocityScore = 30
		case hourCount > 3:
			velocityScore = 20
		}
		if dayCount, dayErr := c.velocity.Bump(ctx, "card", cardHash, "day"); dayErr == nil && dayCount > 20 {
			velocityScore += 25
		}
		if velocityScore > 0 {
			details["velocity"] = map[string]interface{}{"hour_count": hourCount, "risk_score": velocityScore}
			score += velocityScore
		}
	}

	return capAndReturn(score, details, false)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func classifyBrand(digits string) string {
	for _, bp := range brandPatterns {
		if bp.re.MatchString(digits) {
			return bp.name
		}
	}
	return "unknown"
}

// luhnValid implements the standard Luhn mod-10 checksum.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d, err := strconv.Atoi(string(digits[i]))
		if err != nil {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
