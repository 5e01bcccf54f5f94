package checks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

var botPatterns = []string{
	"bot", "crawler", "spider", "scraper", "slurp", "archiver",
}

var automationPatterns = []string{
	"headless", "phantomjs", "selenium", "puppeteer", "playwright", "cypress",
}

var maliciousUAPatterns = []string{
	"sqlmap", "nikto", "nmap", "masscan", "hydra", "metasploit", "burpsuite",
}

var programmingLanguagePatterns = []string{
	"python-requests", "curl/", "wget/", "go-http-client", "java/", "libwww-perl", "okhttp",
}

var suspiciousCharsRe = regexp.MustCompile(`[^a-zA-Z0-9\s()\[\]/.,;:_\-+]`)
var suspiciousWords = []string{"hack", "exploit", "inject", "bypass", "penetration"}

type browserVersion struct {
	name  string
	major int
}

var browserVersionRe = regexp.MustCompile(`(Chrome|Firefox|Safari|MSIE|Edge|Trident)[/\s](\d+)`)

// outdatedBrowserBumps maps a browser/major-version pair to its
// additional risk contribution for known end-of-life releases.
var outdatedBrowserBumps = map[string]int{
	"MSIE:6": 90, "MSIE:7": 80, "MSIE:8": 70, "MSIE:9": 60,
	"Firefox:30": 30, "Chrome:40": 30, "Safari:6": 30,
}

// UserAgentCheck inspects a client user-agent string for length, known
// classification, bot/automation/malicious/programming-language
// substrings, outdated-browser versions, structural suspiciousness, and
// request frequency.
type UserAgentCheck struct {
	ref      ReferenceData
	velocity Velocity
}

// NewUserAgentCheck builds a UserAgentCheck against the shared
// reference data source and velocity counters.
func NewUserAgentCheck(ref ReferenceData, velocity Velocity) *UserAgentCheck {
	return &UserAgentCheck{ref: ref, velocity: velocity}
}

func (c *UserAgentCheck) Name() string { return "user_agent" }

func (c *UserAgentCheck) Applicable(in *Input) bool { return in.UserAgent != "" }

func (c *UserAgentCheck) Perform(ctx context.Context, in *Input) Result {
	ua := in.UserAgent
	details := map[string]interface{}{}

	if len(ua) < 10 {
		details["too_short"] = true
		return Result{Passed: false, Score: 50, Details: details}
	}

	uaHash := sha256Hex(ua)
	score := 0

	if known, found, err := c.ref.KnownUserAgent(ctx, uaHash); err == nil && found {
		details["known"] = true
		details["known_type"] = known.Type
		score += known.RiskWeight
		if known.KnownMalicious {
			details["known_malicious"] = true
		}
	}

	lowered := strings.ToLower(ua)
	if containsAny(lowered, botPatterns) {
		details["bot_pattern"] = true
		score += 40
	}
	if containsAny(lowered, automationPatterns) {
		details["automation_pattern"] = true
		score += 50
	}
	if containsAny(lowered, maliciousUAPatterns) {
		details["malicious_pattern"] = true
		score += 80
	}
	if containsAny(lowered, programmingLanguagePatterns) {
		details["programming_language_pattern"] = true
		score += 30
	}

	if bv, ok := parseBrowserVersion(ua); ok {
		details["browser"] = bv.name
		details["browser_version"] = bv.major
		key := bv.name + ":" + strconv.Itoa(bv.major)
		if bump, outdated := outdatedBrowserBumps[key]; outdated {
			details["outdated_browser"] = true
			score += bump
		}
	}

	switch {
	case len(ua) < 20:
		score += 30
	case len(ua) > 500:
		score += 20
	}
	if !(strings.Contains(lowered, "mozilla") || strings.Contains(lowered, "webkit") || strings.Contains(lowered, "gecko")) {
		details["missing_engine_token"] = true
		score += 25
	}
	if containsAny(lowered, suspiciousWords) {
		details["suspicious_keyword"] = true
		score += 60
	}
	if hasRepeatedRun(ua, 11) {
		details["repeated_run"] = true
		score += 40
	}
	if suspiciousCharsRe.MatchString(ua) {
		details["suspicious_chars"] = true
		score += 50
	}

	uaHashIndex := uaHash[:16]
	if dayCount, err := c.velocity.Bump(ctx, "user_agent", uaHashIndex, "day"); err == nil {
		switch {
		case dayCount > 1000:
			details["velocity"] = map[string]interface{}{"day_count": dayCount, "risk_score": 20}
			score += 20
		case dayCount > 100:
			details["velocity"] = map[string]interface{}{"day_count": dayCount, "risk_score": 10}
			score += 10
		}
	}

	return capAndReturn(score, details, false)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func parseBrowserVersion(ua string) (browserVersion, bool) {
	m := browserVersionRe.FindStringSubmatch(ua)
	if m == nil {
		return browserVersion{}, false
	}
	name := m[1]
	if name == "Trident" {
		name = "MSIE"
	}
	major, err := strconv.Atoi(m[2])
	if err != nil {
		return browserVersion{}, false
	}
	return browserVersion{name: name, major: major}, true
}

// hasRepeatedRun reports whether s contains one character repeated at
// least minRun times in a row.
func hasRepeatedRun(s string, minRun int) bool {
	run, prev := 0, rune(-1)
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= minRun {
			return true
		}
	}
	return false
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
