package checks

import (
	"context"
	"net/netip"
	"strings"
	"time"

	"fraud-risk-engine/internal/ipcidr"
)

var proxyHeaderNames = []string{
	"X-Forwarded-For", "X-Real-IP", "X-Originating-IP", "X-Forwarded",
	"X-Cluster-Client-IP", "Forwarded-For", "Forwarded", "Via",
	"True-Client-IP", "CF-Connecting-IP",
}

// IPCheck inspects a caller IP for validity, blacklist/Tor/reserved-range
// membership, ASN classification, geolocation consistency with the
// declared country/timezone, request velocity, and proxy-header
// tampering.
type IPCheck struct {
	hasher   Hasher
	ref      ReferenceData
	collab   *Collaborators
	velocity Velocity
}

// NewIPCheck builds an IPCheck against the shared hasher, reference
// data source, geolocation/ASN collaborators, and velocity counters.
func NewIPCheck(hasher Hasher, ref ReferenceData, collab *Collaborators, velocity Velocity) *IPCheck {
	return &IPCheck{hasher: hasher, ref: ref, collab: collab, velocity: velocity}
}

func (c *IPCheck) Name() string { return "ip" }

func (c *IPCheck) Applicable(in *Input) bool { return in.IP != "" }

func (c *IPCheck) Perform(ctx context.Context, in *Input) Result {
	raw := strings.TrimSpace(in.IP)
	details := map[string]interface{}{}

	addr, _, err := ipcidr.Parse(raw)
	if err != nil {
		details["invalid"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	ipHash := c.hasher.Hash(raw)
	score := 0

	if weight, found, lookupErr := c.ref.IsBlacklistedIP(ctx, ipHash); lookupErr == nil && found {
		details["blacklisted"] = true
		score += weightOrDefault(weight, 100)
	}

	if ipcidr.IsReserved(addr) {
		details["reserved"] = true
		return Result{Passed: false, Score: 100, Details: details}
	}

	if weight, found, torErr := c.ref.TorExitNode(ctx, raw); torErr == nil && found {
		details["tor_exit_node"] = true
		score += weightOrDefault(weight, 90)
	}

	if asn, found := c.resolveASN(ctx, raw, addr); found {
		details["asn"] = asn.Number
		score += asn.RiskWeight
		if asn.Type == "datacenter" {
			details["asn_datacenter"] = true
			score += 30
		}
		if asn.IsVPN || asn.IsProxy {
			details["asn_vpn_or_proxy"] = true
			score += 40
		}
	}

	if country, timezone, ok := c.collab.Geolocate(ctx, raw); ok {
		if in.Country != "" && country != "" && !strings.EqualFold(country, in.Country) {
			details["country_mismatch_ip"] = true
			score += 30
		}
		if in.Timezone != "" && timezone != "" && timezoneOffsetDiffHours(in.Timezone, timezone) > 3 {
			details["timezone_mismatch_ip"] = true
			score += 20
		}
	}

	if count, err := c.velocity.Bump(ctx, "ip", ipHash, "hour"); err == nil {
		velocityScore := 0
		switch {
		case count > 100:
			velocityScore = 30
		case count > 50:
			velocityScore = 20
		case count > 10:
			velocityScore = 10
		}
		if velocityScore > 0 {
			details["velocity"] = map[string]interface{}{"count": count, "risk_score": velocityScore}
			score += velocityScore
		}
	}

	if foundHeader, mismatched := inspectProxyHeaders(in.Headers, raw); foundHeader {
		details["proxy_headers_present"] = true
		score += 10
		if mismatched {
			details["proxy_header_ip_mismatch"] = true
			score += 20
		}
	}

	return capAndReturn(score, details, false)
}

func (c *IPCheck) resolveASN(ctx context.Context, raw string, addr netip.Addr) (ASNInfo, bool) {
	if ranges, err := c.ref.ASNRanges(ctx); err == nil {
		for _, r := range ranges {
			if ok, rangeErr := ipcidr.InRange(addr, r.CIDR); rangeErr == nil && ok {
				if asn, found, lookupErr := c.ref.ASNByNumber(ctx, r.ASNNumber); lookupErr == nil && found {
					return asn, true
				}
			}
		}
	}
	if number, ok := c.collab.LookupASNByIP(ctx, raw); ok {
		if asn, found, lookupErr := c.ref.ASNByNumber(ctx, number); lookupErr == nil && found {
			return asn, true
		}
		return ASNInfo{Number: number}, true
	}
	return ASNInfo{}, false
}

func inspectProxyHeaders(headers map[string][]string, reportedIP string) (present bool, mismatch bool) {
	if len(headers) == 0 {
		return false, false
	}
	normalized := make(map[string][]string, len(headers))
	for k, v := range headers {
		normalized[strings.ToLower(k)] = v
	}
	for _, name := range proxyHeaderNames {
		values, ok := normalized[strings.ToLower(name)]
		if !ok || len(values) == 0 {
			continue
		}
		present = true
		for _, v := range values {
			for _, candidate := range strings.Split(v, ",") {
				candidate = strings.TrimSpace(candidate)
				if candidate == "" {
					continue
				}
				if candAddr, _, err := ipcidr.Parse(candidate); err == nil {
					if candAddr.String() != reportedIP {
						mismatch = true
					}
				}
			}
		}
	}
	return present, mismatch
}

// timezoneOffsetDiffHours compares two IANA zone names by their current
// UTC offset, returning the absolute difference in hours. Unparseable
// zones are treated as consistent (diff 0) rather than triggering a
// false-positive mismatch.
func timezoneOffsetDiffHours(declared, observed string) int {
	declaredOffset, err1 := zoneOffsetHours(declared)
	observedOffset, err2 := zoneOffsetHours(observed)
	if err1 != nil || err2 != nil {
		return 0
	}
	diff := declaredOffset - observedOffset
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func zoneOffsetHours(name string) (int, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return 0, err
	}
	_, offsetSeconds := time.Now().In(loc).Zone()
	return offsetSeconds / 3600, nil
}
