// Package scoring implements the Weighted Risk Scorer (C6) and Decision
// Mapper (C7): combining the six Checks' sub-scores into a single
// normalized risk score, then mapping that score to an allow/review/
// block decision.
package scoring

import (
	"math"

	"fraud-risk-engine/internal/checks"
)

// checkWeights are the fixed per-check weights the weighted mean uses.
// Only executed checks (those present in the result set) contribute —
// the denominator is the sum of the weights of the checks that actually
// ran, not the full table, so an evaluation missing some input fields
// still produces an unbiased average.
var checkWeights = map[string]float64{
	"email":       0.25,
	"domain":      0.15,
	"ip":          0.25,
	"credit_card": 0.20,
	"phone":       0.10,
	"user_agent":  0.05,
}

// Scorer aggregates Check results into a single [0,100] risk score.
type Scorer struct {
	weights map[string]float64
}

// NewScorer builds a Scorer with the standard per-check weight table.
func NewScorer() *Scorer {
	return &Scorer{weights: checkWeights}
}

// Score computes the final risk score from a set of executed Check
// results, applying the weighted mean, the three modifier stages in
// their fixed order, and the critical-failure floor.
func (s *Scorer) Score(results []checks.Result) int {
	if len(results) == 0 {
		return 0
	}

	mean := s.weightedMean(results)
	modified := s.applyModifiers(mean, results)
	final := s.applyCriticalFloor(modified, results)

	return clamp(int(math.Round(final)), 0, 100)
}

func (s *Scorer) weightedMean(results []checks.Result) float64 {
	var weightedSum, totalWeight float64
	for _, r := range results {
		w, ok := s.weights[r.Name]
		if !ok {
			continue
		}
		weightedSum += float64(r.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// applyModifiers runs the three multiplicative modifier stages in the
// order spec.md lists them: high-score count bump, then stackable
// pattern bumps, then the velocity-concern bump. The stages are not
// commutative under the later clamp, so order matters and is treated
// as normative.
func (s *Scorer) applyModifiers(value float64, results []checks.Result) float64 {
	value *= countBumpMultiplier(results)
	for _, mult := range patternBumpMultipliers(results) {
		value *= mult
	}
	value *= velocityBumpMultiplier(results)
	return value
}

func countBumpMultiplier(results []checks.Result) float64 {
	highScoreCount := 0
	for _, r := range results {
		if r.Score >= 80 {
			highScoreCount++
		}
	}
	switch {
	case highScoreCount >= 3:
		return 1.30
	case highScoreCount >= 2:
		return 1.15
	default:
		return 1.0
	}
}

func patternBumpMultipliers(results []checks.Result) []float64 {
	byName := indexByName(results)
	var mults []float64

	if r, ok := byName["email"]; ok && boolDetail(r, "disposable_domain") {
		if ip, ok := byName["ip"]; ok && (boolDetail(ip, "tor_exit_node") || boolDetail(ip, "asn_vpn_or_proxy")) {
			mults = append(mults, 1.40)
		}
	}

	if domain, ok := byName["domain"]; ok {
		if ageDays, hasAge := domain.Details["age_days"].(int); hasAge && ageDays < 30 {
			if ip, ok := byName["ip"]; ok && ip.Score >= 80 {
				mults = append(mults, 1.25)
			}
		}
	}

	if card, ok := byName["credit_card"]; ok && boolDetail(card, "test_card") {
		if ua, ok := byName["user_agent"]; ok && (boolDetail(ua, "bot_pattern") || boolDetail(ua, "automation_pattern")) {
			mults = append(mults, 1.50)
		}
	}

	mismatches := 0
	if ip, ok := byName["ip"]; ok {
		if boolDetail(ip, "country_mismatch_ip") {
			mismatches++
		}
		if boolDetail(ip, "timezone_mismatch_ip") {
			mismatches++
		}
	}
	if phone, ok := byName["phone"]; ok && boolDetail(phone, "country_mismatch") {
		mismatches++
	}
	if mismatches >= 2 {
		mults = append(mults, 1.30)
	}

	return mults
}

func velocityBumpMultiplier(results []checks.Result) float64 {
	concernCount := 0
	for _, r := range results {
		velocity, ok := r.Details["velocity"].(map[string]interface{})
		if !ok {
			continue
		}
		riskScore, ok := velocity["risk_score"].(int)
		if ok && riskScore > 20 {
			concernCount++
		}
	}
	if concernCount >= 2 {
		return 1.20
	}
	return 1.0
}

// applyCriticalFloor forces the final score to at least 90 when any
// check reports a blacklist hit, the credit-card check scored a full
// 100, or the user-agent check flagged known_malicious — signals strong
// enough that no amount of weighted averaging should let the decision
// fall below block.
func (s *Scorer) applyCriticalFloor(value float64, results []checks.Result) float64 {
	floor := false
	for _, r := range results {
		if boolDetail(r, "blacklisted") {
			floor = true
		}
		if r.Name == "credit_card" && r.Score == 100 {
			floor = true
		}
		if r.Name == "user_agent" && boolDetail(r, "known_malicious") {
			floor = true
		}
	}
	if floor && value < 90 {
		return 90
	}
	return value
}

func indexByName(results []checks.Result) map[string]checks.Result {
	m := make(map[string]checks.Result, len(results))
	for _, r := range results {
		m[r.Name] = r
	}
	return m
}

func boolDetail(r checks.Result, key string) bool {
	v, ok := r.Details[key].(bool)
	return ok && v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
