// Package riskengine wires the independent internal/checks, internal/scoring,
// internal/refdata, internal/velocity, and internal/hasher packages into the
// Evaluator (C8): the single Evaluate(input) -> result entry point spec.md
// §1 describes. The adapter types in this file narrow refdata's storage-
// shaped API down to the small interfaces internal/checks depends on, so
// checks itself never imports the persistence stack it runs against.
package riskengine

import (
	"context"
	"strconv"
	"time"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/velocity"
)

// referenceAdapter implements checks.ReferenceData over a refdata
// Repository fronted by a Cache, plus the audit trail for reputation
// history. Every lookup goes cache-aside: a hit never touches Postgres, a
// miss loads from the Repository and populates the cache (including
// negative results, per refdata.Lookup's cacheMiss sentinel).
type referenceAdapter struct {
	repo  *refdata.Repository
	cache *refdata.Cache
	audit *refdata.AuditRepository
}

func newReferenceAdapter(repo *refdata.Repository, cache *refdata.Cache, audit *refdata.AuditRepository) *referenceAdapter {
	return &referenceAdapter{repo: repo, cache: cache, audit: audit}
}

func (a *referenceAdapter) IsBlacklistedEmail(ctx context.Context, emailHash string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindBlacklist, "email:"+emailHash, func() (*refdata.BlacklistedEmail, error) {
		return a.repo.LookupBlacklistedEmail(emailHash)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.EffectiveWeight(), true, nil
}

func (a *referenceAdapter) IsBlacklistedIP(ctx context.Context, ipHash string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindBlacklist, "ip:"+ipHash, func() (*refdata.BlacklistedIP, error) {
		return a.repo.LookupBlacklistedIP(ipHash)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.EffectiveWeight(), true, nil
}

func (a *referenceAdapter) IsBlacklistedCard(ctx context.Context, cardHash string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindBlacklist, "card:"+cardHash, func() (*refdata.BlacklistedCreditCard, error) {
		return a.repo.LookupBlacklistedCard(cardHash)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.EffectiveWeight(), true, nil
}

func (a *referenceAdapter) IsBlacklistedPhone(ctx context.Context, phoneHash string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindBlacklist, "phone:"+phoneHash, func() (*refdata.BlacklistedPhone, error) {
		return a.repo.LookupBlacklistedPhone(phoneHash)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.EffectiveWeight(), true, nil
}

func (a *referenceAdapter) DisposableDomain(ctx context.Context, domain string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindDisposable, domain, func() (*refdata.DisposableEmailDomain, error) {
		return a.repo.LookupDisposableDomain(domain)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.RiskWeight, true, nil
}

func (a *referenceAdapter) TorExitNode(ctx context.Context, ip string) (int, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindTorNode, ip, func() (*refdata.TorExitNode, error) {
		return a.repo.LookupTorNode(ip)
	})
	if err != nil || !found {
		return 0, false, err
	}
	return rec.RiskWeight, true, nil
}

func (a *referenceAdapter) ASNByNumber(ctx context.Context, number int64) (checks.ASNInfo, bool, error) {
	idx := strconv.FormatInt(number, 10)
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindASN, idx, func() (*refdata.ASN, error) {
		return a.repo.LookupASN(number)
	})
	if err != nil || !found {
		return checks.ASNInfo{}, false, err
	}
	return checks.ASNInfo{
		Number:     rec.Number,
		Type:       string(rec.Type),
		IsHosting:  rec.IsHosting,
		IsVPN:      rec.IsVPN,
		IsProxy:    rec.IsProxy,
		RiskWeight: rec.RiskWeight,
	}, true, nil
}

// ASNRanges bypasses the cache: it is read once per evaluation at most (by
// IPCheck's local-containment scan) and the full table is small enough
// that a direct repository hit is simpler than cache-aside semantics for
// a list-shaped value.
func (a *referenceAdapter) ASNRanges(ctx context.Context) ([]checks.ASNRange, error) {
	asns, err := a.repo.ASNRanges()
	if err != nil {
		return nil, err
	}
	var ranges []checks.ASNRange
	for _, asn := range asns {
		for _, cidr := range asn.IPRanges {
			ranges = append(ranges, checks.ASNRange{ASNNumber: asn.Number, CIDR: cidr})
		}
	}
	return ranges, nil
}

func (a *referenceAdapter) KnownUserAgent(ctx context.Context, uaHash string) (checks.KnownUAInfo, bool, error) {
	rec, found, err := refdata.Lookup(ctx, a.cache, refdata.KindUserAgent, uaHash, func() (*refdata.KnownUserAgent, error) {
		return a.repo.LookupUserAgent(uaHash)
	})
	if err != nil || !found {
		return checks.KnownUAInfo{}, false, err
	}
	return checks.KnownUAInfo{
		Type:           string(rec.Type),
		RiskWeight:     rec.RiskWeight,
		IsOutdated:     rec.IsOutdated,
		KnownMalicious: rec.Type == refdata.UAMalicious,
	}, true, nil
}

// EvaluationHistory summarizes the last `months` of completed
// evaluations for a hashed subject, feeding EmailCheck/DomainCheck's
// reputation sub-rules. It reads straight from Postgres — audit history
// is not cached, since it already changes on every evaluation for an
// active subject and a stale reputation number would defeat its purpose.
func (a *referenceAdapter) EvaluationHistory(ctx context.Context, subjectHash string, months int) (checks.HistorySummary, error) {
	since := time.Now().AddDate(0, -months, 0)
	avg, blocks, count, err := a.audit.EvaluationHistorySummary(subjectHash, since)
	if err != nil {
		return checks.HistorySummary{}, err
	}
	return checks.HistorySummary{
		AverageScore:    avg,
		PriorBlockCount: blocks,
		EvaluationCount: count,
	}, nil
}

// velocityAdapter implements checks.Velocity over internal/velocity's
// window-typed Counters, translating the Checks package's plain window
// strings into velocity.Window values.
type velocityAdapter struct {
	counters *velocity.Counters
}

func newVelocityAdapter(counters *velocity.Counters) *velocityAdapter {
	return &velocityAdapter{counters: counters}
}

func (v *velocityAdapter) Bump(ctx context.Context, kind, keyHash, window string) (int64, error) {
	return v.counters.Bump(ctx, kind, keyHash, velocity.Window(window))
}

// hasherAdapter implements checks.Hasher over internal/hasher.Hasher. A
// distinct adapter type (rather than using *hasher.Hasher directly)
// keeps internal/checks decoupled from the concrete hashing package, the
// same boundary referenceAdapter enforces for persistence.
type hasherAdapter struct {
	h *hasher.Hasher
}

func newHasherAdapter(h *hasher.Hasher) *hasherAdapter {
	return &hasherAdapter{h: h}
}

func (h *hasherAdapter) Hash(value string) string      { return h.h.Hash(value) }
func (h *hasherAdapter) IndexHash(value string) string { return h.h.IndexHash(value) }
