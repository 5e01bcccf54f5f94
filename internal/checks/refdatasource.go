package checks

import (
	"context"
)

// ReferenceData is the narrow view of the Reference Data Layer (C3) the
// Checks package needs. internal/refdata's Repository+Cache pair
// satisfies this via the riskengine wiring layer; Checks themselves
// never import internal/refdata directly, keeping this package
// independent of the persistence stack it runs against.
type ReferenceData interface {
	IsBlacklistedEmail(ctx context.Context, emailHash string) (weight int, found bool, err error)
	IsBlacklistedIP(ctx context.Context, ipHash string) (weight int, found bool, err error)
	IsBlacklistedCard(ctx context.Context, cardHash string) (weight int, found bool, err error)
	IsBlacklistedPhone(ctx context.Context, phoneHash string) (weight int, found bool, err error)

	DisposableDomain(ctx context.Context, domain string) (weight int, found bool, err error)
	TorExitNode(ctx context.Context, ip string) (weight int, found bool, err error)
	ASNByNumber(ctx context.Context, number int64) (asn ASNInfo, found bool, err error)
	ASNRanges(ctx context.Context) ([]ASNRange, error)
	KnownUserAgent(ctx context.Context, uaHash string) (ua KnownUAInfo, found bool, err error)

	EvaluationHistory(ctx context.Context, subjectHash string, months int) (HistorySummary, error)
}

// ASNInfo is the subset of a stored ASN classification record a Check
// needs.
type ASNInfo struct {
	Number     int64
	Type       string
	IsHosting  bool
	IsVPN      bool
	IsProxy    bool
	RiskWeight int
}

// ASNRange is a single locally-known CIDR-to-ASN mapping, used to avoid
// a collaborator round trip when the IP falls inside a known range.
type ASNRange struct {
	ASNNumber int64
	CIDR      string
}

// KnownUAInfo is the subset of a stored user-agent classification
// record a Check needs.
type KnownUAInfo struct {
	Type           string
	RiskWeight     int
	IsOutdated     bool
	KnownMalicious bool
}

// HistorySummary is the aggregate of an identity's past evaluation
// outcomes, used by the reputation sub-rules in EmailCheck and
// DomainCheck.
type HistorySummary struct {
	AverageScore     float64
	PriorBlockCount  int
	EvaluationCount  int
}

// Velocity is the narrow view of the velocity counter store a Check
// needs.
type Velocity interface {
	Bump(ctx context.Context, kind, keyHash, window string) (int64, error)
}

// Hasher is the narrow view of the keyed-hashing contract a Check needs.
type Hasher interface {
	Hash(value string) string
	IndexHash(value string) string
}
