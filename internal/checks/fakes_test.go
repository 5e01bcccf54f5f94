package checks

import (
	"context"
	"strings"

	"fraud-risk-engine/pkg/logger"
)

func noopLogger() *logger.Logger {
	return logger.New(logger.LogConfig{Level: "error", Format: "text", ServiceName: "checks-test", Environment: "test"})
}

// fakeReferenceData is a hand-rolled ReferenceData test double; no
// corpus example wires a mocking library for this kind of narrow
// lookup interface, so a map-backed fake in the teacher's own testing
// idiom (plain structs, no framework) is used instead.
type fakeReferenceData struct {
	blacklistedEmails map[string]int
	blacklistedIPs    map[string]int
	blacklistedCards  map[string]int
	blacklistedPhones map[string]int
	disposableDomains map[string]int
	torNodes          map[string]int
	asns              map[int64]ASNInfo
	asnRanges         []ASNRange
	knownUAs          map[string]KnownUAInfo
	history           map[string]HistorySummary
}

func newFakeReferenceData() *fakeReferenceData {
	return &fakeReferenceData{
		blacklistedEmails: map[string]int{},
		blacklistedIPs:    map[string]int{},
		blacklistedCards:  map[string]int{},
		blacklistedPhones: map[string]int{},
		disposableDomains: map[string]int{},
		torNodes:          map[string]int{},
		asns:              map[int64]ASNInfo{},
		knownUAs:          map[string]KnownUAInfo{},
		history:           map[string]HistorySummary{},
	}
}

func (f *fakeReferenceData) IsBlacklistedEmail(ctx context.Context, emailHash string) (int, bool, error) {
	w, ok := f.blacklistedEmails[emailHash]
	return w, ok, nil
}
func (f *fakeReferenceData) IsBlacklistedIP(ctx context.Context, ipHash string) (int, bool, error) {
	w, ok := f.blacklistedIPs[ipHash]
	return w, ok, nil
}
func (f *fakeReferenceData) IsBlacklistedCard(ctx context.Context, cardHash string) (int, bool, error) {
	w, ok := f.blacklistedCards[cardHash]
	return w, ok, nil
}
func (f *fakeReferenceData) IsBlacklistedPhone(ctx context.Context, phoneHash string) (int, bool, error) {
	w, ok := f.blacklistedPhones[phoneHash]
	return w, ok, nil
}
func (f *fakeReferenceData) DisposableDomain(ctx context.Context, domain string) (int, bool, error) {
	w, ok := f.disposableDomains[domain]
	return w, ok, nil
}
func (f *fakeReferenceData) TorExitNode(ctx context.Context, ip string) (int, bool, error) {
	w, ok := f.torNodes[ip]
	return w, ok, nil
}
func (f *fakeReferenceData) ASNByNumber(ctx context.Context, number int64) (ASNInfo, bool, error) {
	a, ok := f.asns[number]
	return a, ok, nil
}
func (f *fakeReferenceData) ASNRanges(ctx context.Context) ([]ASNRange, error) {
	return f.asnRanges, nil
}
func (f *fakeReferenceData) KnownUserAgent(ctx context.Context, uaHash string) (KnownUAInfo, bool, error) {
	u, ok := f.knownUAs[uaHash]
	return u, ok, nil
}
func (f *fakeReferenceData) EvaluationHistory(ctx context.Context, subjectHash string, months int) (HistorySummary, error) {
	return f.history[subjectHash], nil
}

// fakeHasher is a deterministic, unkeyed stand-in for the real HMAC
// hasher. Like the real one, Hash lowercases and trims its input first,
// so values that differ only in case or surrounding space hash alike.
type fakeHasher struct{}

func (fakeHasher) Hash(value string) string      { return "hash:" + strings.ToLower(strings.TrimSpace(value)) }
func (fakeHasher) IndexHash(value string) string { return "idx:" + value }

// fakeVelocity is an in-memory Velocity double.
type fakeVelocity struct {
	counts map[string]int64
}

func newFakeVelocity() *fakeVelocity {
	return &fakeVelocity{counts: map[string]int64{}}
}

func (f *fakeVelocity) Bump(ctx context.Context, kind, keyHash, window string) (int64, error) {
	k := kind + ":" + keyHash + ":" + window
	f.counts[k]++
	return f.counts[k], nil
}

// fakeCollaborators builds a Collaborators with every external URL
// disabled, so DNS/HTTP-backed sub-rules deterministically contribute
// their "degraded" outcome (0) unless a test overrides specific fields
// directly for MX/A, which are exercised via the real resolver against
// addresses that fail DNS lookup in a sandboxed test environment and so
// also degrade to false — acceptable for these tests since no seed
// scenario depends on MX/A succeeding.
func fakeCollaborators() *Collaborators {
	return NewCollaborators(CollaboratorConfig{}, noopLogger())
}
