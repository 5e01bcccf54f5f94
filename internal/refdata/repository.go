package refdata

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides database operations for every reference table: the
// lookups Checks need and the batch upserts the Refresh Pipeline drives.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps an existing database connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LookupTorNode returns the active Tor exit node for an IP, if any.
func (r *Repository) LookupTorNode(ip string) (*TorExitNode, error) {
	var node TorExitNode
	result := r.db.Where("ip = ? AND is_active = ?", ip, true).First(&node)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up tor node: %w", result.Error)
	}
	return &node, nil
}

// LookupDisposableDomain returns the active disposable-email-domain record
// for a domain, if any.
func (r *Repository) LookupDisposableDomain(domain string) (*DisposableEmailDomain, error) {
	var rec DisposableEmailDomain
	result := r.db.Where("domain = ? AND is_active = ?", domain, true).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up disposable domain: %w", result.Error)
	}
	return &rec, nil
}

// LookupASN returns the classification record for an autonomous system
// number, if known locally.
func (r *Repository) LookupASN(number int64) (*ASN, error) {
	var asn ASN
	result := r.db.Where("number = ? AND is_active = ?", number, true).First(&asn)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up asn: %w", result.Error)
	}
	return &asn, nil
}

// ASNRanges returns every ASN record that carries at least one IP range,
// for local containment scanning before a collaborator lookup is needed.
func (r *Repository) ASNRanges() ([]ASN, error) {
	var asns []ASN
	result := r.db.Where("ip_ranges IS NOT NULL AND ip_ranges != '[]'").Find(&asns)
	if result.Error != nil {
		return nil, fmt.Errorf("refdata: listing asn ranges: %w", result.Error)
	}
	return asns, nil
}

// LookupUserAgent returns the classification record for a hashed user
// agent string, if known.
func (r *Repository) LookupUserAgent(uaHash string) (*KnownUserAgent, error) {
	var ua KnownUserAgent
	result := r.db.Where("ua_hash = ? AND is_active = ?", uaHash, true).First(&ua)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up user agent: %w", result.Error)
	}
	return &ua, nil
}

// LookupBlacklistedEmail returns the blacklist record for a hashed email,
// if any.
func (r *Repository) LookupBlacklistedEmail(emailHash string) (*BlacklistedEmail, error) {
	var rec BlacklistedEmail
	result := r.db.Where("email_hash = ?", emailHash).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up blacklisted email: %w", result.Error)
	}
	return &rec, nil
}

// LookupBlacklistedIP returns the blacklist record for a hashed IP, if any.
func (r *Repository) LookupBlacklistedIP(ipHash string) (*BlacklistedIP, error) {
	var rec BlacklistedIP
	result := r.db.Where("ip_hash = ?", ipHash).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up blacklisted ip: %w", result.Error)
	}
	return &rec, nil
}

// LookupBlacklistedCard returns the blacklist record for a hashed card
// number, if any.
func (r *Repository) LookupBlacklistedCard(cardHash string) (*BlacklistedCreditCard, error) {
	var rec BlacklistedCreditCard
	result := r.db.Where("card_hash = ?", cardHash).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up blacklisted card: %w", result.Error)
	}
	return &rec, nil
}

// LookupBlacklistedPhone returns the blacklist record for a hashed phone
// number, if any.
func (r *Repository) LookupBlacklistedPhone(phoneHash string) (*BlacklistedPhone, error) {
	var rec BlacklistedPhone
	result := r.db.Where("phone_hash = ?", phoneHash).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("refdata: looking up blacklisted phone: %w", result.Error)
	}
	return &rec, nil
}

// UpsertTorNodes inserts or updates Tor exit nodes by IP, the natural key.
// Existing rows are refreshed in place so LastSeenAt/IsActive reflect the
// latest feed without orphaning the surrogate primary key.
func (r *Repository) UpsertTorNodes(nodes []TorExitNode) error {
	if len(nodes) == 0 {
		return nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{"node_id", "nickname", "is_active", "risk_weight", "last_seen_at", "updated_at"}),
	}).Create(&nodes)
	if result.Error != nil {
		return fmt.Errorf("refdata: upserting tor nodes: %w", result.Error)
	}
	return nil
}

// UpsertDisposableDomains inserts or updates disposable email domains by
// domain name.
func (r *Repository) UpsertDisposableDomains(domains []DisposableEmailDomain) error {
	if len(domains) == 0 {
		return nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "is_active", "risk_weight", "last_seen_at", "updated_at"}),
	}).Create(&domains)
	if result.Error != nil {
		return fmt.Errorf("refdata: upserting disposable domains: %w", result.Error)
	}
	return nil
}

// UpsertASNs inserts or updates ASN classification records by ASN number.
func (r *Repository) UpsertASNs(asns []ASN) error {
	if len(asns) == 0 {
		return nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"organization", "country_code", "type", "is_hosting", "is_vpn", "is_proxy", "ip_ranges", "risk_weight", "is_active", "last_seen_at", "updated_at",
		}),
	}).Create(&asns)
	if result.Error != nil {
		return fmt.Errorf("refdata: upserting asns: %w", result.Error)
	}
	return nil
}

// UpsertUserAgents inserts or updates known user agents by their hash.
func (r *Repository) UpsertUserAgents(uas []KnownUserAgent) error {
	if len(uas) == 0 {
		return nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ua_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"type", "name", "version", "risk_weight", "is_outdated", "eol_date", "is_active", "last_seen_at", "updated_at",
		}),
	}).Create(&uas)
	if result.Error != nil {
		return fmt.Errorf("refdata: upserting user agents: %w", result.Error)
	}
	return nil
}

// DeactivateStaleTorNodes flips is_active off for every Tor node row not
// touched by the current refresh cycle (LastSeenAt older than cutoff).
// Called before the batch upsert so the refreshed rows win the flip, per
// the pipeline's flip-before-upsert snapshot pattern.
func (r *Repository) DeactivateStaleTorNodes(cutoff time.Time) error {
	result := r.db.Model(&TorExitNode{}).
		Where("last_seen_at < ?", cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("refdata: deactivating stale tor nodes: %w", result.Error)
	}
	return nil
}

// DeactivateStaleDisposableDomains flips is_active off for disposable
// domain rows older than cutoff, mirroring DeactivateStaleTorNodes.
func (r *Repository) DeactivateStaleDisposableDomains(cutoff time.Time) error {
	result := r.db.Model(&DisposableEmailDomain{}).
		Where("last_seen_at < ?", cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("refdata: deactivating stale disposable domains: %w", result.Error)
	}
	return nil
}

// PruneInactiveTorNodes deletes Tor node rows that have been inactive for
// longer than retention, the soft-retention tail of the refresh pipeline.
func (r *Repository) PruneInactiveTorNodes(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("is_active = ? AND updated_at < ?", false, cutoff).Delete(&TorExitNode{})
	if result.Error != nil {
		return 0, fmt.Errorf("refdata: pruning inactive tor nodes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PruneInactiveDisposableDomains deletes long-inactive disposable domain
// rows, mirroring PruneInactiveTorNodes.
func (r *Repository) PruneInactiveDisposableDomains(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("is_active = ? AND updated_at < ?", false, cutoff).Delete(&DisposableEmailDomain{})
	if result.Error != nil {
		return 0, fmt.Errorf("refdata: pruning inactive disposable domains: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeactivateStaleASNs flips is_active off for ASN rows not touched by the
// current refresh cycle, mirroring DeactivateStaleTorNodes.
func (r *Repository) DeactivateStaleASNs(cutoff time.Time) error {
	result := r.db.Model(&ASN{}).
		Where("last_seen_at < ?", cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("refdata: deactivating stale asns: %w", result.Error)
	}
	return nil
}

// DeactivateStaleUserAgents flips is_active off for known-user-agent rows
// not touched by the current refresh cycle, mirroring DeactivateStaleTorNodes.
func (r *Repository) DeactivateStaleUserAgents(cutoff time.Time) error {
	result := r.db.Model(&KnownUserAgent{}).
		Where("last_seen_at < ?", cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("refdata: deactivating stale user agents: %w", result.Error)
	}
	return nil
}

// PruneInactiveASNs deletes ASN rows that have been inactive for longer
// than retention, mirroring PruneInactiveTorNodes.
func (r *Repository) PruneInactiveASNs(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("is_active = ? AND updated_at < ?", false, cutoff).Delete(&ASN{})
	if result.Error != nil {
		return 0, fmt.Errorf("refdata: pruning inactive asns: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PruneInactiveUserAgents deletes known-user-agent rows that have been
// inactive for longer than retention, mirroring PruneInactiveTorNodes.
func (r *Repository) PruneInactiveUserAgents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("is_active = ? AND updated_at < ?", false, cutoff).Delete(&KnownUserAgent{})
	if result.Error != nil {
		return 0, fmt.Errorf("refdata: pruning inactive user agents: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RecordBlacklistEmail upserts a blacklist entry by its hash, bumping the
// report count when the hash is already known rather than duplicating
// the row. Used by the admin surface when an operator confirms fraud.
func (r *Repository) RecordBlacklistEmail(emailHash, reason string, weight int) error {
	now := time.Now()
	rec := BlacklistedEmail{EmailHash: emailHash, Reason: reason, RiskWeight: weight, ReportCount: 1, LastSeenAt: now}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"report_count": gorm.Expr("blacklisted_emails.report_count + 1"),
			"last_seen_at": now,
			"reason":       reason,
			"updated_at":   now,
		}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("refdata: recording blacklisted email: %w", result.Error)
	}
	return nil
}

// RecordBlacklistIP upserts a blacklist entry for an IP hash.
func (r *Repository) RecordBlacklistIP(ipHash, reason string, weight int) error {
	now := time.Now()
	rec := BlacklistedIP{IPHash: ipHash, Reason: reason, RiskWeight: weight, ReportCount: 1, LastSeenAt: now}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"report_count": gorm.Expr("blacklisted_ips.report_count + 1"),
			"last_seen_at": now,
			"reason":       reason,
			"updated_at":   now,
		}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("refdata: recording blacklisted ip: %w", result.Error)
	}
	return nil
}

// RecordBlacklistCard upserts a blacklist entry for a card hash, bumping
// the chargeback count instead of the report count.
func (r *Repository) RecordBlacklistCard(cardHash, reason string, weight int) error {
	now := time.Now()
	rec := BlacklistedCreditCard{CardHash: cardHash, Reason: reason, RiskWeight: weight, ChargebackCount: 1, LastSeenAt: now}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"chargeback_count": gorm.Expr("blacklisted_credit_cards.chargeback_count + 1"),
			"last_seen_at":     now,
			"reason":           reason,
			"updated_at":       now,
		}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("refdata: recording blacklisted card: %w", result.Error)
	}
	return nil
}

// RecordBlacklistPhone upserts a blacklist entry for a phone hash.
func (r *Repository) RecordBlacklistPhone(phoneHash, reason string, weight int) error {
	now := time.Now()
	rec := BlacklistedPhone{PhoneHash: phoneHash, Reason: reason, RiskWeight: weight, ReportCount: 1, LastSeenAt: now}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"report_count": gorm.Expr("blacklisted_phones.report_count + 1"),
			"last_seen_at": now,
			"reason":       reason,
			"updated_at":   now,
		}),
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("refdata: recording blacklisted phone: %w", result.Error)
	}
	return nil
}
