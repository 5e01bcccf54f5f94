// Package refdata is the Reference Data Layer (spec.md §3/§4.3): the
// read-mostly blocklist and classification tables Checks consult, and
// the cache-aside layer in front of them. Every table here is mutated
// only by the Refresh Pipeline or explicit admin action — Checks treat
// refdata as read-only.
package refdata

import "time"

// TorExitNode is a known Tor exit relay, keyed by IP address.
type TorExitNode struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	IP         string    `gorm:"uniqueIndex;type:varchar(45);not null"`
	IPVersion  int       `gorm:"not null"`
	NodeID     string    `gorm:"type:varchar(255)"`
	Nickname   string    `gorm:"type:varchar(255)"`
	IsActive   bool      `gorm:"default:true;index"`
	RiskWeight int       `gorm:"default:90"`
	LastSeenAt time.Time `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;index"`
}

func (TorExitNode) TableName() string { return "tor_exit_nodes" }

// DisposableEmailDomain is a domain known to issue throwaway mailboxes.
type DisposableEmailDomain struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Domain     string    `gorm:"uniqueIndex;type:varchar(255);not null"`
	Source     string    `gorm:"type:varchar(100);not null"`
	IsActive   bool      `gorm:"default:true;index"`
	RiskWeight int       `gorm:"default:80"`
	LastSeenAt time.Time `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;index"`
}

func (DisposableEmailDomain) TableName() string { return "disposable_email_domains" }

// ASNType classifies the kind of network an ASN's address space belongs
// to, used by the IP check's ASN-classification sub-rule.
type ASNType string

const (
	ASNDatacenter ASNType = "datacenter"
	ASNResidential ASNType = "residential"
	ASNMobile      ASNType = "mobile"
	ASNEducation   ASNType = "education"
	ASNGovernment  ASNType = "government"
	ASNUnknown     ASNType = "unknown"
)

// ASN is an autonomous system classification record. IPRanges is stored
// as a JSON array of CIDR strings so an IP can be mapped to its ASN by
// local range containment before falling back to a collaborator API.
type ASN struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Number      int64   `gorm:"uniqueIndex;not null"`
	Organization string `gorm:"type:varchar(255);not null"`
	CountryCode string  `gorm:"type:varchar(2)"`
	Type        ASNType `gorm:"type:varchar(20);not null;default:unknown"`
	IsHosting   bool    `gorm:"default:false"`
	IsVPN       bool    `gorm:"default:false"`
	IsProxy     bool    `gorm:"default:false"`
	IPRanges    JSONStringSlice `gorm:"type:jsonb"`
	RiskWeight  int     `gorm:"default:0"`
	IsActive    bool      `gorm:"default:true;index"`
	LastSeenAt  time.Time `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index"`
}

func (ASN) TableName() string { return "asns" }

// UAType classifies a known user agent string.
type UAType string

const (
	UABot       UAType = "bot"
	UAScraper   UAType = "scraper"
	UABrowser   UAType = "browser"
	UAMalicious UAType = "malicious"
	UAUnknown   UAType = "unknown"
)

// KnownUserAgent is a pre-classified user agent, keyed by the sha256 of
// its literal string (never the plaintext UA itself, per the privacy
// invariant in spec.md §9, though UAs are not typically sensitive this
// keeps the lookup contract uniform with the other reference tables).
type KnownUserAgent struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	UAHash     string     `gorm:"uniqueIndex;type:varchar(64);not null"`
	Type       UAType     `gorm:"type:varchar(20);not null;default:unknown"`
	Name       string     `gorm:"type:varchar(255)"`
	Version    string     `gorm:"type:varchar(50)"`
	RiskWeight int        `gorm:"default:0"`
	IsOutdated bool       `gorm:"default:false"`
	EOLDate    *time.Time `gorm:""`
	IsActive   bool       `gorm:"default:true;index"`
	LastSeenAt time.Time  `gorm:"index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime;index"`
}

func (KnownUserAgent) TableName() string { return "known_user_agents" }

// BlacklistedEmail is a previously confirmed bad-actor email, keyed by
// its keyed hash — never the plaintext address.
type BlacklistedEmail struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	EmailHash   string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	Reason      string    `gorm:"type:text"`
	RiskWeight  int       `gorm:"default:100"`
	ReportCount int       `gorm:"default:1"`
	LastSeenAt  time.Time `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index"`
}

func (BlacklistedEmail) TableName() string { return "blacklisted_emails" }

// BlacklistedIP is a previously confirmed bad-actor IP, keyed by keyed
// hash of the normalized address.
type BlacklistedIP struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	IPHash      string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	Reason      string    `gorm:"type:text"`
	RiskWeight  int       `gorm:"default:100"`
	ReportCount int       `gorm:"default:1"`
	LastSeenAt  time.Time `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index"`
}

func (BlacklistedIP) TableName() string { return "blacklisted_ips" }

// BlacklistedCreditCard is a previously confirmed fraudulent PAN, keyed
// by keyed hash. ChargebackCount raises the effective weight beyond the
// base RiskWeight as disputes accumulate.
type BlacklistedCreditCard struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	CardHash         string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	Reason           string    `gorm:"type:text"`
	RiskWeight       int       `gorm:"default:100"`
	ChargebackCount  int       `gorm:"default:1"`
	LastSeenAt       time.Time `gorm:"index"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime;index"`
}

func (BlacklistedCreditCard) TableName() string { return "blacklisted_credit_cards" }

// BlacklistedPhone is a previously confirmed bad-actor phone number,
// keyed by keyed hash of the E.164-normalized value.
type BlacklistedPhone struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	PhoneHash   string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	Reason      string    `gorm:"type:text"`
	RiskWeight  int       `gorm:"default:100"`
	ReportCount int       `gorm:"default:1"`
	LastSeenAt  time.Time `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index"`
}

func (BlacklistedPhone) TableName() string { return "blacklisted_phones" }

// EffectiveWeight returns the base risk weight bumped by report/chargeback
// volume, clamped to 100. Each additional report beyond the first adds 2
// points, capturing "more reports, more confidence" without a second
// configuration knob.
func effectiveWeight(base, extraReports int) int {
	w := base + extraReports*2
	if w > 100 {
		return 100
	}
	return w
}

// EffectiveWeight for BlacklistedEmail.
func (b BlacklistedEmail) EffectiveWeight() int {
	if b.ReportCount <= 1 {
		return b.RiskWeight
	}
	return effectiveWeight(b.RiskWeight, b.ReportCount-1)
}

// EffectiveWeight for BlacklistedIP.
func (b BlacklistedIP) EffectiveWeight() int {
	if b.ReportCount <= 1 {
		return b.RiskWeight
	}
	return effectiveWeight(b.RiskWeight, b.ReportCount-1)
}

// EffectiveWeight for BlacklistedCreditCard, driven by chargeback volume.
func (b BlacklistedCreditCard) EffectiveWeight() int {
	if b.ChargebackCount <= 1 {
		return b.RiskWeight
	}
	return effectiveWeight(b.RiskWeight, b.ChargebackCount-1)
}

// EffectiveWeight for BlacklistedPhone.
func (b BlacklistedPhone) EffectiveWeight() int {
	if b.ReportCount <= 1 {
		return b.RiskWeight
	}
	return effectiveWeight(b.RiskWeight, b.ReportCount-1)
}

// AutoMigrate creates or updates every reference table.
func AutoMigrate(db interface {
	AutoMigrate(...interface{}) error
}) error {
	return db.AutoMigrate(
		&TorExitNode{},
		&DisposableEmailDomain{},
		&ASN{},
		&KnownUserAgent{},
		&BlacklistedEmail{},
		&BlacklistedIP{},
		&BlacklistedCreditCard{},
		&BlacklistedPhone{},
	)
}
