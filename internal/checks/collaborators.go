package checks

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"fraud-risk-engine/pkg/logger"
)

// Collaborators bundles every outbound lookup a Check may need beyond
// the reference data layer: DNS resolution and the small set of
// external HTTP APIs (domain age, parked-page detection, geolocation,
// ASN fallback). Every HTTP-backed lookup is wrapped in its own circuit
// breaker so a flaky collaborator degrades a single sub-rule's
// contribution to 0 rather than the whole Check failing, per the
// "degrade silently" error policy.
type Collaborators struct {
	resolver *net.Resolver
	http     *resty.Client
	log      *logger.Logger

	domainAgeURL    string
	geolocationURL  string
	asnLookupURL    string
	parkedIndicators []string

	domainAgeBreaker   *gobreaker.CircuitBreaker
	parkedPageBreaker  *gobreaker.CircuitBreaker
	geolocationBreaker *gobreaker.CircuitBreaker
	asnBreaker         *gobreaker.CircuitBreaker
}

// CollaboratorConfig configures the external endpoints Collaborators
// calls. Any empty URL disables that lookup: the corresponding sub-rule
// then always contributes 0, matching the "null result contributes 0"
// rule spec.md gives for domain age.
type CollaboratorConfig struct {
	DomainAgeURL   string
	GeolocationURL string
	ASNLookupURL   string
	HTTPTimeout    time.Duration
	ParkedIndicators []string
}

func defaultBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// NewCollaborators builds a Collaborators from config, with sensible
// defaults for the HTTP client and each breaker.
func NewCollaborators(cfg CollaboratorConfig, log *logger.Logger) *Collaborators {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	indicators := cfg.ParkedIndicators
	if len(indicators) == 0 {
		indicators = []string{
			"domain is for sale", "buy this domain", "this domain is parked",
			"domain parking", "related searches", "this domain may be for sale",
		}
	}

	return &Collaborators{
		resolver:         &net.Resolver{},
		http:             resty.New().SetTimeout(timeout),
		log:              log,
		domainAgeURL:     cfg.DomainAgeURL,
		geolocationURL:   cfg.GeolocationURL,
		asnLookupURL:     cfg.ASNLookupURL,
		parkedIndicators: indicators,
		domainAgeBreaker:   defaultBreaker("domain_age"),
		parkedPageBreaker:  defaultBreaker("parked_page"),
		geolocationBreaker: defaultBreaker("geolocation"),
		asnBreaker:         defaultBreaker("asn_lookup"),
	}
}

// HasMX reports whether domain has at least one MX record.
func (c *Collaborators) HasMX(ctx context.Context, domain string) bool {
	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		c.log.DebugCtx(ctx, "mx lookup failed", "domain", domain, "error", err.Error())
		return false
	}
	return len(records) > 0
}

// HasA reports whether domain has at least one A or AAAA record.
func (c *Collaborators) HasA(ctx context.Context, domain string) bool {
	addrs, err := c.resolver.LookupHost(ctx, domain)
	if err != nil {
		c.log.DebugCtx(ctx, "a/aaaa lookup failed", "domain", domain, "error", err.Error())
		return false
	}
	return len(addrs) > 0
}

// HasSPF reports whether domain publishes an SPF TXT record.
func (c *Collaborators) HasSPF(ctx context.Context, domain string) bool {
	records, err := c.resolver.LookupTXT(ctx, domain)
	if err != nil {
		c.log.DebugCtx(ctx, "txt lookup failed", "domain", domain, "error", err.Error())
		return false
	}
	for _, r := range records {
		if strings.HasPrefix(strings.ToLower(r), "v=spf1") {
			return true
		}
	}
	return false
}

// domainAgeResponse is the shape expected from the domain-age
// collaborator endpoint.
type domainAgeResponse struct {
	AgeDays int  `json:"age_days"`
	Found   bool `json:"found"`
}

// DomainAgeDays returns the domain's age in days. The second return
// value is false when the lookup could not determine an age (disabled,
// breaker open, or the collaborator reported no record) — callers must
// treat that as "contributes 0", never as an error.
func (c *Collaborators) DomainAgeDays(ctx context.Context, domain string) (int, bool) {
	if c.domainAgeURL == "" {
		return 0, false
	}
	res, err := c.domainAgeBreaker.Execute(func() (interface{}, error) {
		var out domainAgeResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("domain", domain).
			SetResult(&out).
			Get(c.domainAgeURL)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("collaborator returned status %d", resp.StatusCode())
		}
		return out, nil
	})
	if err != nil {
		c.log.DebugCtx(ctx, "domain age lookup degraded", "domain", domain, "error", err.Error())
		return 0, false
	}
	out := res.(domainAgeResponse)
	if !out.Found {
		return 0, false
	}
	return out.AgeDays, true
}

// IsParkedPage performs a bounded GET against the domain's root and
// reports whether the body matches any configured parked-page
// indicator string.
func (c *Collaborators) IsParkedPage(ctx context.Context, domain string) bool {
	res, err := c.parkedPageBreaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().SetContext(ctx).Get("http://" + domain)
		if err != nil {
			return false, err
		}
		body := strings.ToLower(resp.String())
		for _, indicator := range c.parkedIndicators {
			if strings.Contains(body, indicator) {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		c.log.DebugCtx(ctx, "parked page check degraded", "domain", domain, "error", err.Error())
		return false
	}
	return res.(bool)
}

// geolocationResponse is the shape expected from the geolocation
// collaborator endpoint.
type geolocationResponse struct {
	CountryCode string `json:"country_code"`
	Timezone    string `json:"timezone"`
}

// Geolocate resolves an IP's country code and timezone. ok is false when
// the lookup is disabled, the breaker is open, or the call failed.
func (c *Collaborators) Geolocate(ctx context.Context, ip string) (country, timezone string, ok bool) {
	if c.geolocationURL == "" {
		return "", "", false
	}
	res, err := c.geolocationBreaker.Execute(func() (interface{}, error) {
		var out geolocationResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("ip", ip).
			SetResult(&out).
			Get(c.geolocationURL)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("collaborator returned status %d", resp.StatusCode())
		}
		return out, nil
	})
	if err != nil {
		c.log.DebugCtx(ctx, "geolocation lookup degraded", "error", err.Error())
		return "", "", false
	}
	out := res.(geolocationResponse)
	return out.CountryCode, out.Timezone, true
}

// asnLookupResponse is the shape expected from the ASN fallback
// collaborator endpoint, used when an IP does not fall inside any
// locally stored ASN IP range.
type asnLookupResponse struct {
	ASN int64 `json:"asn"`
}

// LookupASNByIP resolves the ASN number owning an IP via the
// collaborator API. ok is false when disabled, breaker-open, or failed.
func (c *Collaborators) LookupASNByIP(ctx context.Context, ip string) (int64, bool) {
	if c.asnLookupURL == "" {
		return 0, false
	}
	res, err := c.asnBreaker.Execute(func() (interface{}, error) {
		var out asnLookupResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("ip", ip).
			SetResult(&out).
			Get(c.asnLookupURL)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("collaborator returned status %d", resp.StatusCode())
		}
		return out, nil
	})
	if err != nil {
		c.log.DebugCtx(ctx, "asn lookup degraded", "error", err.Error())
		return 0, false
	}
	return res.(asnLookupResponse).ASN, true
}
