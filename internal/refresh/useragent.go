package refresh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/pkg/logger"
)

const userAgentBatchSize = 500

// userAgentEntryJSON mirrors spec.md §6's known-user-agent feed shape:
// {pattern|userAgent, name|browser, version?}. Either key pair is
// accepted since "bot list" feeds and "curated pattern" feeds in the
// wild use different field names for the same concept.
type userAgentEntryJSON struct {
	Pattern   string `json:"pattern"`
	UserAgent string `json:"userAgent"`
	Name      string `json:"name"`
	Browser   string `json:"browser"`
	Version   string `json:"version"`
}

func (e userAgentEntryJSON) literal() string {
	if e.Pattern != "" {
		return e.Pattern
	}
	return e.UserAgent
}

func (e userAgentEntryJSON) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Browser
}

// CuratedPattern is an internally-maintained known user-agent entry,
// fed alongside the external JSON bot list per spec.md §4.9's "JSON bot
// list + internally curated patterns" description.
type CuratedPattern struct {
	Literal string
	Name    string
	Type    refdata.UAType
	Weight  int
}

// UserAgentSource refreshes known_user_agents from one or more JSON bot-
// list feeds plus a statically configured curated pattern set.
type UserAgentSource struct {
	feedURLs    []string
	curated     []CuratedPattern
	client      *http.Client
	repo        *refdata.Repository
	log         *logger.Logger
	minInterval time.Duration
}

// NewUserAgentSource builds a UserAgentSource.
func NewUserAgentSource(feedURLs []string, curated []CuratedPattern, client *http.Client, repo *refdata.Repository, log *logger.Logger, minInterval time.Duration) *UserAgentSource {
	return &UserAgentSource{feedURLs: feedURLs, curated: curated, client: client, repo: repo, log: log, minInterval: minInterval}
}

func (s *UserAgentSource) Name() string               { return "user_agents" }
func (s *UserAgentSource) MinInterval() time.Duration { return s.minInterval }

func (s *UserAgentSource) Refresh(ctx context.Context) (int, error) {
	cutoff := time.Now()
	if err := s.repo.DeactivateStaleUserAgents(cutoff); err != nil {
		return 0, err
	}

	total := 0
	for _, url := range s.feedURLs {
		n, err := s.refreshFeed(ctx, url)
		if err != nil {
			return total, err
		}
		total += n
	}

	if n, err := s.upsertCurated(); err != nil {
		return total, err
	} else {
		total += n
	}

	if _, err := s.repo.PruneInactiveUserAgents(7 * 24 * time.Hour); err != nil {
		s.log.Warn("refresh: pruning inactive user agents failed", "error", err.Error())
	}
	return total, nil
}

func (s *UserAgentSource) refreshFeed(ctx context.Context, url string) (int, error) {
	path, err := streamToTempFile(ctx, s.client, url, "useragent-*.json")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var entries []userAgentEntryJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, err
	}

	now := time.Now()
	total := 0
	var batch []refdata.KnownUserAgent
	for _, e := range entries {
		literal := strings.TrimSpace(e.literal())
		if literal == "" {
			continue
		}
		batch = append(batch, refdata.KnownUserAgent{
			UAHash:     hashUserAgent(literal),
			Type:       refdata.UABot,
			Name:       e.displayName(),
			Version:    e.Version,
			RiskWeight: 40,
			IsActive:   true,
			LastSeenAt: now,
		})
		if len(batch) >= userAgentBatchSize {
			if err := s.repo.UpsertUserAgents(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
			gcHint()
			checkMemoryCeiling(s.log)
		}
	}
	if len(batch) > 0 {
		if err := s.repo.UpsertUserAgents(batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

func (s *UserAgentSource) upsertCurated() (int, error) {
	if len(s.curated) == 0 {
		return 0, nil
	}
	now := time.Now()
	batch := make([]refdata.KnownUserAgent, 0, len(s.curated))
	for _, c := range s.curated {
		batch = append(batch, refdata.KnownUserAgent{
			UAHash:     hashUserAgent(c.Literal),
			Type:       c.Type,
			Name:       c.Name,
			RiskWeight: c.Weight,
			IsActive:   true,
			LastSeenAt: now,
		})
	}
	if err := s.repo.UpsertUserAgents(batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// hashUserAgent matches the sha256-of-literal-string key shape
// KnownUserAgent.UAHash and the UserAgentCheck's own lookup use.
func hashUserAgent(literal string) string {
	sum := sha256.Sum256([]byte(literal))
	return hex.EncodeToString(sum[:])
}
