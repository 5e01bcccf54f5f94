package refresh

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/pkg/logger"
)

const disposableBatchSize = 500

// DisposableFeed describes one configured source URL and whether its
// body is newline-delimited text or a JSON array of domain strings, per
// spec.md §6's feed-format table.
type DisposableFeed struct {
	URL  string
	JSON bool
}

// DisposableDomainSource refreshes disposable_email_domains from
// multiple text and JSON feeds.
type DisposableDomainSource struct {
	feeds       []DisposableFeed
	client      *http.Client
	repo        *refdata.Repository
	log         *logger.Logger
	minInterval time.Duration
}

// NewDisposableDomainSource builds a DisposableDomainSource from a set
// of configured feeds.
func NewDisposableDomainSource(feeds []DisposableFeed, client *http.Client, repo *refdata.Repository, log *logger.Logger, minInterval time.Duration) *DisposableDomainSource {
	return &DisposableDomainSource{feeds: feeds, client: client, repo: repo, log: log, minInterval: minInterval}
}

// NewTextDisposableFeed and NewJSONDisposableFeed build a DisposableFeed
// of the given kind, so callers don't need to set the JSON flag by hand.
func NewTextDisposableFeed(url string) DisposableFeed { return DisposableFeed{URL: url, JSON: false} }
func NewJSONDisposableFeed(url string) DisposableFeed { return DisposableFeed{URL: url, JSON: true} }

func (s *DisposableDomainSource) Name() string               { return "disposable_emails" }
func (s *DisposableDomainSource) MinInterval() time.Duration { return s.minInterval }

func (s *DisposableDomainSource) Refresh(ctx context.Context) (int, error) {
	cutoff := time.Now()
	if err := s.repo.DeactivateStaleDisposableDomains(cutoff); err != nil {
		return 0, err
	}

	total := 0
	for _, feed := range s.feeds {
		var n int
		var err error
		if feed.JSON {
			n, err = s.refreshJSONFeed(ctx, feed.URL)
		} else {
			n, err = s.refreshTextFeed(ctx, feed.URL)
		}
		if err != nil {
			return total, err
		}
		total += n
	}

	if _, err := s.repo.PruneInactiveDisposableDomains(7 * 24 * time.Hour); err != nil {
		s.log.Warn("refresh: pruning inactive disposable domains failed", "error", err.Error())
	}
	return total, nil
}

func (s *DisposableDomainSource) refreshTextFeed(ctx context.Context, url string) (int, error) {
	path, err := streamToTempFile(ctx, s.client, url, "disposable-*.txt")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	var batch []refdata.DisposableEmailDomain
	total := 0
	now := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertDisposableDomains(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		gcHint()
		checkMemoryCeiling(s.log)
		return nil
	}

	err = scanLines(path, func(line string) error {
		domain, ok := normalizeDisposableDomain(line)
		if !ok {
			return nil
		}
		batch = append(batch, refdata.DisposableEmailDomain{
			Domain:     domain,
			Source:     url,
			IsActive:   true,
			RiskWeight: 80,
			LastSeenAt: now,
		})
		if len(batch) >= disposableBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func (s *DisposableDomainSource) refreshJSONFeed(ctx context.Context, url string) (int, error) {
	path, err := streamToTempFile(ctx, s.client, url, "disposable-*.json")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var domains []string
	if err := json.Unmarshal(raw, &domains); err != nil {
		return 0, err
	}

	now := time.Now()
	total := 0
	var batch []refdata.DisposableEmailDomain
	for _, d := range domains {
		domain, ok := normalizeDisposableDomain(d)
		if !ok {
			continue
		}
		batch = append(batch, refdata.DisposableEmailDomain{
			Domain:     domain,
			Source:     url,
			IsActive:   true,
			RiskWeight: 80,
			LastSeenAt: now,
		})
		if len(batch) >= disposableBatchSize {
			if err := s.repo.UpsertDisposableDomains(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
			gcHint()
			checkMemoryCeiling(s.log)
		}
	}
	if len(batch) > 0 {
		if err := s.repo.UpsertDisposableDomains(batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// normalizeDisposableDomain strips comments (# or //), blank lines, and
// leading wildcard labels ("*.") per spec.md §6's feed-format note, and
// lowercases the remainder.
func normalizeDisposableDomain(line string) (string, bool) {
	d := strings.TrimSpace(line)
	if d == "" || strings.HasPrefix(d, "#") || strings.HasPrefix(d, "//") {
		return "", false
	}
	d = strings.TrimPrefix(d, "*.")
	d = strings.ToLower(d)
	if !strings.Contains(d, ".") {
		return "", false
	}
	return d, true
}
