package refresh

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"fraud-risk-engine/internal/ipcidr"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/pkg/logger"
)

const torBatchSize = 500

// torExitListJSON mirrors the paginated JSON metadata endpoint's entry
// shape spec.md §6 describes: {nickname, fingerprint, exit_addresses, last_seen}.
type torExitListJSON struct {
	Nickname      string   `json:"nickname"`
	Fingerprint   string   `json:"fingerprint"`
	ExitAddresses []string `json:"exit_addresses"`
	LastSeen      string   `json:"last_seen"`
}

// TorSource refreshes the tor_exit_nodes table from two plain IP-list
// feeds plus one paginated JSON metadata feed, per spec.md §4.9/§6.
type TorSource struct {
	listURLs    []string
	metadataURL string
	client      *http.Client
	repo        *refdata.Repository
	log         *logger.Logger
	minInterval time.Duration
}

// NewTorSource builds a TorSource. listURLs are newline-delimited
// IPv4/IPv6 text feeds; metadataURL (optional, empty to skip) is the
// paginated JSON endpoint.
func NewTorSource(listURLs []string, metadataURL string, client *http.Client, repo *refdata.Repository, log *logger.Logger, minInterval time.Duration) *TorSource {
	return &TorSource{listURLs: listURLs, metadataURL: metadataURL, client: client, repo: repo, log: log, minInterval: minInterval}
}

func (s *TorSource) Name() string               { return "tor" }
func (s *TorSource) MinInterval() time.Duration { return s.minInterval }

// Refresh streams each configured feed to a temp file, parses it, and
// upserts in batches, deactivating stale rows first per the
// flip-before-upsert snapshot pattern.
func (s *TorSource) Refresh(ctx context.Context) (int, error) {
	cutoff := time.Now()
	if err := s.repo.DeactivateStaleTorNodes(cutoff); err != nil {
		return 0, err
	}

	total := 0
	for _, url := range s.listURLs {
		n, err := s.refreshListFeed(ctx, url)
		if err != nil {
			return total, err
		}
		total += n
	}

	if s.metadataURL != "" {
		n, err := s.refreshMetadataFeed(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}

	if _, err := s.repo.PruneInactiveTorNodes(7 * 24 * time.Hour); err != nil {
		s.log.Warn("refresh: pruning inactive tor nodes failed", "error", err.Error())
	}
	return total, nil
}

func (s *TorSource) refreshListFeed(ctx context.Context, url string) (int, error) {
	path, err := streamToTempFile(ctx, s.client, url, "tor-list-*.txt")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	var batch []refdata.TorExitNode
	total := 0
	now := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertTorNodes(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		gcHint()
		checkMemoryCeiling(s.log)
		return nil
	}

	err = scanLines(path, func(line string) error {
		ip := strings.TrimSpace(line)
		if ip == "" || strings.HasPrefix(ip, "#") {
			return nil
		}
		_, version, parseErr := ipcidr.Parse(ip)
		if parseErr != nil {
			return nil
		}
		batch = append(batch, refdata.TorExitNode{
			IP:         ip,
			IPVersion:  int(version),
			IsActive:   true,
			RiskWeight: 90,
			LastSeenAt: now,
		})
		if len(batch) >= torBatchSize {
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

func (s *TorSource) refreshMetadataFeed(ctx context.Context) (int, error) {
	page := 1
	total := 0
	now := time.Now()
	for {
		url := s.metadataURL
		if strings.Contains(url, "?") {
			url += "&page="
		} else {
			url += "?page="
		}
		url += strconv.Itoa(page)

		path, err := streamToTempFile(ctx, s.client, url, "tor-meta-*.json")
		if err != nil {
			return total, err
		}

		var entries []torExitListJSON
		raw, readErr := os.ReadFile(path)
		os.Remove(path)
		if readErr != nil {
			return total, readErr
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return total, err
		}
		if len(entries) == 0 {
			break
		}

		var batch []refdata.TorExitNode
		for _, e := range entries {
			for _, addr := range e.ExitAddresses {
				ip := addr
				if idx := strings.LastIndex(addr, ":"); idx > strings.LastIndex(addr, "]") {
					ip = addr[:idx]
				}
				ip = strings.Trim(ip, "[]")
				_, version, parseErr := ipcidr.Parse(ip)
				if parseErr != nil {
					continue
				}
				batch = append(batch, refdata.TorExitNode{
					IP:         ip,
					IPVersion:  int(version),
					NodeID:     e.Fingerprint,
					Nickname:   e.Nickname,
					IsActive:   true,
					RiskWeight: 90,
					LastSeenAt: now,
				})
			}
		}
		if len(batch) > 0 {
			if err := s.repo.UpsertTorNodes(batch); err != nil {
				return total, err
			}
			total += len(batch)
		}
		gcHint()
		checkMemoryCeiling(s.log)

		if len(entries) < torBatchSize {
			break
		}
		page++
	}
	return total, nil
}
