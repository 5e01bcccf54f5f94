package refresh

import (
	"bufio"
	"compress/gzip"
	"context"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/pkg/logger"
)

const asnBatchSize = 1000

// asnLinePattern matches spec.md §6's ASN master-list line format:
// "<asn> <ISO-3166 country code> <organization>".
var asnLinePattern = regexp.MustCompile(`^(\d+)\s+([A-Z]{2})\s+(.+)$`)

// ASNSource refreshes the asns table from a plain-text master list and,
// optionally, a gzip-compressed IP-range file that supplements each
// ASN's IPRanges.
type ASNSource struct {
	masterListURL string
	ipRangesURL   string
	client        *http.Client
	repo          *refdata.Repository
	log           *logger.Logger
	minInterval   time.Duration
}

// NewASNSource builds an ASNSource. ipRangesURL may be empty, in which
// case ASN rows are upserted without IPRanges populated.
func NewASNSource(masterListURL, ipRangesURL string, client *http.Client, repo *refdata.Repository, log *logger.Logger, minInterval time.Duration) *ASNSource {
	return &ASNSource{masterListURL: masterListURL, ipRangesURL: ipRangesURL, client: client, repo: repo, log: log, minInterval: minInterval}
}

func (s *ASNSource) Name() string               { return "asn" }
func (s *ASNSource) MinInterval() time.Duration { return s.minInterval }

func (s *ASNSource) Refresh(ctx context.Context) (int, error) {
	cutoff := time.Now()
	if err := s.repo.DeactivateStaleASNs(cutoff); err != nil {
		return 0, err
	}

	ranges, err := s.fetchIPRanges(ctx)
	if err != nil {
		s.log.Warn("refresh: asn ip-range file unavailable, continuing without it", "error", err.Error())
		ranges = nil
	}

	total, err := s.refreshMasterList(ctx, ranges)
	if err != nil {
		return total, err
	}

	if _, err := s.repo.PruneInactiveASNs(7 * 24 * time.Hour); err != nil {
		s.log.Warn("refresh: pruning inactive asns failed", "error", err.Error())
	}
	return total, nil
}

func (s *ASNSource) refreshMasterList(ctx context.Context, ranges map[int64][]string) (int, error) {
	path, err := streamToTempFile(ctx, s.client, s.masterListURL, "asn-master-*.txt")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	var batch []refdata.ASN
	total := 0
	now := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertASNs(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		gcHint()
		checkMemoryCeiling(s.log)
		return nil
	}

	err = scanLines(path, func(line string) error {
		match := asnLinePattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			return nil
		}
		number, convErr := strconv.ParseInt(match[1], 10, 64)
		if convErr != nil {
			return nil
		}
		batch = append(batch, refdata.ASN{
			Number:       number,
			CountryCode:  match[2],
			Organization: match[3],
			Type:         classifyASNOrganization(match[3]),
			IPRanges:     refdata.JSONStringSlice(ranges[number]),
			IsActive:     true,
			LastSeenAt:   now,
		})
		if len(batch) >= asnBatchSize {
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

// fetchIPRanges reads the optional gzip-compressed supplemental file,
// shaped as "<asn>\t<cidr>" per line, into a map keyed by ASN number.
func (s *ASNSource) fetchIPRanges(ctx context.Context) (map[int64][]string, error) {
	if s.ipRangesURL == "" {
		return nil, nil
	}
	path, err := streamToTempFile(ctx, s.client, s.ipRangesURL, "asn-ranges-*.gz")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	ranges := map[int64][]string{}
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		number, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		ranges[number] = append(ranges[number], fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ranges, nil
}

// classifyASNOrganization applies a coarse keyword heuristic to the
// organization name for the common hosting/education/government cases;
// anything else is left unknown for an operator to classify explicitly
// via the admin surface.
func classifyASNOrganization(org string) refdata.ASNType {
	lower := strings.ToLower(org)
	switch {
	case strings.Contains(lower, "hosting"), strings.Contains(lower, "cloud"), strings.Contains(lower, "datacenter"), strings.Contains(lower, "data center"), strings.Contains(lower, "vps"):
		return refdata.ASNDatacenter
	case strings.Contains(lower, "university"), strings.Contains(lower, "college"), strings.Contains(lower, "school"):
		return refdata.ASNEducation
	case strings.Contains(lower, "government"), strings.Contains(lower, "ministry"), strings.Contains(lower, "federal"):
		return refdata.ASNGovernment
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "wireless"), strings.Contains(lower, "cellular"):
		return refdata.ASNMobile
	default:
		return refdata.ASNUnknown
	}
}
