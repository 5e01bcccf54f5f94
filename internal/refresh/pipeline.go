// Package refresh implements the Data-Source Refresh Pipeline (C9): one
// job per external feed, each streaming its source to a bounded-memory
// temporary file, parsing and validating line-by-line, and upserting in
// batches into the Reference Data Layer. Jobs are serialized per source
// and refuse to re-run before their configured minimum interval unless
// explicitly forced.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fraud-risk-engine/pkg/logger"
)

// Report is the outcome of a single source's refresh attempt.
type Report struct {
	Source  string `json:"source"`
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// RunReport aggregates the per-source reports from one invocation of
// RefreshDataSource("all") or a single named source.
type RunReport struct {
	PerSource map[string]Report `json:"per_source"`
	Total     int               `json:"total"`
}

// Source is a single refresh job: one Tor feed set, one disposable-
// domain feed set, the ASN master list, or the known-user-agent feed.
type Source interface {
	Name() string
	MinInterval() time.Duration
	Refresh(ctx context.Context) (count int, err error)
}

// Pipeline orchestrates every registered Source: interval gating,
// per-source serialization, and retry-with-backoff on job-global
// failure.
type Pipeline struct {
	mu      sync.Mutex
	sources map[string]Source
	running map[string]bool
	lastRun map[string]time.Time
	log     *logger.Logger

	maxAttempts int
	backoff     time.Duration
}

// NewPipeline builds a Pipeline with no registered sources; call
// Register for each one.
func NewPipeline(log *logger.Logger) *Pipeline {
	return &Pipeline{
		sources:     map[string]Source{},
		running:     map[string]bool{},
		lastRun:     map[string]time.Time{},
		log:         log,
		maxAttempts: 2,
		backoff:     2 * time.Second,
	}
}

// Register adds a Source under its own name.
func (p *Pipeline) Register(s Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[s.Name()] = s
}

// RefreshOne runs a single named source, honoring the minimum-interval
// gate unless force is set, and serializing against a concurrent
// refresh of the same source (the second caller gets skipped:true
// immediately rather than blocking).
func (p *Pipeline) RefreshOne(ctx context.Context, name string, force bool) Report {
	p.mu.Lock()
	src, ok := p.sources[name]
	if !ok {
		p.mu.Unlock()
		return Report{Source: name, Success: false, Error: "unknown source"}
	}
	if p.running[name] {
		p.mu.Unlock()
		return Report{Source: name, Success: true, Skipped: true}
	}
	if !force {
		if last, seen := p.lastRun[name]; seen && time.Since(last) < src.MinInterval() {
			p.mu.Unlock()
			return Report{Source: name, Success: true, Skipped: true}
		}
	}
	p.running[name] = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running[name] = false
		p.lastRun[name] = time.Now()
		p.mu.Unlock()
	}()

	count, err := p.runWithRetry(ctx, src)
	if err != nil {
		p.log.WarnCtx(ctx, "refresh job failed", "source", name, "error", err.Error())
		return Report{Source: name, Success: false, Error: err.Error()}
	}
	p.log.InfoCtx(ctx, "refresh job completed", "source", name, "count", count)
	return Report{Source: name, Success: true, Count: count}
}

func (p *Pipeline) runWithRetry(ctx context.Context, src Source) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		count, err := src.Refresh(ctx)
		if err == nil {
			return count, nil
		}
		lastErr = err
		if attempt < p.maxAttempts {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(p.backoff * time.Duration(attempt)):
			}
		}
	}
	return 0, fmt.Errorf("refresh: %s failed after %d attempts: %w", src.Name(), p.maxAttempts, lastErr)
}

// RefreshAll runs every registered source and aggregates the reports.
// A failure in one source does not stop the others from running.
func (p *Pipeline) RefreshAll(ctx context.Context, force bool) RunReport {
	p.mu.Lock()
	names := make([]string, 0, len(p.sources))
	for name := range p.sources {
		names = append(names, name)
	}
	p.mu.Unlock()

	run := RunReport{PerSource: make(map[string]Report, len(names))}
	for _, name := range names {
		report := p.RefreshOne(ctx, name, force)
		run.PerSource[name] = report
		run.Total += report.Count
	}
	return run
}
