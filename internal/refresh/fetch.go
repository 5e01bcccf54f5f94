package refresh

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
)

// memoryCeilingFraction is the advisory limit spec.md §4.9 step 3
// describes, as a fraction of the process memory limit: a refresh job
// logs at warning level when the process's live heap crosses it, rather
// than aborting mid-run.
const memoryCeilingFraction = 0.8

// streamToTempFile GETs url and copies the response body to a temporary
// file without holding it in memory, so a feed with a million lines
// never requires a million-line buffer. The caller is responsible for
// removing the returned path.
func streamToTempFile(ctx context.Context, client *http.Client, url, pattern string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("refresh: building request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh: fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("refresh: creating temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("refresh: streaming %s to disk: %w", url, err)
	}
	return tmp.Name(), nil
}

// scanLines opens path and invokes fn once per line, blank lines
// included, skipping nothing itself — callers apply their own comment/blank-line rules.
func scanLines(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("refresh: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// checkMemoryCeiling logs a warning if live heap usage has crossed the
// advisory ceiling, per spec.md §4.9 step 3. It never aborts the run —
// the ceiling is observability, not a hard limit.
func checkMemoryCeiling(log interface{ Warn(string, ...any) }) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 {
		return
	}
	if float64(stats.HeapAlloc) > float64(limit)*memoryCeilingFraction {
		log.Warn("refresh: heap usage crossed advisory ceiling", "heap_alloc", stats.HeapAlloc, "limit", limit)
	}
}

// gcHint runs a GC cycle between batches, per spec.md §4.9 step 3's
// "trigger a GC hint between batches" directive for memory-bounded
// streaming of very large feeds.
func gcHint() {
	runtime.GC()
}
