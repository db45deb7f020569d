package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"organism/pkg/models"
	"organism/pkg/server"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/errgroup"
)

const (
	defaultServerURL   = "http://127.0.0.1:8080"
	defaultRequests    = 20
	defaultParallel    = 5
	defaultHTTPTimeout = 10 * time.Second

	separatorLineLength = 60
)

type checkConfig struct {
	serverURL   string
	requests    int
	parallel    int
	httpTimeout time.Duration
}

// checkResult is the outcome of one GET /api/organism-status.
type checkResult struct {
	Duration time.Duration
	Status   int
	Sources  string
	Err      error
}

// summary aggregates check results.
type summary struct {
	mu        sync.Mutex
	results   []checkResult
	bySources map[string]int
}

func newSummary() *summary {
	return &summary{bySources: make(map[string]int)}
}

func (s *summary) add(r checkResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	if r.Err == nil {
		s.bySources[r.Sources]++
	}
}

func (s *summary) failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := 0
	for _, r := range s.results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

// percentile returns the p-th latency percentile of successful checks.
func (s *summary) percentile(p float64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make([]time.Duration, 0, len(s.results))
	for _, r := range s.results {
		if r.Err == nil {
			durations = append(durations, r.Duration)
		}
	}
	if len(durations) == 0 {
		return 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	idx := int(p * float64(len(durations)-1))
	return durations[idx]
}

func (s *summary) print(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", separatorLineLength))
	fmt.Fprintf(w, "Requests: %d  Failures: %d\n", len(s.results), s.failures())
	fmt.Fprintf(w, "Latency p50: %v  p95: %v  max: %v\n", s.percentile(0.5), s.percentile(0.95), s.percentile(1))

	keys := make([]string, 0, len(s.bySources))
	for k := range s.bySources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-32s %d\n", k, s.bySources[k])
	}
	fmt.Fprintln(w, strings.Repeat("=", separatorLineLength))
}

// validatePayload checks the invariants every 200 response must hold.
func validatePayload(body []byte) error {
	var status models.OrganismStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	switch {
	case status.Status != models.StatusAlive:
		return fmt.Errorf("unexpected status %q", status.Status)
	case len(status.Nodes) != 5:
		return fmt.Errorf("expected 5 nodes, got %d", len(status.Nodes))
	case len(status.Metrics) != 4:
		return fmt.Errorf("expected 4 metrics, got %d", len(status.Metrics))
	case len(status.Debates) == 0 || len(status.Debates) > 3:
		return fmt.Errorf("debates length %d out of range", len(status.Debates))
	case status.LastUpdate == "":
		return errors.New("lastUpdate missing")
	}

	fulqrum, ok := status.Metrics["Fulqrum"]
	if !ok {
		return errors.New("metric Fulqrum missing")
	}
	wantActivity, wantTrend := 0.8, models.TrendUp
	if fulqrum.Value == "0" {
		wantActivity, wantTrend = 0.3, models.TrendStable
	}
	for _, node := range status.Nodes {
		if node.ID == "fulqrum" && node.Activity != wantActivity {
			return fmt.Errorf("fulqrum activity %v, want %v", node.Activity, wantActivity)
		}
	}
	if fulqrum.Trend != wantTrend {
		return fmt.Errorf("fulqrum trend %q, want %q", fulqrum.Trend, wantTrend)
	}

	return nil
}

func check(ctx context.Context, client *http.Client, target string) checkResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return checkResult{Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return checkResult{Duration: time.Since(start), Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	result := checkResult{
		Duration: time.Since(start),
		Status:   resp.StatusCode,
		Sources:  resp.Header.Get(server.SourcesHeader),
	}
	if err != nil {
		result.Err = fmt.Errorf("read response: %w", err)
		return result
	}
	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Errorf("request returned %s: %s", resp.Status, string(body))
		return result
	}
	result.Err = validatePayload(body)
	return result
}

func run(ctx context.Context, cfg checkConfig, out io.Writer) (*summary, error) {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = cfg.httpTimeout
	target := strings.TrimRight(cfg.serverURL, "/") + "/api/organism-status"

	results := newSummary()
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.parallel)

	for i := 0; i < cfg.requests; i++ {
		group.Go(func() error {
			r := check(groupCtx, client, target)
			results.add(r)
			if r.Err != nil {
				fmt.Fprintf(out, "check failed: %v\n", r.Err)
			}
			return nil
		})
	}
	_ = group.Wait()

	if failed := results.failures(); failed > 0 {
		return results, fmt.Errorf("%d of %d checks failed", failed, cfg.requests)
	}
	return results, nil
}

func main() {
	var cfg checkConfig
	flag.StringVar(&cfg.serverURL, "server", defaultServerURL, "Organism server base URL")
	flag.IntVar(&cfg.requests, "requests", defaultRequests, "Number of requests to issue")
	flag.IntVar(&cfg.parallel, "parallel", defaultParallel, "Number of concurrent requests")
	flag.DurationVar(&cfg.httpTimeout, "http-timeout", defaultHTTPTimeout, "HTTP client timeout")
	flag.Parse()

	if cfg.requests < 1 {
		cfg.requests = 1
	}
	if cfg.parallel < 1 {
		cfg.parallel = 1
	}

	results, err := run(context.Background(), cfg, os.Stderr)
	results.print(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "organism-check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("All checks returned a valid organism status")
}
