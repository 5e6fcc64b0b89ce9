package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/handler"
)

// Query is one request shape in the rotation.
type Query struct {
	Ingredients string `yaml:"ingredients"`
	Keywords    string `yaml:"keywords"`
	Mode        string `yaml:"mode"`
	FullRecords bool   `yaml:"full_records"`
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	K           int
	Queries     []Query
}

var defaultQueries = []Query{
	{Ingredients: "chicken, garlic, lemon"},
	{Ingredients: "eggs, flour, sugar, butter", Keywords: "cake"},
	{Keywords: "quick weeknight pasta"},
	{Ingredients: "tomato, basil, mozzarella", Mode: "rrf"},
	{Ingredients: "beef, onion", Keywords: "slow cooker stew", Mode: "rrf"},
	{Ingredients: "rice, soy sauce, ginger", Keywords: "stir fry"},
	{Keywords: "vegetarian curry", FullRecords: true},
	{Ingredients: "potato, cheddar cheese, bacon"},
	{Ingredients: "salmon, dill", Keywords: "baked", Mode: "rrf"},
	{Keywords: "chocolate chip cookies"},
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	emptyResults  atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, results int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
		if results == 0 {
			s.emptyResults.Add(1)
		}
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func main() {
	flags := pflag.NewFlagSet("recipe-loadtest", pflag.ExitOnError)
	baseURL := flags.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flags.IntP("concurrency", "n", 10, "number of concurrent workers")
	duration := flags.DurationP("duration", "d", 30*time.Second, "test duration")
	k := flags.IntP("k", "k", 10, "results requested per search")
	queryFile := flags.String("queries", "", "YAML file with a list of queries to rotate through")
	flags.Parse(os.Args[1:])

	queries := defaultQueries
	if *queryFile != "" {
		loaded, err := loadQueries(*queryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load queries: %v\n", err)
			os.Exit(1)
		}
		queries = loaded
	}

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: max(*concurrency, 1),
		Duration:    *duration,
		K:           *k,
		Queries:     queries,
	}

	fmt.Println("=== Recipe Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func loadQueries(path string) ([]Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var queries []Query
	if err := yaml.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%s contains no queries", path)
	}
	return queries, nil
}

func requestBody(q Query, k int) []byte {
	body := handler.SearchRequest{
		Ingredients: q.Ingredients,
		Keywords:    q.Keywords,
		K:           &k,
		Type:        q.Mode,
		FullRecords: q.FullRecords,
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("encoding request: %v", err))
	}
	return data
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	bodies := make([][]byte, len(cfg.Queries))
	for i, q := range cfg.Queries {
		bodies[i] = requestBody(q, cfg.K)
	}
	searchURL := cfg.BaseURL + "/api/v1/search"

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	fmt.Print("Running")
	var g errgroup.Group
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				body := bodies[i%len(bodies)]
				start := time.Now()
				status, results, err := search(ctx, client, searchURL, body)
				if ctx.Err() != nil {
					return nil
				}
				stats.RecordRequest(time.Since(start), status, results, err)
			}
			return nil
		})
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	g.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func search(ctx context.Context, client *http.Client, url string, body []byte) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, 0, nil
	}
	var out handler.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, 0, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, len(out.Results), nil
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Empty Results:   %d\n", stats.emptyResults.Load())
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		rps := float64(total) / duration.Seconds()
		fmt.Printf("Requests/sec:    %.2f\n", rps)
	}

	stats.latenciesMu.Lock()
	latencies := slices.Clone(stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		slices.Sort(latencies)

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[min(max(idx, 0), len(sorted)-1)]
}
