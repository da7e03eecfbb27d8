package node

import (
	"context"
	"sync"
	"time"

	"github.com/proofofimpact/poi/internal/chain"
)

// Pinger is the part of chain.ThorClient the benchmark needs.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, uint64, error)
}

// Dial builds the Pinger for a URL. Tests swap it out.
var Dial = func(url string) Pinger { return chain.NewThorClient(url) }

// BenchmarkResult holds the result of a single node benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Benchmark pings all node URLs in parallel and returns results in input order.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := Dial(u).Ping(ctx)
			results[idx] = BenchmarkResult{
				URL:         u,
				Latency:     latency,
				BlockNumber: block,
				Err:         err,
			}
		}(i, url)
	}

	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best benchmarks urls and returns the winner under algo. A single URL is
// returned without pinging; an empty list yields ErrNoHealthyNode.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyNode
	case 1:
		return urls[0], nil
	}
	if algo == "" {
		algo = AlgorithmFastest
	}

	if algo == AlgorithmFailover {
		// Failover walks the list in order and stops at the first live node.
		for _, u := range urls {
			if _, _, err := Dial(u).Ping(ctx); err == nil {
				return u, nil
			}
		}
		return "", ErrNoHealthyNode
	}

	winner, err := NewPicker(algo).Pick(ResultsToEndpoints(Benchmark(ctx, urls)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
