// Load generator for the redirect endpoint. Click recording is the only
// write-heavy path in the service, so this is where SQLite contention
// shows up first.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"
)

type runConfig struct {
	baseURL     string
	linkIDs     []string
	concurrency int
	duration    time.Duration
	rate        int
	timeout     time.Duration
}

type sample struct {
	latency time.Duration
	status  int
	err     error
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

var referrerPool = []string{
	"",
	"https://instagram.com/",
	"https://l.instagram.com/",
	"https://www.tiktok.com/",
	"https://t.co/abc123",
	"https://youtube.com/watch?v=xyz",
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "base URL of the running server")
	ids := flag.String("ids", "1", "comma-separated link IDs to hit")
	concurrency := flag.Int("c", 10, "number of concurrent clients")
	duration := flag.Duration("d", 30*time.Second, "test duration")
	rate := flag.Int("rate", 0, "target requests per second (0 = unlimited)")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	cfg := runConfig{
		baseURL:     strings.TrimRight(*baseURL, "/"),
		linkIDs:     strings.Split(*ids, ","),
		concurrency: *concurrency,
		duration:    *duration,
		rate:        *rate,
		timeout:     *timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.duration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fmt.Printf("Hitting %s/r/{%s} with %d clients for %v\n",
		cfg.baseURL, strings.Join(cfg.linkIDs, ","), cfg.concurrency, cfg.duration)

	start := time.Now()
	samples := run(ctx, cfg)
	report(samples, time.Since(start))
}

func run(ctx context.Context, cfg runConfig) []sample {
	results := make(chan sample, cfg.concurrency*10)
	var wg sync.WaitGroup
	var sent int64

	perWorkerInterval := time.Duration(0)
	if cfg.rate > 0 {
		perWorkerInterval = time.Duration(float64(time.Second) * float64(cfg.concurrency) / float64(cfg.rate))
	}

	for i := 0; i < cfg.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: cfg.timeout,
				// redirects themselves are the response under test
				CheckRedirect: func(*http.Request, []*http.Request) error {
					return http.ErrUseLastResponse
				},
			}
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			var ticker *time.Ticker
			if perWorkerInterval > 0 {
				ticker = time.NewTicker(perWorkerInterval)
				defer ticker.Stop()
			}

			for {
				if ticker != nil {
					select {
					case <-ticker.C:
					case <-ctx.Done():
						return
					}
				} else if ctx.Err() != nil {
					return
				}
				results <- hit(client, cfg, rng)
				atomic.AddInt64(&sent, 1)
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var samples []sample
	for s := range results {
		samples = append(samples, s)
	}
	return samples
}

func hit(client *http.Client, cfg runConfig, rng *rand.Rand) sample {
	linkID := cfg.linkIDs[rng.Intn(len(cfg.linkIDs))]
	url := fmt.Sprintf("%s/r/%s?utm_source=perftest", cfg.baseURL, strings.TrimSpace(linkID))

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return sample{err: err}
	}
	req.Header.Set("User-Agent", userAgents[rng.Intn(len(userAgents))])
	// spread fingerprints so visitor queries have something to chew on
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", rng.Intn(254)+1))
	if ref := referrerPool[rng.Intn(len(referrerPool))]; ref != "" {
		req.Header.Set("Referer", ref)
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return sample{latency: latency, err: err}
	}
	resp.Body.Close()
	return sample{latency: latency, status: resp.StatusCode}
}

func report(samples []sample, elapsed time.Duration) {
	if len(samples) == 0 {
		fmt.Println("no requests completed")
		return
	}

	var ok, failed int64
	statusCodes := make(map[int]int64)
	latencies := make([]time.Duration, 0, len(samples))
	var total time.Duration

	for _, s := range samples {
		if s.err != nil {
			failed++
			continue
		}
		statusCodes[s.status]++
		latencies = append(latencies, s.latency)
		total += s.latency
		if s.status == http.StatusFound {
			ok++
		} else {
			failed++
		}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	percentile := func(p float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		idx := int(float64(len(latencies)) * p)
		if idx >= len(latencies) {
			idx = len(latencies) - 1
		}
		return latencies[idx]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\nMETRIC\tVALUE\n")
	fmt.Fprintf(w, "Total requests\t%d\n", len(samples))
	fmt.Fprintf(w, "Redirects (302)\t%d\n", ok)
	fmt.Fprintf(w, "Failures\t%d\n", failed)
	fmt.Fprintf(w, "Throughput\t%.1f req/s\n", float64(len(samples))/elapsed.Seconds())
	if len(latencies) > 0 {
		fmt.Fprintf(w, "Avg latency\t%v\n", total/time.Duration(len(latencies)))
		fmt.Fprintf(w, "p50\t%v\n", percentile(0.50))
		fmt.Fprintf(w, "p95\t%v\n", percentile(0.95))
		fmt.Fprintf(w, "p99\t%v\n", percentile(0.99))
	}
	w.Flush()

	if len(statusCodes) > 0 {
		var codes []int
		for code := range statusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		fmt.Fprintf(w, "\nSTATUS\tCOUNT\n")
		for _, code := range codes {
			fmt.Fprintf(w, "%d\t%d\n", code, statusCodes[code])
		}
		w.Flush()
	}
}
