// Command benchmark load tests the router against a mock upstream whose
// first models always fail, so every request walks part of the fallback chain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nulzo/openroute/internal/app"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/platform/logger"
	"github.com/nulzo/openroute/internal/server"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var benchModels = []string{"bench/down-1", "bench/down-2", "bench/ok"}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	failing := flag.Int("failing", 2, "How many models at the head of the chain fail")
	retryDelay := flag.Duration("retry-delay", 0, "Delay between fallback attempts")
	upstreamLatency := flag.Duration("upstream-latency", 10*time.Millisecond, "Latency of a successful upstream call")
	flag.Parse()

	if *failing < 0 || *failing >= len(benchModels) {
		log.Fatalf("-failing must be between 0 and %d", len(benchModels)-1)
	}

	var upstreamCalls atomic.Int64
	mock := httptest.NewServer(mockUpstream(benchModels[:*failing], *upstreamLatency, &upstreamCalls))
	defer mock.Close()

	configFile, err := writeConfig(mock.URL, *retryDelay)
	if err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	defer os.Remove(configFile)
	os.Setenv("CONFIG_FILE", configFile)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Initialize(logger.Config{Level: "error", Format: "console"})
	zl := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, zl, app.Options{SkipHealth: true})
	if err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer a.Close()

	srv := httptest.NewServer(server.New(cfg, zl, a.Service, a.Analytics, "bench").Handler())
	defer srv.Close()

	fmt.Printf("Running benchmark: %s duration, %d req/s, %d failing models, %s retry delay\n",
		*duration, *rate, *failing, *retryDelay)

	body := []byte(`{"messages": [{"role": "user", "content": "Hello"}]}`)
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodPost,
		URL:    srv.URL + "/v1/chat/completions",
		Body:   body,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
			"X-App-Name":   []string{"benchmark"},
		},
	})

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true), vegeta.Timeout(30*time.Second))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	if metrics.Requests > 0 {
		fmt.Printf("Upstream calls:  %.2f per request\n", float64(upstreamCalls.Load())/float64(metrics.Requests))
	}
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")

		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if len(seen) == 5 {
				break
			}
			if !seen[msg] {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}
}

// mockUpstream serves an OpenAI-compatible API where every model in down
// answers 503.
func mockUpstream(down []string, latency time.Duration, calls *atomic.Int64) http.Handler {
	failing := make(map[string]bool, len(down))
	for _, m := range down {
		failing[m] = true
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		data := make([]map[string]string, 0, len(benchModels))
		for _, m := range benchModels {
			data = append(data, map[string]string{"id": m, "name": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	})

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if failing[req.Model] {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","code":503}}`))
			return
		}

		time.Sleep(latency)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "bench-123",
			"model": req.Model,
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Hello"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6},
		})
	})

	return mux
}

func writeConfig(upstream string, retryDelay time.Duration) (string, error) {
	f, err := os.CreateTemp("", "openroute-bench-*.yaml")
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, benchConfig, retryDelay, strings.Join(quoted(benchModels), ", "), upstream)
	return f.Name(), err
}

func quoted(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

const benchConfig = `
server:
  port: "0"
  env: production
rate_limit:
  requests_per_second: 0
log:
  level: "error"
router:
  provider: mock
  retry_delay: %s
  timeout: 10s
  default_order: [%s]
providers:
  - id: mock
    type: openai
    name: Mock
    api_key: "mock-key"
    base_url: "%s"
    enabled: true
`
