// Command seed fills the analytics store with synthetic route logs so the
// usage endpoints have something to show.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/store/model"
	"github.com/nulzo/openroute/internal/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	count := flag.Int("n", 200, "Number of route logs to create")
	days := flag.Int("days", 7, "Spread the logs over this many days")
	dbPath := flag.String("db", "", "SQLite path (default: database.path from config)")
	flag.Parse()

	if *days < 1 {
		*days = 1
	}

	path := *dbPath
	if path == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal(err)
		}
		path = cfg.Database.Path
	}

	repo, err := sqlite.NewSQLiteStorage(path, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	order := config.DefaultRoutingOrder

	succeeded := 0
	for i := 0; i < *count; i++ {
		entry := synthesize(rng, order, *days)
		if err := repo.Routes().Log(ctx, entry); err != nil {
			log.Fatalf("Failed to log route %d: %v", i, err)
		}
		if entry.Success {
			succeeded++
		}
	}

	fmt.Printf("Seeded %d route logs into %s (%d succeeded)\n", *count, path, succeeded)
}

// synthesize walks the order, failing each model with some probability, the
// same way the router would record it.
func synthesize(rng *rand.Rand, order []string, days int) *model.RouteLog {
	at := time.Now().UTC().Add(-time.Duration(rng.Int63n(int64(days) * int64(24*time.Hour))))

	entry := &model.RouteLog{
		ID:             uuid.New().String(),
		AppName:        []string{"cli", "web", "benchmark"}[rng.Intn(3)],
		APIKeyID:       "anonymous",
		RequestedModel: "auto",
		Candidates:     len(order),
		CreatedAt:      at,
	}

	for i, m := range order {
		latency := int64(50 + rng.Intn(1500))
		entry.LatencyMS += latency
		attempt := model.AttemptLog{Number: i + 1, Model: m, LatencyMS: latency, CreatedAt: at}
		entry.AttemptNumber = i + 1

		if rng.Float64() < 0.6 {
			attempt.Success = true
			entry.Attempts = append(entry.Attempts, attempt)
			entry.Success = true
			entry.ModelUsed = m
			entry.UpstreamID = "gen-" + uuid.New().String()[:8]
			entry.FinishReason = "stop"
			entry.InputTokens = 20 + rng.Intn(200)
			entry.OutputTokens = 10 + rng.Intn(400)
			return entry
		}

		attempt.Error = "upstream returned 503"
		entry.Attempts = append(entry.Attempts, attempt)
	}

	entry.Error = "All models failed to respond"
	return entry
}
