package main

import (
	"context"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/pkg/confluence"
	"leadscout-be/pkg/exa"

	"github.com/fatih/color"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Connectivity probe for every external dependency the backend talks to.
// Run it against a fresh environment before starting the server.
func main() {
	color.Cyan("🚀 LeadScout connectivity probe\n")
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Redis
	color.Yellow("\n[1] Redis (%s)", cfg.App.RedisURL)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if pong, err := rdb.Ping(ctx).Result(); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("OK: %s", pong)
	}

	// 2. NATS
	color.Yellow("\n[2] NATS (%s)", cfg.App.NatsURL)
	if nc, err := nats.Connect(cfg.App.NatsURL); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("OK: connected to %s", nc.ConnectedServerName())
		nc.Close()
	}

	// 3. Exa search
	color.Yellow("\n[3] Exa API")
	if cfg.Exa.APIKey == "" {
		color.Red("Skipped: EXA_API_KEY not set")
	} else {
		client := exa.NewClient(cfg.Exa.APIKey, exa.SyncRetryPolicy())
		req := exa.SearchRequest{Query: "golang", NumResults: 1, Category: exa.CategoryCompany}
		if results, err := client.Search(ctx, req); err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("OK: %d result(s)", len(results))
		}
	}

	// 4. Confluence
	color.Yellow("\n[4] Confluence (%s)", cfg.Atlassian.BaseURL)
	if cfg.Atlassian.BaseURL == "" {
		color.Red("Skipped: ATLASSIAN_BASE_URL not set")
	} else {
		wiki := confluence.NewClient(cfg.Atlassian.BaseURL, cfg.Atlassian.Email, cfg.Atlassian.APIToken)
		if spaces, err := wiki.ListSpaces(ctx); err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("OK: %d space(s) visible", len(spaces))
		}
	}

	color.Cyan("\nDone.")
}
