// Package main implements riskctl, the operator CLI for triggering
// Data-Source Refresh Pipeline jobs outside the HTTP admin surface
// (spec.md §6's `refresh` command).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/refresh"
	"fraud-risk-engine/pkg/config"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/utils"
)

func main() {
	source := flag.String("source", "", "refresh source: all|tor|disposable_emails|asn|user_agents")
	force := flag.Bool("force", false, "bypass the minimum-interval gate")
	// riskctl is a one-shot process, not a daemon, so a refresh always
	// runs to completion before it exits; -sync is accepted for
	// compatibility with the documented interface and otherwise unused.
	flag.Bool("sync", false, "wait for the refresh to complete before exiting (always true for this binary)")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "riskctl: -source is required (all|tor|disposable_emails|asn|user_agents)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "riskctl: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LogConfig{
		Level:       cfg.LogLevel,
		Format:      "json",
		ServiceName: "riskctl",
		Environment: cfg.Environment,
	})

	db, err := utils.SetupDatabase(cfg.DatabaseURL, &gorm.Config{}, cfg, log)
	if err != nil {
		log.Error("failed to set up database", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	repo := refdata.NewRepository(db)
	pipeline := buildPipeline(cfg, repo, log)

	ctx := context.Background()

	if *source == "all" {
		report := pipeline.RefreshAll(ctx, *force)
		ok := true
		for name, r := range report.PerSource {
			log.Info("refresh source completed", "source", name, "success", r.Success, "count", r.Count, "skipped", r.Skipped, "error", r.Error)
			if !r.Success {
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	r := pipeline.RefreshOne(ctx, *source, *force)
	log.Info("refresh source completed", "source", r.Source, "success", r.Success, "count", r.Count, "skipped", r.Skipped, "error", r.Error)
	if !r.Success {
		os.Exit(1)
	}
}

// buildPipeline registers the same four sources cmd/risk-engine wires,
// so riskctl and the HTTP admin surface refresh identically configured
// sources.
func buildPipeline(cfg *config.Config, repo *refdata.Repository, log *logger.Logger) *refresh.Pipeline {
	client := &http.Client{Timeout: 2 * time.Minute}

	pipeline := refresh.NewPipeline(log)
	pipeline.Register(refresh.NewTorSource(cfg.TorExitListURLs, cfg.TorMetadataURL, client, repo, log, cfg.RefreshIntervalTorNodes))

	var feeds []refresh.DisposableFeed
	for _, u := range cfg.DisposableTextFeedURLs {
		feeds = append(feeds, refresh.NewTextDisposableFeed(u))
	}
	for _, u := range cfg.DisposableJSONFeedURLs {
		feeds = append(feeds, refresh.NewJSONDisposableFeed(u))
	}
	pipeline.Register(refresh.NewDisposableDomainSource(feeds, client, repo, log, cfg.RefreshIntervalDisposable))
	pipeline.Register(refresh.NewASNSource(cfg.ASNMasterListURL, cfg.ASNIPRangesURL, client, repo, log, cfg.RefreshIntervalASN))
	curated := []refresh.CuratedPattern{
		{Literal: "curl/", Name: "curl", Type: refdata.UAScraper, Weight: 60},
		{Literal: "python-requests/", Name: "python-requests", Type: refdata.UAScraper, Weight: 60},
		{Literal: "PostmanRuntime/", Name: "postman", Type: refdata.UAScraper, Weight: 40},
		{Literal: "Googlebot", Name: "googlebot", Type: refdata.UABot, Weight: 10},
		{Literal: "bingbot", Name: "bingbot", Type: refdata.UABot, Weight: 10},
		{Literal: "HeadlessChrome", Name: "headless-chrome", Type: refdata.UAScraper, Weight: 70},
		{Literal: "PhantomJS", Name: "phantomjs", Type: refdata.UAScraper, Weight: 70},
		{Literal: "Scrapy/", Name: "scrapy", Type: refdata.UAScraper, Weight: 65},
	}
	pipeline.Register(refresh.NewUserAgentSource(cfg.UserAgentFeedURLs, curated, client, repo, log, cfg.RefreshIntervalUserAgents))

	return pipeline
}
