// Package main wires together the fraud risk evaluation engine: the
// Reference Data Layer, the six Checks and their collaborators, the
// Weighted Risk Scorer, the Evaluator that orchestrates them, the
// Data-Source Refresh Pipeline, and the HTTP surface spec.md §6
// describes, behind a single consolidated service.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"fraud-risk-engine/internal/checks"
	"fraud-risk-engine/internal/hasher"
	"fraud-risk-engine/internal/httpapi"
	"fraud-risk-engine/internal/refdata"
	"fraud-risk-engine/internal/refresh"
	"fraud-risk-engine/internal/riskengine"
	"fraud-risk-engine/internal/scoring"
	"fraud-risk-engine/internal/vault"
	"fraud-risk-engine/internal/velocity"
	"fraud-risk-engine/pkg/auth"
	"fraud-risk-engine/pkg/config"
	"fraud-risk-engine/pkg/health"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/messaging"
	"fraud-risk-engine/pkg/utils"
)

// maskPassword obscures password information in database URLs for
// secure logging.
func maskPassword(databaseURL string) string {
	re := regexp.MustCompile(`password=([^&\s]+)`)
	return re.ReplaceAllString(databaseURL, "password=***")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.LogConfig{
		Level:       cfg.LogLevel,
		Format:      "json",
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})

	log.Info("Starting fraud risk evaluation engine...",
		"database_url", maskPassword(cfg.DatabaseURL),
		"port", cfg.Port)

	db, err := utils.SetupDatabase(cfg.DatabaseURL, &gorm.Config{}, cfg, log)
	if err != nil {
		log.Fatalf("failed to set up database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get underlying SQL DB: %v", err)
	}
	defer sqlDB.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	h, err := hasher.New(cfg.HasherKey)
	if err != nil {
		log.Fatalf("failed to build hasher: %v", err)
	}
	v, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("failed to build vault: %v", err)
	}

	repo := refdata.NewRepository(db)
	cache := refdata.NewCache(redisClient)
	auditRepo := refdata.NewAuditRepository(db)
	counters := velocity.New(redisClient)

	rabbit, err := messaging.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer rabbit.Close()
	if err := rabbit.DeclareQueue("risk.detected"); err != nil {
		log.Fatalf("failed to declare risk.detected queue: %v", err)
	}

	referenceAdapter := riskengine.NewReferenceAdapter(repo, cache, auditRepo)
	velocityAdapter := riskengine.NewVelocityAdapter(counters)
	hasherAdapter := riskengine.NewHasherAdapter(h)
	bins := riskengine.NewBINClassifier()

	collab := checks.NewCollaborators(checks.CollaboratorConfig{
		DomainAgeURL:   cfg.DomainAgeServiceURL,
		GeolocationURL: cfg.GeolocationServiceURL,
		ASNLookupURL:   cfg.ASNLookupServiceURL,
		HTTPTimeout:    cfg.CollaboratorTimeout,
	}, log)

	var checksList []checks.Check
	if cfg.CheckEmailEnabled {
		checksList = append(checksList, checks.NewEmailCheck(hasherAdapter, referenceAdapter, collab))
	}
	if cfg.CheckDomainEnabled {
		checksList = append(checksList, checks.NewDomainCheck(hasherAdapter, referenceAdapter, collab))
	}
	if cfg.CheckIPEnabled {
		checksList = append(checksList, checks.NewIPCheck(hasherAdapter, referenceAdapter, collab, velocityAdapter))
	}
	if cfg.CheckCreditCardEnabled {
		checksList = append(checksList, checks.NewCreditCardCheck(hasherAdapter, referenceAdapter, velocityAdapter, bins))
	}
	if cfg.CheckPhoneEnabled {
		checksList = append(checksList, checks.NewPhoneCheck(hasherAdapter, referenceAdapter, velocityAdapter, cfg.DisposablePhonePrefixes))
	}
	if cfg.CheckUserAgentEnabled {
		checksList = append(checksList, checks.NewUserAgentCheck(referenceAdapter, velocityAdapter))
	}

	evaluator := riskengine.NewEvaluator(riskengine.Config{
		Checks: checksList,
		Thresholds: scoring.Thresholds{
			ManualReview: cfg.DecisionManualReview,
			AutoBlock:    cfg.DecisionAutoBlock,
		},
		Hasher:   h,
		Vault:    v,
		Audit:    auditRepo,
		MQ:       rabbit,
		Log:      log,
		Deadline: cfg.EvaluationDeadline,
	})

	pipeline := buildRefreshPipeline(cfg, repo, log)

	authMiddleware := auth.NewAuthMiddleware(auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration, cfg.JWTIssuer))

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Evaluate:       httpapi.NewEvaluateHandler(evaluator, log),
		Admin:          httpapi.NewAdminHandler(repo, h, pipeline, log),
		Auth:           authMiddleware,
		AllowedOrigins: cfg.AllowedOrigins,
		Logging: httpapi.NewLoggingMiddleware(httpapi.LoggingMiddlewareConfig{
			Log:       log,
			SkipPaths: []string{"/health"},
		}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("risk engine HTTP API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve HTTP: %v", err)
		}
	}()

	grpcServer, grpcListener := startHealthServer(cfg, log)
	go func() {
		log.Info("risk engine health endpoint listening", "port", cfg.GRPCHealthPort)
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatalf("failed to serve gRPC health: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Warn("shutting down risk engine...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful HTTP shutdown failed", err)
	}
	grpcServer.GracefulStop()
}

// buildRefreshPipeline registers the four Data-Source Refresh Pipeline
// sources spec.md §4.9 describes against their configured feed URLs and
// minimum intervals. A source with no feed URLs configured is still
// registered — Refresh simply does nothing, which keeps "refresh all"
// safe to call in every environment.
func buildRefreshPipeline(cfg *config.Config, repo *refdata.Repository, log *logger.Logger) *refresh.Pipeline {
	client := &http.Client{Timeout: 2 * time.Minute}

	pipeline := refresh.NewPipeline(log)
	pipeline.Register(refresh.NewTorSource(cfg.TorExitListURLs, cfg.TorMetadataURL, client, repo, log, cfg.RefreshIntervalTorNodes))
	pipeline.Register(refresh.NewDisposableDomainSource(disposableFeeds(cfg), client, repo, log, cfg.RefreshIntervalDisposable))
	pipeline.Register(refresh.NewASNSource(cfg.ASNMasterListURL, cfg.ASNIPRangesURL, client, repo, log, cfg.RefreshIntervalASN))
	pipeline.Register(refresh.NewUserAgentSource(cfg.UserAgentFeedURLs, curatedUserAgents(), client, repo, log, cfg.RefreshIntervalUserAgents))

	return pipeline
}

// disposableFeeds builds the Disposable Domain source's feed list from
// the configured text and JSON feed URLs.
func disposableFeeds(cfg *config.Config) []refresh.DisposableFeed {
	var feeds []refresh.DisposableFeed
	for _, u := range cfg.DisposableTextFeedURLs {
		feeds = append(feeds, refresh.NewTextDisposableFeed(u))
	}
	for _, u := range cfg.DisposableJSONFeedURLs {
		feeds = append(feeds, refresh.NewJSONDisposableFeed(u))
	}
	return feeds
}

// startHealthServer builds the liveness-only gRPC health server kept
// narrowly for orchestration compatibility (spec.md's consolidated HTTP
// service replaces the teacher's gRPC service mesh everywhere else).
func startHealthServer(cfg *config.Config, log *logger.Logger) (*grpc.Server, net.Listener) {
	lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
	if err != nil {
		log.Fatalf("failed to listen for health checks: %v", err)
	}
	s := grpc.NewServer()
	health.RegisterHealthServiceWithDefaults(s, "risk.RiskEngine")
	return s, lis
}

// curatedUserAgents seeds the known-bot/automation-tool patterns spec.md
// §4.2's User-Agent Check relies on beyond whatever an operator's feed
// supplies.
func curatedUserAgents() []refresh.CuratedPattern {
	return []refresh.CuratedPattern{
		{Literal: "curl/", Name: "curl", Type: refdata.UAScraper, Weight: 60},
		{Literal: "python-requests/", Name: "python-requests", Type: refdata.UAScraper, Weight: 60},
		{Literal: "PostmanRuntime/", Name: "postman", Type: refdata.UAScraper, Weight: 40},
		{Literal: "Googlebot", Name: "googlebot", Type: refdata.UABot, Weight: 10},
		{Literal: "bingbot", Name: "bingbot", Type: refdata.UABot, Weight: 10},
		{Literal: "HeadlessChrome", Name: "headless-chrome", Type: refdata.UAScraper, Weight: 70},
		{Literal: "PhantomJS", Name: "phantomjs", Type: refdata.UAScraper, Weight: 70},
		{Literal: "Scrapy/", Name: "scrapy", Type: refdata.UAScraper, Weight: 65},
	}
}
