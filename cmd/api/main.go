package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/branddesk/branddesk-backend/internal/api"
	"github.com/branddesk/branddesk-backend/internal/config"
	"github.com/branddesk/branddesk-backend/internal/content"
	gdb "github.com/branddesk/branddesk-backend/internal/db"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/internal/generate"
	"github.com/branddesk/branddesk-backend/internal/ingest"
	"github.com/branddesk/branddesk-backend/internal/jobs"
	"github.com/branddesk/branddesk-backend/internal/log"
	"github.com/branddesk/branddesk-backend/internal/metrics"
	"github.com/branddesk/branddesk-backend/internal/selector"
	"github.com/branddesk/branddesk-backend/internal/store"
	"github.com/branddesk/branddesk-backend/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting BrandDesk API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("branddesk-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	database, err := gdb.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer database.Close()
	logger.Infow("Database initialized")

	// Setup cache (Redis with in-memory fallback)
	cache := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	defer cache.Close()

	// Model gateway
	gw := gateway.NewClient(cfg.Gateway, metricsObj, logger)

	// Selection and generation pipeline
	retriever := content.NewRetriever(database.Content(), cfg.Content.RetrievalLimit, logger)
	sel := selector.New(gw, cfg.Gateway.FastModel, cfg.Content.PreviewChars,
		cfg.Content.MaxSelected, cache.KV(), logger)
	generator := generate.New(gw, generate.Models{
		Fast: cfg.Gateway.FastModel,
		Pro:  cfg.Gateway.ProModel,
	}, database.StyleGuides(), database.HistoricalPosts(), database.GeneratedPosts(), retriever, sel, logger)

	// Video ingestion worker
	fetcher := ingest.NewTranscriptFetcher(nil)
	ingestor := ingest.NewIngestor(fetcher, gw, cfg.Gateway.FastModel, cfg.Gateway.ProModel,
		database.Creators(), database.Content(), logger)
	worker := jobs.NewWorker(database.IngestJobs(), ingestor, cache, metricsObj,
		cfg.Ingest.PollInterval, cfg.Ingest.JobTimeout, logger)

	// WebSocket hub and SSE handler
	wsHub := ws.NewHub(cache, cfg.Security.CORSAllowedOrigins, logger, metricsObj)
	sseHandler := ws.NewSSEHandler(cache, logger)

	// Background services
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go wsHub.Run(bgCtx)
	go worker.Run(bgCtx)

	// Setup API handler and middleware
	handler := api.NewHandler(database, sel, generator, cache, wsHub, sseHandler, cfg, logger)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins,
		cfg.Security.RateLimitRPM, metricsHandler)

	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		bgCancel()

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
