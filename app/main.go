package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/podmirror/podmirror/app/api"
	"github.com/podmirror/podmirror/app/cache"
	"github.com/podmirror/podmirror/app/cfg"
	"github.com/podmirror/podmirror/app/config"
	"github.com/podmirror/podmirror/app/database"
	"github.com/podmirror/podmirror/app/extractor"
	"github.com/podmirror/podmirror/app/resolver"
	"github.com/podmirror/podmirror/app/sync"
	"github.com/podmirror/podmirror/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting PodMirror server (version %s)...", appCfg.Version)

	// Database connection
	log.Printf("Opening database at %s...", appCfg.DBPath)
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	// Resolution cache
	log.Printf("Connecting to redis at %s...", appCfg.RedisAddr)
	resolutionCache, err := cache.NewRedisCache(context.Background(), appCfg.RedisAddr)
	if err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}
	defer resolutionCache.Close()

	// Load declarative feed definitions
	log.Printf("Loading feed definitions from %s...", appCfg.FeedsDir)
	loader := config.NewLoader(appCfg.FeedsDir)
	definitions, err := loader.LoadAll()
	if err != nil {
		log.Fatal("Failed to load feed definitions: ", err)
	}
	log.Printf("Loaded %d feed definitions", len(definitions))

	// Initialize core components
	feedRepo := database.NewFeedRepository(db)
	upstream := extractor.New(appCfg.SidecarURL, appCfg.UserAgent, appCfg.RSSListing)
	syncer := sync.NewSyncer(upstream, sync.Options{})
	episodeResolver := resolver.New(upstream, resolutionCache)

	// Initialize and start scheduler
	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(definitions, feedRepo, syncer)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(feedRepo, episodeResolver, syncer, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Create feed:   http://localhost:%s/feeds (POST)", appCfg.Port)
		log.Printf("  Feed:          http://localhost:%s/feeds/<id>", appCfg.Port)
		log.Printf("  Download:      http://localhost:%s/download/<feed id>/<episode id>", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)
		log.Printf("  Statistics:    http://localhost:%s/stats", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("PodMirror server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("Background scheduler stopped")

	log.Println("PodMirror server shutdown complete")
}
