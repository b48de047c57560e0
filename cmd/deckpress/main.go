// Package main is the entry point for the DeckPress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deckpress/internal/cache"
	"deckpress/internal/config"
	"deckpress/internal/database"
	"deckpress/internal/export"
	"deckpress/internal/handlers"
	"deckpress/internal/kv"
	"deckpress/internal/middleware"
	"deckpress/internal/persist"
	"deckpress/internal/raster"
	"deckpress/internal/router"
	"deckpress/internal/session"
	"deckpress/internal/storage"
	"deckpress/internal/store"
	"deckpress/internal/templates"
	"deckpress/internal/workspace"
)

func main() {
	// Load configuration before the logger so the format follows APP_ENV.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.IsDev() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey holds sessions, editor history, recent/favorite lists and
	// cached export artifacts.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	userStore := store.NewUserStore(db)
	presentationStore := store.NewPresentationStore(db)
	revisionStore := store.NewRevisionStore(db)
	repo := persist.New(kv.NewValkey(valkeyClient, "kv:"))

	catalog, err := templates.Load()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	rasterizer, err := raster.New(1280, 720)
	if err != nil {
		slog.Error("failed to initialize rasterizer", "error", err)
		os.Exit(1)
	}
	pipeline := export.NewPipeline(export.DefaultRegistry(rasterizer, logger), logger)

	// Sharing and the remote copy of every autosave need S3-compatible
	// object storage (optional).
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}

	backend := &workspace.StoreBackend{
		Presentations: presentationStore,
		Repo:          repo,
		Logger:        logger,
	}
	deps := handlers.DecksDeps{
		Presentations: presentationStore,
		Revisions:     revisionStore,
		Catalog:       catalog,
		Pipeline:      pipeline,
		Repo:          repo,
		Artifacts:     cache.NewArtifactCache(valkeyClient, cfg.ExportCacheTTL),
		Logger:        logger,
	}
	if storageClient != nil {
		backend.Blobs = storageClient
		deps.Blobs = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, sharing and remote saves disabled")
	}

	manager := workspace.NewManager(backend, cfg.HistoryLimit, logger)
	deps.Workspace = manager

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Auth:          handlers.NewAuth(sessionStore, userStore),
		Decks:         handlers.NewDecks(deps),
		AuthLimiter:   authLimiter,
		SecureCookies: secureCookies,
	})

	// Autosave runs until shutdown and flushes dirty sessions on exit.
	autosaveCtx, stopAutosave := context.WithCancel(context.Background())
	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		manager.Run(autosaveCtx, cfg.AutosaveInterval)
	}()

	// WriteTimeout covers PDF and image exports of large decks.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	stopAutosave()
	<-autosaveDone

	slog.Info("server stopped gracefully")
}
