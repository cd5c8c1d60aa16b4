package main

import (
	"context"
	"net/http"
	"time"

	"docraster/internal/config"
	"docraster/internal/httpapi"
	"docraster/internal/pkg/logger"
	"docraster/internal/pkg/shutdown"
	"docraster/internal/render"
	"docraster/internal/storage"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "docraster",
	})

	log.Info("starting docraster",
		"version", "0.1.0",
	)

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Initialize object store
	log.Info("initializing object store", "provider", cfg.Storage.Provider)
	store, err := storage.NewStore(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize object store", err)
	}
	log.Info("object store ready", "provider", store.Provider())

	// Build the rendering engine behind a bounded worker pool
	engine := render.NewEngine(render.EngineConfig{
		StrictPages: cfg.Render.StrictPages,
		Log:         log,
	})
	renderer := render.NewPool(engine, cfg.Render.Workers)

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		Cfg:      cfg,
		Store:    store,
		Renderer: renderer,
		Log:      log,
	})

	// Create HTTP server. Uploads can run to hundreds of megabytes, so
	// the read timeout is generous; the body cap is enforced per request.
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"auth_gate", cfg.AuthToken != "",
			"body_limit_mb", cfg.BodyLimitMB,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}
