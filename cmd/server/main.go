package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blog-publishing-api/internal/api"
	"github.com/blog-publishing-api/internal/cache"
	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/internal/repository"
	"github.com/blog-publishing-api/internal/service"
	"github.com/blog-publishing-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("env", cfg.Env).Msg("Starting blog publishing API server...")

	// Initialize store
	var repos *repository.Repositories
	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory store; content is lost on restart")
		repos = repository.NewInMemory()
	default:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		repos = repository.New(db)
	}

	// Optional view counter
	opts := []service.Option{}
	counter, err := cache.NewViewCounter(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("View counter disabled")
	} else if counter != nil {
		defer counter.Close()
		opts = append(opts, service.WithViewCounter(counter))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("View counter connected")
	}

	// Initialize services
	services := service.NewServices(repos, cfg, log, opts...)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
