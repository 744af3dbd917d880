package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/craftfolio-api/internal/api"
	"github.com/craftfolio-api/internal/auth"
	"github.com/craftfolio-api/internal/comments"
	"github.com/craftfolio-api/internal/config"
	"github.com/craftfolio-api/internal/database"
	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/posts"
	"github.com/craftfolio-api/internal/repository"
	"github.com/craftfolio-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting craftfolio API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize account database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize document store
	store, err := docstore.NewMongo(context.Background(), &cfg.Mongo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to document store")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := &api.Services{
		Auth:     auth.NewService(repos.User, &cfg.Auth, log),
		Posts:    posts.NewService(store, log),
		Comments: comments.NewService(store, &cfg.Comments, log),
		Users:    repos.User,
	}

	// Initialize router
	router := api.NewRouter(services, log)

	// Create HTTP server. WriteTimeout stays unset so the SSE comment
	// streams are not cut off by the server.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.ReadTimeout,
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

	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Document store disconnect failed")
	}

	log.Info().Msg("Server exited gracefully")
}
