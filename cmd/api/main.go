package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ollie/capvote/internal/api"
	"github.com/ollie/capvote/internal/config"
	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/repository"
	"github.com/ollie/capvote/internal/service"
	"github.com/ollie/capvote/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		LogFile:     cfg.Log.File,
		ServiceName: "capvote-api",
		MaxSizeMB:   100,
		MaxBackups:  7,
		MaxAgeDays:  30,
		Compress:    true,
	})
	logger.SetDefault(appLogger)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	captionRepo := repository.NewCaptionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	imageRepo := repository.NewImageRepository(db)

	// Initialize services
	voteService := service.NewVoteService(voteRepo, service.ParseVotePolicy(cfg.Votes.Policy), appLogger)
	captionService := service.NewCaptionService(captionRepo, voteRepo, appLogger)

	pipelineBackend, err := buildPipelineBackend(cfg, imageRepo, captionRepo, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize pipeline backend")
	}

	// Setup router
	router := api.SetupRouter(captionService, voteService, pipelineBackend, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

// buildPipelineBackend selects the pipeline backend from configuration. The
// remote backend only needs the upstream base URL; the local backend wires
// object storage and the caption model.
func buildPipelineBackend(
	cfg *config.Config,
	imageRepo *repository.ImageRepository,
	captionRepo *repository.CaptionRepository,
	appLogger *logger.Logger,
) (service.PipelineBackend, error) {
	if cfg.Pipeline.Mode != "local" {
		appLogger.WithField("base_url", cfg.Pipeline.BaseURL).Info("Using remote pipeline backend")
		return service.NewRemotePipeline(cfg.Pipeline.BaseURL, 0), nil
	}

	objectStorage, err := storage.NewS3Storage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := objectStorage.EnsureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
	}

	captioner := service.NewCaptioner(&service.CaptionerConfig{
		Model:   cfg.Captioner.Model,
		APIKey:  cfg.Captioner.APIKey,
		BaseURL: cfg.Captioner.BaseURL,
	})

	appLogger.WithField("bucket", cfg.Storage.Bucket).Info("Using local pipeline backend")
	return service.NewLocalPipeline(
		objectStorage,
		imageRepo,
		captionRepo,
		captioner,
		cfg.Pipeline.PresignTTL,
		appLogger,
	), nil
}
