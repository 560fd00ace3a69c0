package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/analytics"
	"github.com/survey-scoring-server/internal/api"
	"github.com/survey-scoring-server/internal/cache"
	"github.com/survey-scoring-server/internal/config"
	"github.com/survey-scoring-server/internal/criteria"
	"github.com/survey-scoring-server/internal/report"
	"github.com/survey-scoring-server/internal/repository"
	"github.com/survey-scoring-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting survey scoring server")

	// Load the scoring criteria table
	criteriaRepo, err := criteria.Load(cfg.Criteria.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load scoring criteria")
	}

	// Open the result store and run migrations
	store, err := repository.NewStore(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open result store")
	}
	defer store.Close()

	server := api.NewServer(
		configManager,
		service.NewScoringService(criteriaRepo, logger),
		store,
		analytics.NewService(store.DB(), logger),
		report.NewService(cfg.Report, logger),
		cache.NewDemographicsCache(cfg.Cache.Size, cfg.Cache.TTL, logger),
		criteriaRepo,
		logger,
	)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
