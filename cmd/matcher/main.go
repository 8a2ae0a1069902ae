package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/soradaze/qmatch/internal/ai"
	"github.com/soradaze/qmatch/internal/events"
	"github.com/soradaze/qmatch/internal/matching"
	"github.com/soradaze/qmatch/internal/notify"
	"github.com/soradaze/qmatch/internal/storage"
	"github.com/soradaze/qmatch/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Select the AI provider once and pass it down
	aiService := ai.New(ai.Config{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
	}, logger)

	// Optional Telegram delivery for created notifications
	var notifier notify.Notifier = notify.NewNop()
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		logger.Info("Telegram notification delivery enabled")
		notifier = tg
	}

	matcher := matching.NewService(store, notifier, logger)

	consumer, err := events.NewConsumer(cfg.NATS.URL, aiService, matcher, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer consumer.Close()

	if err := consumer.Start(); err != nil {
		logger.Fatal("Failed to subscribe", zap.Error(err))
	}

	logger.Info("Matching worker started", zap.String("nats_url", cfg.NATS.URL))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
}
