package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"musicshelf/internal/bot"
	"musicshelf/internal/config"
	"musicshelf/internal/music/spotify"
	"musicshelf/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.WithFields(logrus.Fields{
		"db_host": cfg.DBHost,
		"db_name": cfg.DBName,
	}).Info("Configuration loaded successfully")

	log.Info("Initializing components...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewPostgresRepository(cfg.PostgresDSN(), log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Info("Closing database...")
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()

	parser := spotify.NewParser(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret, log)

	botHandler, err := bot.NewHandler(cfg.TelegramBotToken, parser, repo, log)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot handler: %v", err)
	}

	log.Info("Starting musicshelf...")

	go botHandler.Start(ctx)

	log.Info("musicshelf is running. Press Ctrl+C to exit.")

	<-ctx.Done()

	log.Info("Shutting down musicshelf...")
	stop()

	log.Info("musicshelf shut down gracefully.")
}
