package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	gcs "cloud.google.com/go/storage"

	"github.com/dvloznov/resale-ledger/internal/config"
	"github.com/dvloznov/resale-ledger/internal/conversation"
	"github.com/dvloznov/resale-ledger/internal/ledger"
	"github.com/dvloznov/resale-ledger/internal/logger"
	"github.com/dvloznov/resale-ledger/internal/storage"
	"github.com/dvloznov/resale-ledger/internal/telegram"
	"github.com/dvloznov/resale-ledger/internal/xlsxcodec"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client, err := gcs.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer client.Close()

	store := storage.NewGCS(client, cfg.GCSBucket, cfg.GCSObject)
	led := ledger.New(store, xlsxcodec.New(), log)

	machine := conversation.NewMachine(led, log)
	sessions := conversation.NewSessionStore()
	guard := conversation.NewGuard(cfg.AllowedUserIDs)

	bot, err := telegram.New(cfg.TelegramToken, machine, sessions, guard, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}

	// Cancel the polling loop on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	log.Info().
		Str("bucket", cfg.GCSBucket).
		Str("object", cfg.GCSObject).
		Int("allowed_users", len(cfg.AllowedUserIDs)).
		Msg("Bot started")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}

	log.Info().Msg("Bot stopped")
}
