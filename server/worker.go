package server

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"video-platform/config"
	"video-platform/repository"
)

var ErrWorkerNeedsQueue = errors.New("worker requires rabbitmq.enabled")

// RunWorker consumes processing jobs without serving http.
func RunWorker(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to start")
		return err
	}
	defer a.Close()

	if a.conn == nil {
		return ErrWorkerNeedsQueue
	}

	zerolog.Ctx(ctx).Info().Int("workers", cfg.Server.Workers).Msg("start worker")
	a.startConsumer(ctx, cfg)

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("worker shutdown")
	return nil
}

// RunMigrate applies the schema and exits.
func RunMigrate(cfg *config.Config) error {
	ctx := setupLogger(cfg)

	db, err := config.NewDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repository.Migrate(db); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("schema migrated")
	return nil
}
