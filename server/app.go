package server

import (
	"context"
	"errors"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"video-platform/config"
	"video-platform/constant"
	"video-platform/handler"
	"video-platform/pkg/ffmpeg"
	"video-platform/pkg/progress"
	"video-platform/pkg/rabbitmq"
	"video-platform/pkg/storage"
	"video-platform/repository"
	"video-platform/service"
)

// app holds the constructed components shared by the http server and the worker.
type app struct {
	db      *gorm.DB
	conn    *amqp.Connection
	storage storage.Storage

	processing service.ProcessingService
	http       handler.HttpDependencies
	closers    []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := zerolog.Ctx(ctx)
	a := &app{}

	db, err := config.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := repository.Migrate(db); err != nil {
		a.Close()
		return nil, err
	}
	repo := repository.NewRepo(db)

	redisClient, err := config.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable")
		redisClient = nil
	}
	if redisClient != nil {
		a.closers = append(a.closers, redisClient.Close)
	}
	progressStore := progress.New(ctx, redisClient, cfg.Redis.ProgressTTL)

	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.storage = store
	logger.Info().Str("backend", store.Name()).Msg("storage ready")

	if err := os.MkdirAll(cfg.Processing.TempDir, os.ModePerm); err != nil {
		a.Close()
		return nil, err
	}
	extractor := ffmpeg.New(ffmpeg.Config{
		FFmpegBinary:  cfg.Processing.FFmpegBinary,
		FFprobeBinary: cfg.Processing.FFprobeBinary,
		TempDir:       cfg.Processing.TempDir,
		ThumbnailAt:   cfg.Processing.ThumbnailAt,
	})
	if !extractor.IsAvailable(ctx) {
		logger.Warn().Msg("ffmpeg not found; thumbnails fall back to the placeholder")
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	switch {
	case errors.Is(err, config.ErrQueueDisabled):
		logger.Info().Msg("rabbitmq disabled; processing runs inline")
	case err != nil:
		logger.Error().Err(err).Msg("NewRabbitMQConn")
	default:
		a.conn = conn
	}

	videos := service.NewVideoService(repo, store, extractor, progressStore, cfg.Processing.PlaceholderThumb)
	a.processing = service.NewProcessingService(repo, videos, store, extractor, progressStore, service.ProcessingOptions{
		TempDir:      cfg.Processing.TempDir,
		MaxAttempts:  cfg.Processing.MaxAttempts,
		TranscodeHLS: cfg.Processing.TranscodeHLS,
	})

	var publisher service.Publisher
	if a.conn != nil {
		publisher = rabbitmq.NewPublisher(a.conn, cfg.Queue)
	}
	dispatcher := service.NewDispatcher(repo, publisher, a.processing, cfg.Processing.MaxAttempts)

	a.http = handler.HttpDependencies{
		Auth: service.NewAuthService(repo, service.AuthOptions{
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
			BCryptCost: cfg.Auth.BCryptCost,
		}),
		Channels:      service.NewChannelService(repo, store),
		Videos:        videos,
		Uploads:       service.NewUploadService(repo, videos, dispatcher, progressStore),
		Comments:      service.NewCommentService(repo),
		Reactions:     service.NewReactionService(repo),
		Subscriptions: service.NewSubscriptionService(repo),
		MaxVideoBytes: cfg.Upload.MaxVideoBytes,
		MaxImageBytes: cfg.Upload.MaxImageBytes,
	}
	return a, nil
}

// startConsumer runs the processing queue consumer until ctx is done.
func (a *app) startConsumer(ctx context.Context, cfg *config.Config) {
	if a.conn == nil {
		return
	}

	serviceDeps := handler.ServiceDependencies{ProcessingService: a.processing}
	consumer := rabbitmq.NewConsumer(a.conn, cfg.Queue, cfg.Server.Workers, handler.JobHandler)
	go func() {
		err := consumer.Consume(ctx, serviceDeps)
		if err != nil && !errors.Is(err, context.Canceled) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Processing consumer error")
		}
	}()
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
