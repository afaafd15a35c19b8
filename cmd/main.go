package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/cache"
	"github.com/trackme/parcels/internal/config"
	"github.com/trackme/parcels/internal/db"
	"github.com/trackme/parcels/internal/kafka"
	"github.com/trackme/parcels/internal/logger"
	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/repository/postgresql"
	"github.com/trackme/parcels/internal/server"
	"github.com/trackme/parcels/internal/storage"
	"github.com/trackme/parcels/internal/tracking"
)

func main() {
	envPath := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if envPath != "" {
		zapLogger.Info("Loaded environment", zap.String("path", envPath))
	}

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	parcelRepo := postgresql.NewParcelRepo(database)
	historyRepo := postgresql.NewHistoryRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()
	userRepo := postgresql.NewUserRepo(database)

	if err := ensureAdmin(ctx, cfg, userRepo, zapLogger); err != nil {
		return err
	}

	stg := storage.NewPostgresStorage(database, parcelRepo, historyRepo, outboxRepo, cfg.KafkaTopic)

	trackingCache := cache.NewParcelCache(stg, zapLogger.Named("cache"))
	if err := trackingCache.LoadInitialData(ctx); err != nil {
		return err
	}

	service := tracking.NewService(stg, trackingCache, zapLogger.Named("tracking"))

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewBrokerProducer(cfg.KafkaBrokers, zapLogger.Named("kafka"))
	} else {
		zapLogger.Warn("KAFKA_BROKERS is empty, status events are only logged")
		producer = kafka.NewLogProducer(zapLogger.Named("kafka"))
	}

	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval:    cfg.OutboxPollInterval,
		BatchSize:       cfg.OutboxBatchSize,
		MaxAttempts:     cfg.OutboxMaxAttempts,
		ProcessingLease: cfg.OutboxProcessingLease,
	}, zapLogger.Named("outbox"))
	go publisher.Run(ctx)

	srv := server.New(service, userRepo, server.Config{
		JWTSecret:      []byte(cfg.JWTSecret),
		TokenTTL:       cfg.TokenTTL,
		TrackRateLimit: cfg.TrackRateLimit,
		TrackBurst:     cfg.TrackBurst,
		AuditWorkers:   cfg.AuditWorkers,
		AuditBatchSize: cfg.AuditBatchSize,
		AuditTimeout:   cfg.AuditTimeout,
	}, zapLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx, cfg.HTTPPort)
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			zapLogger.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	publisher.Shutdown()

	zapLogger.Info("Service gracefully stopped")
	return shutdownErr
}

func ensureAdmin(ctx context.Context, cfg *config.Config, userRepo *postgresql.UserRepo, zapLogger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	created, err := userRepo.EnsureUser(ctx, &repository.User{
		Email:            cfg.AdminEmail,
		Name:             "Administrator",
		Role:             repository.RoleAdmin,
		CourierServiceID: cfg.AdminScope,
	}, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		zapLogger.Info("Created admin user", zap.String("email", cfg.AdminEmail))
	}
	return nil
}
