package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/trackme/parcels/internal/config"
	"github.com/trackme/parcels/internal/logger"
	"github.com/trackme/parcels/internal/repository"
)

const groupID = "parcel-status-consumer-group"

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		zapLogger.Fatal("KAFKA_BROKERS must be set for the consumer")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        groupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		zapLogger.Info("Closing Kafka reader")
		if err := r.Close(); err != nil {
			zapLogger.Error("Error closing Kafka reader", zap.Error(err))
		}
	}()

	zapLogger.Info("Consumer connected",
		zap.String("topic", cfg.KafkaTopic),
		zap.Strings("brokers", cfg.KafkaBrokers))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				zapLogger.Info("Shutdown signal received, stopping consumer")
				return
			}
			zapLogger.Error("Error reading message", zap.Error(err))
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := handleMessage(zapLogger, m); err != nil {
			zapLogger.Warn("Skipping malformed status event",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

func decodeEvent(m kafka.Message) (*repository.StatusChangedEvent, error) {
	var event repository.StatusChangedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to decode status event: %w", err)
	}
	if event.ParcelID == "" || event.NewStatus == "" {
		return nil, fmt.Errorf("status event without parcel or status")
	}
	return &event, nil
}

func handleMessage(logger *zap.Logger, m kafka.Message) error {
	event, err := decodeEvent(m)
	if err != nil {
		return err
	}

	logger.Info("Parcel status changed",
		zap.String("tracking_number", event.TrackingNumber),
		zap.String("parcel_id", event.ParcelID),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus),
		zap.String("location", event.Location),
		zap.String("updated_by", event.UpdatedBy),
		zap.Time("at", event.Timestamp),
		zap.Int64("offset", m.Offset))
	return nil
}
