//go:generate mockgen -source ./producer.go -destination=./mocks/producer.go -package=mock_kafka
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// BrokerProducer writes to a Kafka cluster. The topic is chosen per message.
type BrokerProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewBrokerProducer(brokers []string, logger *zap.Logger) Producer {
	logger.Info("Initialized Kafka producer", zap.Strings("brokers", brokers))
	return &BrokerProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *BrokerProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (p *BrokerProducer) Close() error {
	p.logger.Info("Closing Kafka producer")
	return p.writer.Close()
}

// LogProducer stands in for Kafka when no brokers are configured and writes every message to the log.
type LogProducer struct {
	logger *zap.Logger
}

func NewLogProducer(logger *zap.Logger) Producer {
	logger.Info("Initialized log producer, no Kafka brokers configured")
	return &LogProducer{logger: logger}
}

func (p *LogProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		p.logger.Warn("Log producer cancelled", zap.String("topic", topic), zap.ByteString("key", key))
		return err
	}
	p.logger.Info("Event",
		zap.String("topic", topic),
		zap.ByteString("key", key),
		zap.ByteString("value", value))
	return nil
}

func (p *LogProducer) Close() error {
	p.logger.Info("Closing log producer")
	return nil
}
