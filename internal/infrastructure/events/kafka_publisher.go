// internal/infrastructure/events/kafka_publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to a topic, keyed by order id so every
// event of an order lands on the same partition
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    logrus.FieldLogger
}

// NewKafkaPublisher creates a publisher for the configured brokers and topic
func NewKafkaPublisher(cfg *config.Config, log logrus.FieldLogger) *KafkaPublisher {
	kcfg := cfg.External.Kafka
	writer := &kafka.Writer{
		Addr:         kafka.TCP(kcfg.Brokers...),
		Topic:        kcfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  1,
		RequiredAcks: kafka.RequireOne,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Errorf("kafka writer: "+msg, args...)
		}),
	}

	return &KafkaPublisher{writer: writer, topic: kcfg.Topic, log: log}
}

// Publish implements order.EventPublisher
func (p *KafkaPublisher) Publish(ctx context.Context, event order.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs order events; it is used when no broker is configured
type LogPublisher struct {
	log logrus.FieldLogger
}

// NewLogPublisher creates a logging publisher
func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish implements order.EventPublisher
func (p *LogPublisher) Publish(_ context.Context, event order.Event) error {
	p.log.WithFields(logrus.Fields{
		"event":        event.Type,
		"order_id":     event.OrderID,
		"order_number": event.OrderNumber,
		"status":       event.Status,
	}).Info("order event")
	return nil
}

var (
	_ order.EventPublisher = (*KafkaPublisher)(nil)
	_ order.EventPublisher = (*LogPublisher)(nil)
)
