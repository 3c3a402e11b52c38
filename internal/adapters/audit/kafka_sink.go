package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes audit events as JSON keyed by transaction ID, so all events of
// one transaction land on the same partition in order.
type KafkaSink struct {
	writer   messageWriter
	fallback *LogSink
	timeout  time.Duration
}

var _ portssvc.AuditSink = (*KafkaSink)(nil)

// NewKafkaWriter builds the async batching writer used in production.
func NewKafkaWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to publish audit events",
					slog.Int("count", len(messages)), slog.String("error", err.Error()))
			}
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...), slog.String("component", "kafka_audit"))
		}),
	}
}

// NewKafkaSink wraps writer. Events that cannot be handed to the writer are logged through fallback.
func NewKafkaSink(writer messageWriter, fallback *LogSink) *KafkaSink {
	if fallback == nil {
		fallback = NewLogSink(nil)
	}
	return &KafkaSink{writer: writer, fallback: fallback, timeout: 2 * time.Second}
}

func (s *KafkaSink) Emit(ctx context.Context, ev domain.AuditEvent) {
	value, err := json.Marshal(ev)
	if err != nil {
		s.fallback.Emit(ctx, ev)
		return
	}
	// The orchestrator has already committed; a cancelled request must not drop the event.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	err = s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(ev.PartitionKey()),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		s.fallback.logger.Warn("Audit publish failed, logging locally", slog.String("error", err.Error()))
		s.fallback.Emit(ctx, ev)
	}
}

// Close flushes pending messages.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
