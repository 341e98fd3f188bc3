package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// AuditEvent records one completed tool call. Events are observability-only:
// losing them never affects a response.
type AuditEvent struct {
	Tool        string    `json:"tool"`
	TechniqueID string    `json:"technique_id,omitempty"`
	Query       string    `json:"query,omitempty"`
	Results     int       `json:"results"`
	Found       bool      `json:"found"`
	Duration    string    `json:"duration"`
	Timestamp   time.Time `json:"timestamp"`
}

// AuditPublisher ships audit events to a kafka topic. A nil publisher is
// valid and drops everything, so callers never branch on configuration.
type AuditPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewAuditPublisher creates a publisher for the given broker and topic.
// Returns nil when no broker is configured.
func NewAuditPublisher(broker, topic string, logger *slog.Logger) *AuditPublisher {
	if broker == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &AuditPublisher{writer: writer, logger: logger.With("component", "audit")}
}

// Publish sends one event, best effort. Failures are logged and swallowed.
func (p *AuditPublisher) Publish(ctx context.Context, event AuditEvent) {
	if p == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal audit event", "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.Tool),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("failed to publish audit event", "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *AuditPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
