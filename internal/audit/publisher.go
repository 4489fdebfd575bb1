package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"member-gateway/internal/platform/kafka/producer"
)

// Topic carries provisioning audit events. Welcome notices ride the same
// pipeline under their own topic so the notification service can consume them
// independently.
const (
	TopicAudit          = "member-gateway.audit"
	TopicWelcomeNotices = "member-gateway.welcome-notices"
)

// Producer is the subset of the kafka producer the publisher needs.
type Producer interface {
	ProduceAsync(msg *producer.Message) error
}

// Publisher emits audit events to Kafka. Emission is fire-and-forget: an
// unavailable broker must never fail a registration. A nil *Publisher is safe
// to call, so wiring can omit Kafka entirely in local runs.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

func NewPublisher(p Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: p, logger: logger}
}

// Emit publishes an audit event, stamping the timestamp if unset.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	p.publish(ctx, TopicAudit, event)
}

// EmitWelcomeNotice queues a welcome notice for the notification service.
// Callers skip this for administrator submissions that opted out.
func (p *Publisher) EmitWelcomeNotice(ctx context.Context, event Event) {
	event.Action = string(EventWelcomeNoticeQueued)
	p.publish(ctx, TopicWelcomeNotices, event)
}

func (p *Publisher) publish(ctx context.Context, topic string, event Event) {
	if p == nil || p.producer == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode audit event",
			"action", event.Action,
			"error", err,
		)
		return
	}

	err = p.producer.ProduceAsync(&producer.Message{
		Topic: topic,
		Key:   []byte(event.OrgID),
		Value: value,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "failed to queue audit event",
			"action", event.Action,
			"topic", topic,
			"error", err,
		)
	}
}
