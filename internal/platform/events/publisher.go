package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/platform/requestctx"
)

// Event names published to the order and appointment topics.
const (
	OrderCreated             = "order.created"
	AppointmentCreated       = "appointment.created"
	AppointmentStatusChanged = "appointment.status_changed"
	AppointmentCancelled     = "appointment.cancelled"
)

// Publisher emits domain events. A nil *PubSubPublisher is a valid
// publisher that drops everything, so wiring stays unconditional.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// PubSubPublisher sends events to a Cloud Pub/Sub topic as JSON messages
// with the event name in an attribute.
type PubSubPublisher struct {
	topic *pubsub.Topic
	clock func() time.Time
}

// NewPubSubPublisher creates a publisher for the named topic.
func NewPubSubPublisher(ctx context.Context, projectID, topicName string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &PubSubPublisher{
		topic: client.Topic(topicName),
		clock: time.Now,
	}, nil
}

// Publish marshals the payload and blocks until the broker accepts it.
// Calling Publish on a nil publisher is a no-op.
func (p *PubSubPublisher) Publish(ctx context.Context, name string, payload any) error {
	if p == nil || p.topic == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", name, err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event":        name,
			"published_at": p.clock().UTC().Format(time.RFC3339),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		requestctx.Logger(ctx).Warn("publish event failed",
			zap.String("event", name), zap.Error(err))
		return fmt.Errorf("publish event %s: %w", name, err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *PubSubPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}
