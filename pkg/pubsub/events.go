package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const defaultPublishTimeout = 5 * time.Second

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// Event is one domain event ready to publish.
type Event struct {
	Type        string
	AggregateID string
	Payload     any
}

// EventPublisher publishes JSON events with a stable attribute envelope.
type EventPublisher struct {
	pub     publisher
	timeout time.Duration
	now     func() time.Time
}

// NewEventPublisher wraps a Pub/Sub publisher handle.
func NewEventPublisher(p *pubsub.Publisher) (*EventPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &EventPublisher{pub: &gcpPublisher{Publisher: p}, timeout: defaultPublishTimeout, now: time.Now}, nil
}

// Publish serializes the payload and waits for the server-assigned message id.
func (p *EventPublisher) Publish(ctx context.Context, event Event) (string, error) {
	if event.Type == "" {
		return "", errors.New("event type is required")
	}
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":     uuid.NewString(),
			"event_type":   event.Type,
			"aggregate_id": event.AggregateID,
			"created_at":   p.now().UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return "", fmt.Errorf("publisher returned nil for %s", event.Type)
	}
	return result.Get(publishCtx)
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*pubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
