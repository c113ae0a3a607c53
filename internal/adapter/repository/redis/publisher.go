package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/fundme/internal/domain"
)

// DefaultEventChannel is the pub/sub channel ledger events go to.
const DefaultEventChannel = "fundme:events"

// EventPublisher publishes outbox events on a Redis pub/sub channel.
type EventPublisher struct {
	client  redis.Cmdable
	channel string
}

type eventMessage struct {
	ID            string         `json:"id"`
	AggregateID   string         `json:"aggregate_id"`
	AggregateType string         `json:"aggregate_type"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewEventPublisher creates a publisher for channel, DefaultEventChannel if empty.
func NewEventPublisher(client redis.Cmdable, channel string) *EventPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &EventPublisher{client: client, channel: channel}
}

// Publish sends event as JSON. Delivery is at least once: the outbox
// worker republishes events it failed to mark.
func (p *EventPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg, err := json.Marshal(eventMessage{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, p.channel, msg).Err()
}
