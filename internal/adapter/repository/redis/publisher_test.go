package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iho/fundme/internal/domain"
)

func TestEventPublisher_Publish(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, DefaultEventChannel)
	defer sub.Close()

	// Wait for the subscription to be active.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	pub := NewEventPublisher(client, "")
	err := pub.Publish(ctx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "ledger-1",
		AggregateType: domain.AggregateTypeLedger,
		EventType:     domain.EventTypeLedgerFunded,
		Payload:       map[string]any{"amount": "0.1"},
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got eventMessage
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("invalid message: %v", err)
		}
		if got.ID != "evt-1" || got.EventType != domain.EventTypeLedgerFunded {
			t.Fatalf("unexpected message: %+v", got)
		}
		if got.Payload["amount"] != "0.1" {
			t.Fatalf("unexpected payload: %v", got.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestEventPublisher_ServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	err := NewEventPublisher(client, "events").Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	if err == nil {
		t.Fatal("expected publish error")
	}
}
