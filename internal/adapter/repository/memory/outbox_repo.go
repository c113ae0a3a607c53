package memory

import (
	"context"
	"time"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an outbox event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	e := *event
	st.outbox = append(st.outbox, &e)
	return nil
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	events := []*domain.OutboxEvent{}
	r.store.read(func(st *state) {
		for _, e := range st.outbox {
			if len(events) >= limit {
				break
			}
			if !e.Published {
				cp := *e
				events = append(events, &cp)
			}
		}
	})
	return events, nil
}

// MarkPublished flags an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if err := r.store.exclusive(ctx); err != nil {
		return err
	}
	defer r.store.release()

	for i, e := range r.store.committed.outbox {
		if e.ID == id {
			cp := *e
			cp.Published = true
			cp.PublishedAt = &publishedAt
			r.store.committed.outbox[i] = &cp
			return nil
		}
	}
	return nil
}

// DeletePublished drops published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if err := r.store.exclusive(ctx); err != nil {
		return err
	}
	defer r.store.release()

	kept := r.store.committed.outbox[:0:0]
	for _, e := range r.store.committed.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.committed.outbox = kept
	return nil
}
