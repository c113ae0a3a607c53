package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeLedgerFunded    = "ledger.funded"
	EventTypeLedgerWithdrawn = "ledger.withdrawn"
)

// Aggregate types
const (
	AggregateTypeLedger = "ledger"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LedgerFundedEvent payload
type LedgerFundedEvent struct {
	ContributionID string `json:"contribution_id"`
	Funder         string `json:"funder"`
	Amount         string `json:"amount"`
	USDValue       string `json:"usd_value"`
	Balance        string `json:"balance"`
	EventAt        string `json:"event_at"`
}

// LedgerWithdrawnEvent payload
type LedgerWithdrawnEvent struct {
	WithdrawalID   string `json:"withdrawal_id"`
	Owner          string `json:"owner"`
	Amount         string `json:"amount"`
	FundersCleared int    `json:"funders_cleared"`
	EventAt        string `json:"event_at"`
}

// MarshalPayload converts an event payload struct to a generic map for the outbox.
func MarshalPayload(v any) map[string]any {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "failed to marshal payload"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to unmarshal payload"}
	}

	return result
}
