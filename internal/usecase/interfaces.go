package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// LedgerRepository defines data access for the ledger row.
type LedgerRepository interface {
	Create(ctx context.Context, tx Transaction, ledger *domain.Ledger) error
	Get(ctx context.Context) (*domain.Ledger, error)
	GetForUpdate(ctx context.Context, tx Transaction) (*domain.Ledger, error)
	UpdateBalance(ctx context.Context, tx Transaction, balance decimal.Decimal, updatedAt time.Time) error
}

// FunderRepository defines data access for funder records and the funders list.
type FunderRepository interface {
	// AddAmount increments the funder record, creating it when absent.
	AddAmount(ctx context.Context, tx Transaction, funder domain.Address, amount decimal.Decimal, updatedAt time.Time) error
	// Append adds funder at the end of the funders list and returns its index.
	Append(ctx context.Context, tx Transaction, funder domain.Address, createdAt time.Time) (int64, error)
	// ResetAll zeroes the record of every listed funder, clears the list and
	// returns the number of list entries removed.
	ResetAll(ctx context.Context, tx Transaction, updatedAt time.Time) (int, error)
	AmountFunded(ctx context.Context, funder domain.Address) (decimal.Decimal, error)
	GetByIndex(ctx context.Context, index int64) (domain.Address, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]domain.Funder, error)
	TotalFunded(ctx context.Context, tx Transaction) (decimal.Decimal, error)
}

// ContributionRepository defines data access for contribution history.
type ContributionRepository interface {
	Create(ctx context.Context, tx Transaction, contribution *domain.Contribution) error
	List(ctx context.Context, funder domain.Address, limit, offset int) ([]*domain.Contribution, error)
}

// WithdrawalRepository defines data access for payout history.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Transaction, withdrawal *domain.Withdrawal) error
	List(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// PriceOracle converts native units to USD.
type PriceOracle interface {
	// LatestPrice returns the USD price of one native unit.
	LatestPrice(ctx context.Context) (decimal.Decimal, error)
	// Address returns the feed address.
	Address() string
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that failed with transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request may be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives business metrics.
type Recorder interface {
	ContributionAccepted(amount, usdValue decimal.Decimal)
	ContributionRejected(reason string)
	Withdrawn(amount decimal.Decimal, fundersCleared int)
	OracleObserved(d time.Duration, err error)
	BalanceChanged(balance decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) ContributionAccepted(decimal.Decimal, decimal.Decimal) {}
func (nopRecorder) ContributionRejected(string)                          {}
func (nopRecorder) Withdrawn(decimal.Decimal, int)                       {}
func (nopRecorder) OracleObserved(time.Duration, error)                  {}
func (nopRecorder) BalanceChanged(decimal.Decimal)                       {}
