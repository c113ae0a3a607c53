package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Create stores the ledger. Only one ledger may exist.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	if st.ledger != nil {
		return domain.ErrLedgerAlreadyInitialized
	}

	l := *ledger
	st.ledger = &l
	return nil
}

// Get returns the committed ledger.
func (r *LedgerRepository) Get(ctx context.Context) (*domain.Ledger, error) {
	var ledger *domain.Ledger
	r.store.read(func(st *state) {
		if st.ledger != nil {
			l := *st.ledger
			ledger = &l
		}
	})

	if ledger == nil {
		return nil, domain.ErrLedgerNotFound
	}
	return ledger, nil
}

// GetForUpdate returns the ledger as seen by tx.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Ledger, error) {
	st, err := stagedState(tx)
	if err != nil {
		return nil, err
	}

	if st.ledger == nil {
		return nil, domain.ErrLedgerNotFound
	}

	l := *st.ledger
	return &l, nil
}

// UpdateBalance sets the staged balance and bumps the version.
func (r *LedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, balance decimal.Decimal, updatedAt time.Time) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	if st.ledger == nil {
		return domain.ErrLedgerNotFound
	}

	st.ledger.Balance = balance
	st.ledger.Version++
	st.ledger.UpdatedAt = updatedAt
	return nil
}
