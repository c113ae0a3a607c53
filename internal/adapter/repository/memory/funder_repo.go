package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// FunderRepository implements usecase.FunderRepository.
type FunderRepository struct {
	store *Store
}

// NewFunderRepository creates a new FunderRepository.
func NewFunderRepository(store *Store) *FunderRepository {
	return &FunderRepository{store: store}
}

// AddAmount increments the funder record.
func (r *FunderRepository) AddAmount(ctx context.Context, tx usecase.Transaction, funder domain.Address, amount decimal.Decimal, updatedAt time.Time) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	st.amounts[funder] = st.amounts[funder].Add(amount)
	return nil
}

// Append adds funder to the funders list.
func (r *FunderRepository) Append(ctx context.Context, tx usecase.Transaction, funder domain.Address, createdAt time.Time) (int64, error) {
	st, err := stagedState(tx)
	if err != nil {
		return 0, err
	}

	st.funders = append(st.funders, funderEntry{address: funder, createdAt: createdAt})
	return int64(len(st.funders) - 1), nil
}

// ResetAll zeroes listed funders and clears the list.
func (r *FunderRepository) ResetAll(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) (int, error) {
	st, err := stagedState(tx)
	if err != nil {
		return 0, err
	}

	cleared := len(st.funders)
	for _, f := range st.funders {
		st.amounts[f.address] = decimal.Zero
	}
	st.funders = nil

	return cleared, nil
}

// AmountFunded returns the committed record, zero when absent.
func (r *FunderRepository) AmountFunded(ctx context.Context, funder domain.Address) (decimal.Decimal, error) {
	amount := decimal.Zero
	r.store.read(func(st *state) {
		if a, ok := st.amounts[funder]; ok {
			amount = a
		}
	})
	return amount, nil
}

// GetByIndex returns the funder at index.
func (r *FunderRepository) GetByIndex(ctx context.Context, index int64) (domain.Address, error) {
	var addr domain.Address
	var found bool
	r.store.read(func(st *state) {
		if index >= 0 && index < int64(len(st.funders)) {
			addr = st.funders[index].address
			found = true
		}
	})

	if !found {
		return "", domain.ErrFunderIndexOutOfRange
	}
	return addr, nil
}

// Count returns the funders list length.
func (r *FunderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	r.store.read(func(st *state) {
		n = int64(len(st.funders))
	})
	return n, nil
}

// List returns a page of the funders list.
func (r *FunderRepository) List(ctx context.Context, limit, offset int) ([]domain.Funder, error) {
	funders := []domain.Funder{}
	r.store.read(func(st *state) {
		for i := offset; i < len(st.funders) && len(funders) < limit; i++ {
			funders = append(funders, domain.Funder{Index: int64(i), Address: st.funders[i].address})
		}
	})
	return funders, nil
}

// TotalFunded sums every funder record.
func (r *FunderRepository) TotalFunded(ctx context.Context, tx usecase.Transaction) (decimal.Decimal, error) {
	st, err := stagedState(tx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range st.amounts {
		total = total.Add(a)
	}
	return total, nil
}
