package memory

import (
	"context"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	store *Store
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(store *Store) *ContributionRepository {
	return &ContributionRepository{store: store}
}

// Create records a contribution.
func (r *ContributionRepository) Create(ctx context.Context, tx usecase.Transaction, contribution *domain.Contribution) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	c := *contribution
	st.contributions = append(st.contributions, &c)
	return nil
}

// List returns contributions newest first. An empty funder matches everyone.
func (r *ContributionRepository) List(ctx context.Context, funder domain.Address, limit, offset int) ([]*domain.Contribution, error) {
	result := []*domain.Contribution{}
	r.store.read(func(st *state) {
		skipped := 0
		for i := len(st.contributions) - 1; i >= 0 && len(result) < limit; i-- {
			c := st.contributions[i]
			if funder != "" && c.Funder != funder {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			cp := *c
			result = append(result, &cp)
		}
	})
	return result, nil
}

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	store *Store
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(store *Store) *WithdrawalRepository {
	return &WithdrawalRepository{store: store}
}

// Create records a payout.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, withdrawal *domain.Withdrawal) error {
	st, err := stagedState(tx)
	if err != nil {
		return err
	}

	w := *withdrawal
	st.withdrawals = append(st.withdrawals, &w)
	return nil
}

// List returns payouts newest first.
func (r *WithdrawalRepository) List(ctx context.Context, limit, offset int) ([]*domain.Withdrawal, error) {
	result := []*domain.Withdrawal{}
	r.store.read(func(st *state) {
		for i := len(st.withdrawals) - 1 - offset; i >= 0 && len(result) < limit; i-- {
			w := *st.withdrawals[i]
			result = append(result, &w)
		}
	})
	return result, nil
}
