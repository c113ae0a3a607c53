package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
)

// FundingUseCase handles contributions, withdrawals and ledger reads.
type FundingUseCase struct {
	txManager        TransactionManager
	ledgerRepo       LedgerRepository
	funderRepo       FunderRepository
	contributionRepo ContributionRepository
	withdrawalRepo   WithdrawalRepository
	outboxRepo       OutboxRepository
	oracle           PriceOracle
	idGen            IDGenerator
	retrier          Retrier
	cache            Cache
	recorder         Recorder
	logger           zerolog.Logger
	quoteTTL         time.Duration
	now              func() time.Time
}

// FundingUseCaseConfig holds the collaborators of FundingUseCase.
// Retrier, Cache, Recorder and OutboxRepo are optional.
type FundingUseCaseConfig struct {
	TxManager        TransactionManager
	LedgerRepo       LedgerRepository
	FunderRepo       FunderRepository
	ContributionRepo ContributionRepository
	WithdrawalRepo   WithdrawalRepository
	OutboxRepo       OutboxRepository
	Oracle           PriceOracle
	IDGen            IDGenerator
	Retrier          Retrier
	Cache            Cache
	Recorder         Recorder
	Logger           *zerolog.Logger
	QuoteCacheTTL    time.Duration
	Clock            func() time.Time
}

// NewFundingUseCase creates a new FundingUseCase.
func NewFundingUseCase(cfg FundingUseCaseConfig) *FundingUseCase {
	uc := &FundingUseCase{
		txManager:        cfg.TxManager,
		ledgerRepo:       cfg.LedgerRepo,
		funderRepo:       cfg.FunderRepo,
		contributionRepo: cfg.ContributionRepo,
		withdrawalRepo:   cfg.WithdrawalRepo,
		outboxRepo:       cfg.OutboxRepo,
		oracle:           cfg.Oracle,
		idGen:            cfg.IDGen,
		retrier:          cfg.Retrier,
		cache:            cfg.Cache,
		recorder:         cfg.Recorder,
		logger:           zerolog.Nop(),
		quoteTTL:         cfg.QuoteCacheTTL,
		now:              cfg.Clock,
	}

	if cfg.Logger != nil {
		uc.logger = cfg.Logger.With().Str("component", "funding").Logger()
	}
	if uc.recorder == nil {
		uc.recorder = nopRecorder{}
	}
	if uc.quoteTTL <= 0 {
		uc.quoteTTL = DefaultQuoteCacheTTL
	}
	if uc.now == nil {
		uc.now = time.Now
	}

	return uc
}

// InitializeInput represents input for creating the ledger.
type InitializeInput struct {
	Owner      string
	PriceFeed  string
	MinimumUSD decimal.Decimal
}

// Initialize creates the ledger on first start. The owner is fixed once: an
// existing ledger is returned unchanged.
func (uc *FundingUseCase) Initialize(ctx context.Context, input InitializeInput) (*domain.Ledger, error) {
	owner, err := domain.ParseAddress(input.Owner)
	if err != nil {
		return nil, fmt.Errorf("ledger owner: %w", err)
	}

	existing, err := uc.ledgerRepo.Get(ctx)
	if err == nil {
		if existing.Owner != owner {
			uc.logger.Warn().
				Str("configured_owner", owner.String()).
				Str("owner", existing.Owner.String()).
				Msg("ledger already initialized with a different owner, keeping it")
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrLedgerNotFound) {
		return nil, err
	}

	priceFeed := input.PriceFeed
	if priceFeed == "" {
		priceFeed = uc.oracle.Address()
	}

	minimum := input.MinimumUSD
	if minimum.IsZero() {
		minimum = domain.DefaultMinimumUSD
	}
	if minimum.IsNegative() {
		return nil, fmt.Errorf("%w: minimum USD", domain.ErrInvalidAmount)
	}

	now := uc.now().UTC()
	ledger := &domain.Ledger{
		ID:         uc.idGen.Generate(),
		Owner:      owner,
		PriceFeed:  priceFeed,
		MinimumUSD: minimum,
		Balance:    decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.ledgerRepo.Create(ctx, tx, ledger); err != nil {
		if errors.Is(err, domain.ErrLedgerAlreadyInitialized) {
			// Another instance won the race.
			return uc.ledgerRepo.Get(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("ledger_id", ledger.ID).
		Str("owner", owner.String()).
		Str("price_feed", priceFeed).
		Str("minimum_usd", minimum.String()).
		Msg("ledger initialized")

	return ledger, nil
}

// FundInput represents input for a contribution.
type FundInput struct {
	Caller string
	Amount decimal.Decimal
}

// Fund accepts a contribution from the caller if its USD value clears the
// ledger minimum. The oracle is read exactly once.
func (uc *FundingUseCase) Fund(ctx context.Context, input FundInput) (*domain.Contribution, error) {
	caller, err := domain.ParseAddress(input.Caller)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.recorder.ContributionRejected("invalid_amount")
		return nil, err
	}

	price, err := uc.readOracle(ctx)
	if err != nil {
		uc.recorder.ContributionRejected("oracle_unavailable")
		return nil, err
	}

	var contribution *domain.Contribution
	var balance decimal.Decimal
	err = uc.retry(ctx, func() error {
		var err error
		contribution, balance, err = uc.fund(ctx, caller, input.Amount, price)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientContribution) {
			uc.recorder.ContributionRejected("insufficient_contribution")
		}
		uc.logger.Debug().Err(err).
			Str("funder", caller.String()).
			Str("amount", input.Amount.String()).
			Msg("contribution rejected")
		return nil, err
	}

	uc.recorder.ContributionAccepted(contribution.Amount, contribution.USDValue)
	uc.recorder.BalanceChanged(balance)
	uc.logger.Info().
		Str("contribution_id", contribution.ID).
		Str("funder", caller.String()).
		Str("amount", contribution.Amount.String()).
		Str("usd_value", contribution.USDValue.String()).
		Msg("contribution accepted")

	return contribution, nil
}

func (uc *FundingUseCase) fund(ctx context.Context, caller domain.Address, amount, price decimal.Decimal) (*domain.Contribution, decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	ledger, err := uc.ledgerRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := ledger.ValidateContribution(amount, price); err != nil {
		return nil, decimal.Zero, err
	}

	now := uc.now().UTC()

	if err := uc.funderRepo.AddAmount(ctx, tx, caller, amount, now); err != nil {
		return nil, decimal.Zero, err
	}

	if _, err := uc.funderRepo.Append(ctx, tx, caller, now); err != nil {
		return nil, decimal.Zero, err
	}

	newBalance := ledger.ApplyContribution(amount)
	if err := uc.ledgerRepo.UpdateBalance(ctx, tx, newBalance, now); err != nil {
		return nil, decimal.Zero, err
	}

	contribution := &domain.Contribution{
		ID:        uc.idGen.Generate(),
		Funder:    caller,
		Amount:    amount,
		Price:     price,
		USDValue:  domain.ConvertToUSD(amount, price),
		CreatedAt: now,
	}

	if err := uc.contributionRepo.Create(ctx, tx, contribution); err != nil {
		return nil, decimal.Zero, err
	}

	if err := uc.emit(ctx, tx, ledger.ID, domain.EventTypeLedgerFunded, domain.LedgerFundedEvent{
		ContributionID: contribution.ID,
		Funder:         caller.String(),
		Amount:         amount.String(),
		USDValue:       contribution.USDValue.String(),
		Balance:        newBalance.String(),
		EventAt:        now.Format(time.RFC3339Nano),
	}, now); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}

	return contribution, newBalance, nil
}

// Withdraw pays the whole balance out to the owner and resets every funder
// record. Withdrawing an empty ledger pays out zero and changes nothing.
func (uc *FundingUseCase) Withdraw(ctx context.Context, callerID string) (*domain.Withdrawal, error) {
	caller, err := domain.ParseAddress(callerID)
	if err != nil {
		return nil, err
	}

	var withdrawal *domain.Withdrawal
	err = uc.retry(ctx, func() error {
		var err error
		withdrawal, err = uc.withdraw(ctx, caller)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			uc.logger.Warn().Str("caller", caller.String()).Msg("withdrawal attempted by non-owner")
		}
		return nil, err
	}

	uc.recorder.Withdrawn(withdrawal.Amount, withdrawal.FundersCleared)
	uc.recorder.BalanceChanged(decimal.Zero)
	uc.logger.Info().
		Str("withdrawal_id", withdrawal.ID).
		Str("owner", withdrawal.Owner.String()).
		Str("amount", withdrawal.Amount.String()).
		Int("funders_cleared", withdrawal.FundersCleared).
		Msg("ledger withdrawn")

	return withdrawal, nil
}

func (uc *FundingUseCase) withdraw(ctx context.Context, caller domain.Address) (*domain.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ledger, err := uc.ledgerRepo.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := ledger.ValidateWithdrawal(caller); err != nil {
		return nil, err
	}

	if ledger.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s", ErrInconsistentLedger, ledger.Balance)
	}

	now := uc.now().UTC()

	cleared, err := uc.funderRepo.ResetAll(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	withdrawal := &domain.Withdrawal{
		Owner:          ledger.Owner,
		Amount:         ledger.Balance,
		FundersCleared: cleared,
		CreatedAt:      now,
	}

	// Nothing to pay out and nothing to clear.
	if withdrawal.Amount.IsZero() && cleared == 0 {
		return withdrawal, nil
	}

	if err := uc.ledgerRepo.UpdateBalance(ctx, tx, decimal.Zero, now); err != nil {
		return nil, err
	}

	withdrawal.ID = uc.idGen.Generate()
	if err := uc.withdrawalRepo.Create(ctx, tx, withdrawal); err != nil {
		return nil, err
	}

	if err := uc.emit(ctx, tx, ledger.ID, domain.EventTypeLedgerWithdrawn, domain.LedgerWithdrawnEvent{
		WithdrawalID:   withdrawal.ID,
		Owner:          withdrawal.Owner.String(),
		Amount:         withdrawal.Amount.String(),
		FundersCleared: cleared,
		EventAt:        now.Format(time.RFC3339Nano),
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// LedgerView is the public summary of the ledger.
type LedgerView struct {
	Ledger      *domain.Ledger
	FunderCount int64
}

// GetLedger returns the ledger with the current funders list length.
func (uc *FundingUseCase) GetLedger(ctx context.Context) (*LedgerView, error) {
	ledger, err := uc.ledgerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	count, err := uc.funderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &LedgerView{Ledger: ledger, FunderCount: count}, nil
}

// GetPriceFeed returns the configured oracle address.
func (uc *FundingUseCase) GetPriceFeed(ctx context.Context) (string, error) {
	ledger, err := uc.ledgerRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	return ledger.PriceFeed, nil
}

// GetOwner returns the ledger owner.
func (uc *FundingUseCase) GetOwner(ctx context.Context) (domain.Address, error) {
	ledger, err := uc.ledgerRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	return ledger.Owner, nil
}

// GetAddressToAmountFunded returns the recorded contribution of an address,
// zero if it never contributed.
func (uc *FundingUseCase) GetAddressToAmountFunded(ctx context.Context, address string) (decimal.Decimal, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return decimal.Zero, err
	}
	return uc.funderRepo.AmountFunded(ctx, addr)
}

// GetFunder returns the address at index in the funders list.
func (uc *FundingUseCase) GetFunder(ctx context.Context, index int64) (domain.Address, error) {
	if index < 0 {
		return "", domain.ErrFunderIndexOutOfRange
	}
	return uc.funderRepo.GetByIndex(ctx, index)
}

// ListInput represents pagination input.
type ListInput struct {
	Limit  int
	Offset int
}

// ListFunders lists the funders list in contribution order.
func (uc *FundingUseCase) ListFunders(ctx context.Context, input ListInput) ([]domain.Funder, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.funderRepo.List(ctx, limit, offset)
}

// ListContributionsInput represents input for listing contributions.
type ListContributionsInput struct {
	Funder string
	Limit  int
	Offset int
}

// ListContributions lists contribution history, newest first, optionally for one funder.
func (uc *FundingUseCase) ListContributions(ctx context.Context, input ListContributionsInput) ([]*domain.Contribution, error) {
	var funder domain.Address
	if input.Funder != "" {
		addr, err := domain.ParseAddress(input.Funder)
		if err != nil {
			return nil, err
		}
		funder = addr
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.contributionRepo.List(ctx, funder, limit, offset)
}

// ListWithdrawals lists payouts, newest first.
func (uc *FundingUseCase) ListWithdrawals(ctx context.Context, input ListInput) ([]*domain.Withdrawal, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.withdrawalRepo.List(ctx, limit, offset)
}

func (uc *FundingUseCase) readOracle(ctx context.Context) (decimal.Decimal, error) {
	start := time.Now()
	price, err := uc.oracle.LatestPrice(ctx)
	uc.recorder.OracleObserved(time.Since(start), err)

	if err != nil {
		if errors.Is(err, domain.ErrOracleUnavailable) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: invalid answer %s", domain.ErrOracleUnavailable, price)
	}

	return price, nil
}

func (uc *FundingUseCase) emit(ctx context.Context, tx Transaction, ledgerID, eventType string, payload any, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   ledgerID,
		AggregateType: domain.AggregateTypeLedger,
		EventType:     eventType,
		Payload:       domain.MarshalPayload(payload),
		CreatedAt:     now,
	})
}

func (uc *FundingUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}
