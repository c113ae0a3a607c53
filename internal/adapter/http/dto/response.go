package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// LedgerResponse represents the ledger summary.
type LedgerResponse struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	PriceFeed   string          `json:"price_feed"`
	MinimumUSD  decimal.Decimal `json:"minimum_usd"`
	Balance     decimal.Decimal `json:"balance"`
	FunderCount int64           `json:"funder_count"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LedgerFromView converts a ledger view to response.
func LedgerFromView(v *usecase.LedgerView) *LedgerResponse {
	l := v.Ledger
	return &LedgerResponse{
		ID:          l.ID,
		Owner:       l.Owner.String(),
		PriceFeed:   l.PriceFeed,
		MinimumUSD:  l.MinimumUSD,
		Balance:     l.Balance,
		FunderCount: v.FunderCount,
		Version:     l.Version,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ContributionResponse represents an accepted contribution.
type ContributionResponse struct {
	ID        string          `json:"id"`
	Funder    string          `json:"funder"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	USDValue  decimal.Decimal `json:"usd_value"`
	CreatedAt time.Time       `json:"created_at"`
}

// ContributionFromDomain converts domain contribution to response.
func ContributionFromDomain(c *domain.Contribution) *ContributionResponse {
	return &ContributionResponse{
		ID:        c.ID,
		Funder:    c.Funder.String(),
		Amount:    c.Amount,
		Price:     c.Price,
		USDValue:  c.USDValue,
		CreatedAt: c.CreatedAt,
	}
}

// ContributionsFromDomain converts domain contributions to responses.
func ContributionsFromDomain(contributions []*domain.Contribution) []*ContributionResponse {
	result := make([]*ContributionResponse, len(contributions))
	for i, c := range contributions {
		result[i] = ContributionFromDomain(c)
	}
	return result
}

// ListContributionsResponse represents a page of contributions.
type ListContributionsResponse struct {
	Contributions []*ContributionResponse `json:"contributions"`
	Total         int64                   `json:"total"`
}

// WithdrawalResponse represents a payout. ID is empty when the ledger was
// already empty and nothing was recorded.
type WithdrawalResponse struct {
	ID             string          `json:"id,omitempty"`
	Owner          string          `json:"owner"`
	Amount         decimal.Decimal `json:"amount"`
	FundersCleared int             `json:"funders_cleared"`
	CreatedAt      time.Time       `json:"created_at"`
}

// WithdrawalFromDomain converts domain withdrawal to response.
func WithdrawalFromDomain(w *domain.Withdrawal) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:             w.ID,
		Owner:          w.Owner.String(),
		Amount:         w.Amount,
		FundersCleared: w.FundersCleared,
		CreatedAt:      w.CreatedAt,
	}
}

// ListWithdrawalsResponse represents a page of withdrawals.
type ListWithdrawalsResponse struct {
	Withdrawals []*WithdrawalResponse `json:"withdrawals"`
	Total       int64                 `json:"total"`
}

// WithdrawalsFromDomain converts domain withdrawals to responses.
func WithdrawalsFromDomain(withdrawals []*domain.Withdrawal) []*WithdrawalResponse {
	result := make([]*WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		result[i] = WithdrawalFromDomain(w)
	}
	return result
}

// FunderResponse is one position in the funders list.
type FunderResponse struct {
	Index   int64  `json:"index"`
	Address string `json:"address"`
}

// ListFundersResponse represents a page of the funders list.
type ListFundersResponse struct {
	Funders []FunderResponse `json:"funders"`
	Total   int64            `json:"total"`
}

// FundersFromDomain converts domain funders to responses.
func FundersFromDomain(funders []domain.Funder) []FunderResponse {
	result := make([]FunderResponse, len(funders))
	for i, f := range funders {
		result[i] = FunderResponse{Index: f.Index, Address: f.Address.String()}
	}
	return result
}

// FundedResponse is the recorded contribution of one address.
type FundedResponse struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

// PriceFeedResponse carries the configured oracle address.
type PriceFeedResponse struct {
	PriceFeed string `json:"price_feed"`
}

// QuoteResponse represents a USD valuation.
type QuoteResponse struct {
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	USDValue      decimal.Decimal `json:"usd_value"`
	MinimumUSD    decimal.Decimal `json:"minimum_usd"`
	MinimumAmount decimal.Decimal `json:"minimum_amount"`
	MeetsMinimum  bool            `json:"meets_minimum"`
}

// QuoteFromUseCase converts a quote to response.
func QuoteFromUseCase(q *usecase.Quote) *QuoteResponse {
	return &QuoteResponse{
		Amount:        q.Amount,
		Price:         q.Price,
		USDValue:      q.USDValue,
		MinimumUSD:    q.MinimumUSD,
		MinimumAmount: q.MinimumAmount,
		MeetsMinimum:  q.MeetsMinimum,
	}
}

// ConsistencyResponse is the outcome of a consistency check.
type ConsistencyResponse struct {
	Status      string          `json:"status"`
	Consistent  bool            `json:"consistent"`
	Balance     decimal.Decimal `json:"balance"`
	TotalFunded decimal.Decimal `json:"total_funded"`
	CheckedAt   time.Time       `json:"checked_at"`
	Message     string          `json:"message,omitempty"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:      status,
		Consistent:  r.Consistent,
		Balance:     r.Balance,
		TotalFunded: r.TotalFunded,
		CheckedAt:   r.CheckedAt,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
