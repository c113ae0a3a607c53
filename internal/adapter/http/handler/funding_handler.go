package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/adapter/http/dto"
	"github.com/iho/fundme/internal/adapter/http/middleware"
	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// FundingService defines the behavior needed by FundingHandler.
type FundingService interface {
	Fund(ctx context.Context, input usecase.FundInput) (*domain.Contribution, error)
	Withdraw(ctx context.Context, callerID string) (*domain.Withdrawal, error)
	GetLedger(ctx context.Context) (*usecase.LedgerView, error)
	GetPriceFeed(ctx context.Context) (string, error)
	GetAddressToAmountFunded(ctx context.Context, address string) (decimal.Decimal, error)
	GetFunder(ctx context.Context, index int64) (domain.Address, error)
	ListFunders(ctx context.Context, input usecase.ListInput) ([]domain.Funder, error)
	ListContributions(ctx context.Context, input usecase.ListContributionsInput) ([]*domain.Contribution, error)
	ListWithdrawals(ctx context.Context, input usecase.ListInput) ([]*domain.Withdrawal, error)
	Quote(ctx context.Context, amount decimal.Decimal) (*usecase.Quote, error)
}

// FundingHandler handles funding HTTP requests.
type FundingHandler struct {
	fundingUC FundingService
}

// NewFundingHandler creates a new FundingHandler.
func NewFundingHandler(fundingUC FundingService) *FundingHandler {
	return &FundingHandler{fundingUC: fundingUC}
}

// Fund accepts a contribution from the caller.
func (h *FundingHandler) Fund(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing caller")
		return
	}

	var req dto.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.String())
	if err != nil {
		writeDomainError(w, "invalid amount", err)
		return
	}

	contribution, err := h.fundingUC.Fund(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to fund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ContributionFromDomain(contribution))
}

// Withdraw pays the balance out to the caller, who must be the owner.
func (h *FundingHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing caller")
		return
	}

	withdrawal, err := h.fundingUC.Withdraw(r.Context(), caller.String())
	if err != nil {
		writeDomainError(w, "failed to withdraw", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}

// Ledger returns the ledger summary.
func (h *FundingHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	view, err := h.fundingUC.GetLedger(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromView(view))
}

// PriceFeed returns the oracle address.
func (h *FundingHandler) PriceFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.fundingUC.GetPriceFeed(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get price feed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PriceFeedResponse{PriceFeed: feed})
}

// Quote values ?amount= at the current price.
func (h *FundingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	amount, err := dto.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeDomainError(w, "invalid amount", err)
		return
	}

	quote, err := h.fundingUC.Quote(r.Context(), amount)
	if err != nil {
		writeDomainError(w, "failed to quote", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromUseCase(quote))
}

// Funder returns the address at {index} in the funders list.
func (h *FundingHandler) Funder(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseInt(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid funder index", err.Error())
		return
	}

	addr, err := h.fundingUC.GetFunder(r.Context(), index)
	if err != nil {
		writeDomainError(w, "failed to get funder", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FunderResponse{Index: index, Address: addr.String()})
}

// Funders lists the funders list.
func (h *FundingHandler) Funders(w http.ResponseWriter, r *http.Request) {
	funders, err := h.fundingUC.ListFunders(r.Context(), usecase.ListInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list funders", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListFundersResponse{
		Funders: dto.FundersFromDomain(funders),
		Total:   int64(len(funders)),
	})
}

// Funded returns the amount recorded for {address}.
func (h *FundingHandler) Funded(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	amount, err := h.fundingUC.GetAddressToAmountFunded(r.Context(), address)
	if err != nil {
		writeDomainError(w, "failed to get funded amount", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundedResponse{
		Address: domain.Address(address).Normalize().String(),
		Amount:  amount,
	})
}

// Contributions lists contribution history, optionally filtered by ?funder=.
func (h *FundingHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.fundingUC.ListContributions(r.Context(), usecase.ListContributionsInput{
		Funder: r.URL.Query().Get("funder"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list contributions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListContributionsResponse{
		Contributions: dto.ContributionsFromDomain(contributions),
		Total:         int64(len(contributions)),
	})
}

// Withdrawals lists payout history.
func (h *FundingHandler) Withdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.fundingUC.ListWithdrawals(r.Context(), usecase.ListInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list withdrawals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWithdrawalsResponse{
		Withdrawals: dto.WithdrawalsFromDomain(withdrawals),
		Total:       int64(len(withdrawals)),
	})
}
