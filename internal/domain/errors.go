package domain

import "errors"

var (
	// Funding errors
	ErrInsufficientContribution = errors.New("You need to spend more ETH!")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrOracleUnavailable        = errors.New("price oracle unavailable")

	// Withdrawal errors
	ErrNotOwner = errors.New("FundMe_NotOwner")

	// Lookup errors
	ErrFunderIndexOutOfRange = errors.New("funder index out of range")
	ErrLedgerNotFound        = errors.New("ledger not found")

	// Setup errors
	ErrLedgerAlreadyInitialized = errors.New("ledger already initialized")

	// Identity errors
	ErrInvalidAddress = errors.New("invalid address")
)
