// Package oracle provides price sources for the funding ledger.
package oracle

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimals is the precision of aggregator answers.
	DefaultDecimals = 8
	// DefaultAnswer is 2000 USD at DefaultDecimals.
	DefaultAnswer int64 = 2000_00000000
	// DefaultStaticAddress identifies the built-in aggregator.
	DefaultStaticAddress = "static-aggregator"
)

// StaticAggregator is an in-process price source holding a fixed-point
// answer, in the style of an on-chain aggregator. Tests and local runs use it.
type StaticAggregator struct {
	mu       sync.RWMutex
	address  string
	answer   int64
	decimals int32
}

// NewStaticAggregator creates an aggregator reporting answer / 10^decimals.
func NewStaticAggregator(address string, answer int64, decimals int32) *StaticAggregator {
	if address == "" {
		address = DefaultStaticAddress
	}
	return &StaticAggregator{
		address:  address,
		answer:   answer,
		decimals: decimals,
	}
}

// NewDefaultAggregator reports 2000 USD per unit.
func NewDefaultAggregator() *StaticAggregator {
	return NewStaticAggregator(DefaultStaticAddress, DefaultAnswer, DefaultDecimals)
}

// LatestPrice returns the scaled answer. A non-positive answer is returned
// as is; callers reject it.
func (a *StaticAggregator) LatestPrice(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return decimal.New(a.answer, -a.decimals), nil
}

// UpdateAnswer replaces the raw answer.
func (a *StaticAggregator) UpdateAnswer(answer int64) {
	a.mu.Lock()
	a.answer = answer
	a.mu.Unlock()
}

// Decimals returns the answer precision.
func (a *StaticAggregator) Decimals() int32 {
	return a.decimals
}

// Address returns the aggregator identifier.
func (a *StaticAggregator) Address() string {
	return a.address
}
