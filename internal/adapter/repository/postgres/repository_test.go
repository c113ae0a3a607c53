package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

var ledgerColumns = []string{"id", "singleton", "owner", "price_feed", "minimum_usd", "balance", "version", "created_at", "updated_at"}

func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func ts(t time.Time) pgtype.Timestamptz {
	return timeToPgTimestamptz(t)
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestLedgerRepository_GetForUpdate(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()
	tx := beginTx(t, pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM ledgers WHERE singleton FOR UPDATE")).
		WillReturnRows(pgxmock.NewRows(ledgerColumns).
			AddRow("ledger-1", true, "0xowner", "static-aggregator", num("50"), num("0.1"), int64(2), ts(now), ts(now)))

	ledger, err := NewLedgerRepository(pool).GetForUpdate(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "ledger-1", ledger.ID)
	assert.Equal(t, domain.Address("0xowner"), ledger.Owner)
	assert.True(t, ledger.Balance.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, ledger.MinimumUSD.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(2), ledger.Version)

	assertExpectations(t, pool)
}

func TestLedgerRepository_GetMissing(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery(regexp.QuoteMeta("FROM ledgers WHERE singleton")).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewLedgerRepository(pool).Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)

	assertExpectations(t, pool)
}

func TestLedgerRepository_UpdateBalance(t *testing.T) {
	pool := newMockPool(t)
	repo := NewLedgerRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE ledgers SET balance")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE ledgers SET balance")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdateBalance(context.Background(), tx, decimal.NewFromInt(1), time.Now()))
	assert.ErrorIs(t, repo.UpdateBalance(context.Background(), tx, decimal.NewFromInt(1), time.Now()), domain.ErrLedgerNotFound)

	assertExpectations(t, pool)
}

func TestFunderRepository_AppendAndReset(t *testing.T) {
	pool := newMockPool(t)
	repo := NewFunderRepository(pool)
	tx := beginTx(t, pool)
	ctx := context.Background()

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO funder_amounts")).
		WithArgs("0xa", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO funders")).
		WithArgs("0xa", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(int64(4)))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE funder_amounts SET amount = 0")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM funders")).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	require.NoError(t, repo.AddAmount(ctx, tx, "0xa", decimal.RequireFromString("0.1"), time.Now()))

	position, err := repo.Append(ctx, tx, "0xa", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), position)

	cleared, err := repo.ResetAll(ctx, tx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 5, cleared)

	assertExpectations(t, pool)
}

func TestFunderRepository_Reads(t *testing.T) {
	pool := newMockPool(t)
	repo := NewFunderRepository(pool)
	ctx := context.Background()
	now := time.Now()

	pool.ExpectQuery(regexp.QuoteMeta("SELECT amount FROM funder_amounts")).
		WithArgs("0xa").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(num("0.25")))
	pool.ExpectQuery(regexp.QuoteMeta("SELECT amount FROM funder_amounts")).
		WithArgs("0xnew").
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery(regexp.QuoteMeta("SELECT address FROM funders WHERE position")).
		WithArgs(int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"address"}).AddRow("0xa"))
	pool.ExpectQuery(regexp.QuoteMeta("SELECT address FROM funders WHERE position")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM funders")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	pool.ExpectQuery(regexp.QuoteMeta("FROM funders ORDER BY position")).
		WithArgs(int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"position", "address", "created_at"}).
			AddRow(int64(0), "0xa", ts(now)).
			AddRow(int64(1), "0xa", ts(now)))
	amount, err := repo.AmountFunded(ctx, "0xa")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.25")))

	amount, err = repo.AmountFunded(ctx, "0xnew")
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	addr, err := repo.GetByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("0xa"), addr)

	_, err = repo.GetByIndex(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrFunderIndexOutOfRange)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	funders, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, funders, 2)
	assert.Equal(t, int64(1), funders[1].Index)

	assertExpectations(t, pool)
}

func TestFunderRepository_TotalFundedInTx(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(amount), 0)")).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(num("0.25")))

	total, err := NewFunderRepository(pool).TotalFunded(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.25")))

	_, err = NewFunderRepository(pool).TotalFunded(context.Background(), nil)
	assert.ErrorIs(t, err, ErrForeignTransaction)

	assertExpectations(t, pool)
}

func TestHistoryRepositories(t *testing.T) {
	pool := newMockPool(t)
	ctx := context.Background()
	now := time.Now()
	contributions := NewContributionRepository(pool)
	withdrawals := NewWithdrawalRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO contributions")).
		WithArgs("c1", "0xa", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO withdrawals")).
		WithArgs("w1", "0xowner", pgxmock.AnyArg(), int32(3), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectQuery(regexp.QuoteMeta("FROM contributions")).
		WithArgs("0xa", int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "funder", "amount", "price", "usd_value", "created_at"}).
			AddRow("c1", "0xa", num("0.1"), num("2000"), num("200"), ts(now)))
	pool.ExpectQuery(regexp.QuoteMeta("FROM withdrawals")).
		WithArgs(int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "amount", "funders_cleared", "created_at"}).
			AddRow("w1", "0xowner", num("0.1"), int32(3), ts(now)))

	require.NoError(t, contributions.Create(ctx, tx, &domain.Contribution{
		ID:       "c1",
		Funder:   "0xa",
		Amount:   decimal.RequireFromString("0.1"),
		Price:    decimal.NewFromInt(2000),
		USDValue: decimal.NewFromInt(200),
	}))
	require.NoError(t, withdrawals.Create(ctx, tx, &domain.Withdrawal{
		ID:             "w1",
		Owner:          "0xowner",
		Amount:         decimal.RequireFromString("0.1"),
		FundersCleared: 3,
	}))

	cs, err := contributions.List(ctx, "0xa", 20, 0)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].USDValue.Equal(decimal.NewFromInt(200)))

	ws, err := withdrawals.List(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, 3, ws[0].FundersCleared)

	assertExpectations(t, pool)
}

func TestOutboxRepository(t *testing.T) {
	pool := newMockPool(t)
	ctx := context.Background()
	now := time.Now()
	repo := NewOutboxRepository(pool)
	tx := beginTx(t, pool)

	payload, err := json.Marshal(map[string]any{"amount": "0.1"})
	require.NoError(t, err)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("evt-1", "ledger-1", domain.AggregateTypeLedger, domain.EventTypeLedgerFunded, payload, pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("evt-1", "ledger-1", domain.AggregateTypeLedger, domain.EventTypeLedgerFunded, payload, ts(now), pgtype.Timestamptz{}, false))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events SET published = TRUE")).
		WithArgs("evt-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM outbox_events")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "ledger-1",
		AggregateType: domain.AggregateTypeLedger,
		EventType:     domain.EventTypeLedgerFunded,
		Payload:       map[string]any{"amount": "0.1"},
		CreatedAt:     now,
	}))

	events, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "0.1", events[0].Payload["amount"])
	assert.Nil(t, events[0].PublishedAt)

	require.NoError(t, repo.MarkPublished(ctx, "evt-1", now))
	require.NoError(t, repo.DeletePublished(ctx, now))

	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.1", "0.025", "123456789.000000000000000001", "-5"} {
		d := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(d))
		assert.True(t, got.Equal(d), "%s round-tripped to %s", s, got)
	}
	assert.True(t, numericToDecimal(pgtype.Numeric{}).IsZero())
}

func TestLedgerRepository_CreateTwice(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO ledgers")).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := NewLedgerRepository(pool).Create(context.Background(), tx, &domain.Ledger{ID: "ledger-2", Owner: "0xowner"})
	assert.ErrorIs(t, err, domain.ErrLedgerAlreadyInitialized)

	assertExpectations(t, pool)
}
