package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/usecase"
)

var _ usecase.Recorder = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)
	m.ContributionRejected("insufficient_contribution")
	m.OracleObserved(time.Millisecond, nil)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorder(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ContributionAccepted(decimal.RequireFromString("0.1"), decimal.NewFromInt(200))
	m.ContributionAccepted(decimal.RequireFromString("0.2"), decimal.NewFromInt(400))
	m.ContributionRejected("insufficient_contribution")
	m.BalanceChanged(decimal.RequireFromString("0.3"))
	m.Withdrawn(decimal.RequireFromString("0.3"), 2)
	m.BalanceChanged(decimal.Zero)
	m.OracleObserved(time.Millisecond, errors.New("down"))

	if got := testutil.ToFloat64(m.ContributionsAccepted); got != 2 {
		t.Fatalf("expected 2 accepted contributions, got %v", got)
	}
	if got := testutil.ToFloat64(m.ContributionsRejected.WithLabelValues("insufficient_contribution")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.FundersCleared); got != 2 {
		t.Fatalf("expected 2 funders cleared, got %v", got)
	}
	if got := testutil.ToFloat64(m.LedgerBalance); got != 0 {
		t.Fatalf("expected zero balance gauge, got %v", got)
	}
	if got := testutil.ToFloat64(m.OracleReads.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed oracle read, got %v", got)
	}
}
