package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the ledger's Prometheus metrics. It implements
// usecase.Recorder.
type Metrics struct {
	// Funding metrics
	ContributionsAccepted prometheus.Counter
	ContributionsRejected *prometheus.CounterVec
	ContributionAmount    prometheus.Histogram
	ContributionUSD       prometheus.Histogram

	// Withdrawal metrics
	Withdrawals     prometheus.Counter
	WithdrawnAmount prometheus.Counter
	FundersCleared  prometheus.Counter
	LedgerBalance   prometheus.Gauge

	// Oracle metrics
	OracleReads    *prometheus.CounterVec
	OracleDuration prometheus.Histogram

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ContributionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundme_contributions_accepted_total",
			Help: "Total number of accepted contributions",
		}),
		ContributionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundme_contributions_rejected_total",
				Help: "Total number of rejected contributions by reason",
			},
			[]string{"reason"},
		),
		ContributionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundme_contribution_amount",
			Help:    "Accepted contribution amounts in native units",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.5, 1, 5, 10, 100},
		}),
		ContributionUSD: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundme_contribution_usd",
			Help:    "Accepted contribution values in USD",
			Buckets: []float64{50, 100, 250, 500, 1000, 5000, 10000, 100000},
		}),

		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundme_withdrawals_total",
			Help: "Total number of withdrawals",
		}),
		WithdrawnAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundme_withdrawn_amount_total",
			Help: "Total amount paid out to the owner",
		}),
		FundersCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundme_funders_cleared_total",
			Help: "Total funders list entries cleared by withdrawals",
		}),
		LedgerBalance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fundme_ledger_balance",
			Help: "Current ledger balance in native units",
		}),

		OracleReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundme_oracle_reads_total",
				Help: "Total price oracle reads by status",
			},
			[]string{"status"},
		),
		OracleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundme_oracle_duration_seconds",
			Help:    "Price oracle read duration",
			Buckets: prometheus.DefBuckets,
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundme_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// ContributionAccepted records an accepted contribution.
func (m *Metrics) ContributionAccepted(amount, usdValue decimal.Decimal) {
	m.ContributionsAccepted.Inc()
	m.ContributionAmount.Observe(amount.InexactFloat64())
	m.ContributionUSD.Observe(usdValue.InexactFloat64())
}

// ContributionRejected records a rejected contribution.
func (m *Metrics) ContributionRejected(reason string) {
	m.ContributionsRejected.WithLabelValues(reason).Inc()
}

// Withdrawn records a payout.
func (m *Metrics) Withdrawn(amount decimal.Decimal, fundersCleared int) {
	m.Withdrawals.Inc()
	m.WithdrawnAmount.Add(amount.InexactFloat64())
	m.FundersCleared.Add(float64(fundersCleared))
}

// OracleObserved records an oracle read.
func (m *Metrics) OracleObserved(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OracleReads.WithLabelValues(status).Inc()
	m.OracleDuration.Observe(d.Seconds())
}

// BalanceChanged sets the balance gauge.
func (m *Metrics) BalanceChanged(balance decimal.Decimal) {
	m.LedgerBalance.Set(balance.InexactFloat64())
}
