package metrics

import (
	"context"
	"time"

	"starsbot/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "starsbot"

// Metrics holds the Prometheus collectors of the bot
type Metrics struct {
	balanceChanges     *prometheus.CounterVec
	starsMoved         *prometheus.CounterVec
	accountsCreated    prometheus.Counter
	referralsConfirmed prometheus.Counter
	codeRedemptions    *prometheus.CounterVec
	taskRewards        prometheus.Counter
	wagers             *prometheus.CounterVec
	withdrawals        *prometheus.CounterVec
	oracleRequests     *prometheus.CounterVec
	oracleLatency      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		balanceChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "balance_changes_total",
			Help:      "Committed balance changes by transaction type.",
		}, []string{"type"}),
		starsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "stars_total",
			Help:      "Absolute amount of stars moved by committed balance changes.",
		}, []string{"type"}),
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "accounts_created_total",
			Help:      "Accounts created on first contact.",
		}),
		referralsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "referrals_confirmed_total",
			Help:      "Referrals confirmed after the referred user's first task.",
		}),
		codeRedemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redemption",
			Name:      "redemptions_total",
			Help:      "Promo code and check activations by kind.",
		}, []string{"kind"}),
		taskRewards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "rewards_total",
			Help:      "Task rewards paid out.",
		}),
		wagers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "wagers_total",
			Help:      "Settled slot wagers by outcome.",
		}, []string{"outcome"}),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "withdrawals",
			Name:      "transitions_total",
			Help:      "Withdrawal requests by status reached.",
		}, []string{"status"}),
		oracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Task API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Task API call latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		m.balanceChanges,
		m.starsMoved,
		m.accountsCreated,
		m.referralsConfirmed,
		m.codeRedemptions,
		m.taskRewards,
		m.wagers,
		m.withdrawals,
		m.oracleRequests,
		m.oracleLatency,
	)
	return m
}

// Subscribe counts committed domain events from the bus
func (m *Metrics) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, m.handleBalanceChange)
	bus.Subscribe(events.EventTypeAccountCreated, func(context.Context, events.Event) {
		m.accountsCreated.Inc()
	})
	bus.Subscribe(events.EventTypeReferralConfirmed, func(context.Context, events.Event) {
		m.referralsConfirmed.Inc()
	})
	bus.Subscribe(events.EventTypeCodeRedeemed, func(_ context.Context, e events.Event) {
		if evt, ok := e.(events.CodeRedeemedEvent); ok {
			m.codeRedemptions.WithLabelValues(string(evt.Kind)).Inc()
		}
	})
	bus.Subscribe(events.EventTypeTaskRewarded, func(context.Context, events.Event) {
		m.taskRewards.Inc()
	})
	bus.Subscribe(events.EventTypeWagerSettled, func(_ context.Context, e events.Event) {
		if evt, ok := e.(events.WagerSettledEvent); ok {
			outcome := "loss"
			if evt.Won {
				outcome = "win"
			}
			m.wagers.WithLabelValues(outcome).Inc()
		}
	})
	bus.Subscribe(events.EventTypeWithdrawalRequested, func(context.Context, events.Event) {
		m.withdrawals.WithLabelValues("pending").Inc()
	})
	bus.Subscribe(events.EventTypeWithdrawalResolved, func(_ context.Context, e events.Event) {
		if evt, ok := e.(events.WithdrawalResolvedEvent); ok {
			m.withdrawals.WithLabelValues(string(evt.Status)).Inc()
		}
	})
}

func (m *Metrics) handleBalanceChange(_ context.Context, e events.Event) {
	evt, ok := e.(events.BalanceChangeEvent)
	if !ok {
		return
	}
	amount := evt.ChangeAmount
	if amount < 0 {
		amount = -amount
	}
	m.balanceChanges.WithLabelValues(string(evt.TransactionType)).Inc()
	m.starsMoved.WithLabelValues(string(evt.TransactionType)).Add(float64(amount))
}

// ObserveOracle records one task API call
func (m *Metrics) ObserveOracle(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.oracleRequests.WithLabelValues(endpoint, outcome).Inc()
	m.oracleLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}
