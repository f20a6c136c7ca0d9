package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vouchersPostedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "vouchers_posted_total",
		Help:      "Number of vouchers posted.",
	})
	vouchersUnpostedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "vouchers_unposted_total",
		Help:      "Number of vouchers unposted.",
	})
	paymentsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "payments_executed_total",
		Help:      "Number of payable records settled, by kind.",
	}, []string{"kind"})
	reconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "reconciliations_total",
		Help:      "Statement item link changes, by action.",
	}, []string{"action"})
	conflictRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "conflict_retries_total",
		Help:      "Operations retried after a concurrent modification.",
	}, []string{"operation"})
)
