package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsValidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "processor_transactions_validated_total",
		Help: "Validation outcomes by result.",
	}, []string{"outcome"})

	transactionsAuthorized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "processor_transactions_authorized_total",
		Help: "Authorization outcomes by result.",
	}, []string{"outcome"})

	transactionsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "processor_transactions_settled_total",
		Help: "Transactions accepted into a settlement batch.",
	})

	pendingTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "processor_pending_transactions",
		Help: "Transactions currently awaiting settlement.",
	})
)
