package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway transaction metrics
	gatewayTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_gateway_transactions_total",
			Help: "Total number of gateway transactions",
		},
		[]string{"operation", "outcome"},
	)

	gatewayTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "argus_gateway_transaction_duration_seconds",
			Help:    "Duration of gateway transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	gatewayTransactionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "argus_gateway_transactions_in_flight",
			Help: "Number of gateway transactions currently being processed",
		},
	)
)

// Transaction outcomes recorded against gatewayTransactionsTotal
const (
	OutcomeApproved       = "approved"
	OutcomeDeclined       = "declined"
	OutcomeRemoteError    = "remote_error"
	OutcomeTransportError = "transport_error"
	OutcomeInvalidRequest = "invalid_request"
)

// TrackTransaction marks a transaction in flight and returns a function that
// records its outcome and duration when called
func TrackTransaction(operation string) func(outcome string) {
	start := time.Now()
	gatewayTransactionsInFlight.Inc()

	return func(outcome string) {
		gatewayTransactionsInFlight.Dec()
		gatewayTransactionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		gatewayTransactionsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
