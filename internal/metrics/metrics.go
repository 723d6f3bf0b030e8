// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the platform records.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	TransfersInitiated prometheus.Counter
	TransfersConfirmed prometheus.Counter
	OTPFailures        prometheus.Counter
	SettlementActions  *prometheus.CounterVec
	FeeRevenue         *prometheus.CounterVec
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		TransfersInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_transfers_initiated_total",
			Help: "Transfer requests that passed balance validation.",
		}),
		TransfersConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_transfers_confirmed_total",
			Help: "Transfers committed after OTP confirmation.",
		}),
		OTPFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_transfer_otp_failures_total",
			Help: "OTP confirmations rejected for a wrong code.",
		}),
		SettlementActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_settlement_actions_total",
			Help: "Admin settlement transitions by action.",
		}, []string{"action"}),
		FeeRevenue: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_fee_revenue_total",
			Help: "Fee revenue accrued to the platform, by currency.",
		}, []string{"currency"}),
	}
}

// NewNop returns metrics backed by a throwaway registry. Used in tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
