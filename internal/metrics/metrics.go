// Package metrics счётчики Prometheus для регистраций, входов,
// изменений premium и HTTP-запросов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Источники изменения premium.
const (
	SourceUnlock      = "unlock"
	SourceAdminGrant  = "admin_grant"
	SourceAdminRevoke = "admin_revoke"
)

// Результаты входа.
const (
	SigninSuccess         = "success"
	SigninNotFound        = "not_found"
	SigninInvalidPassword = "invalid_password"
	SigninInvalidInput    = "invalid_input"
)

var (
	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_signups_total",
			Help: "Total number of created accounts",
		},
	)

	SigninsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_signins_total",
			Help: "Total number of sign-in attempts by result",
		},
		[]string{"result"},
	)

	PremiumChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_premium_changes_total",
			Help: "Total number of premium grants and revocations by source",
		},
		[]string{"source"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gate_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
