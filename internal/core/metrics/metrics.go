// Package metrics holds the Prometheus collectors shared by the ledger,
// the provider registry and the flow orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "callflow"

var (
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Provider invocations by provider, operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of provider invocations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "operation"})

	CreditReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_reservations_total",
		Help:      "Credit reservation attempts by plan type and outcome.",
	}, []string{"plan_type", "outcome"})

	FlowActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_actions_total",
		Help:      "Actions triggered by missed-call orchestration.",
	}, []string{"action"})

	FlowErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_errors_total",
		Help:      "Failed orchestration branches.",
	}, []string{"branch"})
)

// Outcome labels
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeExhausted   = "exhausted"
)
