package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Draw Metrics
var (
	DrawsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDrawsGenerated,
			Help: HelpTextDrawsGenerated,
		},
		[]string{LabelMode},
	)

	DrawFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDrawFallbacks,
			Help: HelpTextDrawFallbacks,
		},
		[]string{LabelMode},
	)
)

// Settlement Metrics
var (
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSettlementsTotal,
			Help: HelpTextSettlementsTotal,
		},
		[]string{LabelStatus},
	)

	SettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameSettlementDuration,
			Help:    HelpTextSettlementDuration,
			Buckets: SettlementLatencyBuckets,
		},
	)

	WagersSettled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameWagersSettled,
			Help: HelpTextWagersSettled,
		},
	)

	PayoutCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePayoutCents,
			Help: HelpTextPayoutCents,
		},
	)

	RebateCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRebateCents,
			Help: HelpTextRebateCents,
		},
	)

	RebateAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRebateAnomalies,
			Help: HelpTextRebateAnomalies,
		},
	)
)

// Compensation Metrics
var (
	CompensationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCompensationRetries,
			Help: HelpTextCompensationRetries,
		},
	)

	TerminalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTerminalFailures,
			Help: HelpTextTerminalFailures,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)
