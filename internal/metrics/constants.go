package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameDrawsGenerated = "draws_generated_total"
	MetricNameDrawFallbacks  = "draw_fallbacks_total"

	MetricNameSettlementsTotal   = "settlements_total"
	MetricNameSettlementDuration = "settlement_duration_seconds"
	MetricNameWagersSettled      = "wagers_settled_total"
	MetricNamePayoutCents        = "payout_cents_total"
	MetricNameRebateCents        = "rebate_cents_total"
	MetricNameRebateAnomalies    = "rebate_anomalies_total"

	MetricNameCompensationRetries = "compensation_retries_total"
	MetricNameTerminalFailures    = "settlement_terminal_failures_total"

	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Help texts
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextDrawsGenerated = "Draw results generated, by control mode"
	HelpTextDrawFallbacks  = "Biased draw attempts that failed validation and fell back to unbiased"

	HelpTextSettlementsTotal   = "Settlement runs, by outcome status"
	HelpTextSettlementDuration = "Wall time of settlement runs in seconds"
	HelpTextWagersSettled      = "Individual wagers settled"
	HelpTextPayoutCents        = "Total payout credited to members, in cents"
	HelpTextRebateCents        = "Total rebate credited to agents, in cents"
	HelpTextRebateAnomalies    = "Agent chain nodes skipped for non-increasing cumulative caps"

	HelpTextCompensationRetries = "Settlement retries performed by the compensation supervisor"
	HelpTextTerminalFailures    = "Periods whose settlement exhausted the retry budget"

	HelpTextEventsPublished    = "Events published to the bus, by type"
	HelpTextEventHandlerErrors = "Event handler errors, by type"
)

// Labels
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelMode   = "mode"
	LabelType   = "type"
)

// Settlement status label values
const (
	StatusCompleted = "completed"
	StatusNoop      = "noop"
	StatusBusy      = "busy"
	StatusFailed    = "failed"
)

// Histogram buckets
var (
	HTTPLatencyBuckets       = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	SettlementLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)
