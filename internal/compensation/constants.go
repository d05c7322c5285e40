package compensation

import "time"

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = 30 * time.Second
	DefaultStaleRunAge = 10 * time.Minute
	DefaultScanLimit   = 50
)

// Log messages
const (
	LogMsgClearedStaleRuns      = "cleared stale settlement run markers"
	LogMsgRetryingSettlement    = "retrying settlement for incomplete period"
	LogMsgCompensationSucceeded = "compensation settled period"
	LogMsgRetryBudgetExhausted  = "settlement retry budget exhausted, period parked for operator review"
)

// Error log contexts
const (
	LogMsgFailedToClearStaleRuns  = "failed to clear stale settlement runs"
	LogMsgFailedToScanPeriods     = "failed to scan for incomplete periods"
	LogMsgFailedToLoadRetryRecord = "failed to load settlement retry record"
	LogMsgFailedToRecordAttempt   = "failed to record settlement attempt"
	LogMsgFailedToMarkTerminal    = "failed to mark settlement terminal"
	LogMsgFailedToPublishFailure  = "failed to publish settlement failure event"
)

const (
	ErrMsgSettlerNotBound   = "compensation supervisor has no settlement service bound"
	ErrMsgNoAttemptRecorded = "parked before any retry attempt"
)
