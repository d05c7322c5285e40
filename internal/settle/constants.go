package settle

// DefaultMaxWorkers bounds concurrent per-wager settlement transactions. Kept
// below the database pool size so settlement can never starve the rest of the
// engine of connections.
const DefaultMaxWorkers = 8

// Log messages
const (
	LogMsgPeriodAlreadySettled     = "Period already settled, treating as no-op"
	LogMsgSettlementBusy           = "Settlement already in progress for period"
	LogMsgSettlementComplete       = "Settlement complete"
	LogMsgSettlementFailed         = "Settlement failed, handing period to compensation"
	LogMsgWagerSettleFailed        = "Failed to settle wager"
	LogMsgWagerAlreadySettled      = "Wager already settled by earlier attempt"
	LogMsgOddsAboveCeiling         = "Wager odds above engine ceiling, settling at ceiling"
	LogMsgFailedToReleaseRun       = "Failed to release settlement run marker"
	LogMsgFailedToClearRetryRecord = "Failed to clear failed-settlement record"
	LogMsgFailedToPublishSettled   = "Failed to publish period settled event"
)

// Error context strings
const (
	ErrContextFailedToCheckLog     = "failed to check settlement log"
	ErrContextFailedToAcquireRun   = "failed to acquire settlement run"
	ErrContextFailedToLoadPeriod   = "failed to load period"
	ErrContextFailedToLoadWagers   = "failed to load unsettled wagers"
	ErrContextFailedToLoadTotals   = "failed to load period totals"
	ErrContextFailedToWriteLog     = "failed to write settlement log"
	ErrContextPartialSettlement    = "period partially settled"
	ErrContextFailedToEvaluate     = "failed to evaluate wager"
	ErrContextFailedToBeginTx      = "failed to begin settlement transaction"
	ErrContextFailedToCommitTx     = "failed to commit settlement transaction"
	ErrContextFailedToMarkSettled  = "failed to mark wager settled"
	ErrContextFailedToCreditPayout = "failed to credit payout"
	ErrContextFailedToDistribute   = "failed to distribute rebate"
)
