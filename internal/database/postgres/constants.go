package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// MaxChainDepth bounds the recursive agent chain walk. The directory is
// maintained elsewhere and a direct update can introduce a cyclic parent_id;
// without a bound that cycle would loop the query forever inside settlement.
const MaxChainDepth = 32

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Period Operations
const (
	ErrMsgFailedToCreatePeriod = "failed to create period"
	ErrMsgFailedToGetPeriod    = "failed to get period"
	ErrMsgFailedToSetResult    = "failed to set period result"
	ErrMsgFailedToGetExposure  = "failed to get period exposure"
	ErrMsgFailedToListUndrawn  = "failed to list undrawn periods"
	ErrMsgInvalidStoredResult  = "invalid stored draw result"
)

// Error Messages - Wager Operations
const (
	ErrMsgFailedToGetWagers   = "failed to get wagers"
	ErrMsgFailedToMarkSettled = "failed to mark wager settled"
)

// Error Messages - Directory Operations
const (
	ErrMsgFailedToGetMember = "failed to get member"
	ErrMsgFailedToGetAgent  = "failed to get agent"
	ErrMsgFailedToGetChain  = "failed to get agent chain"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToInsertPosting = "failed to insert posting"
	ErrMsgFailedToCheckPosting  = "failed to check posting"
	ErrMsgFailedToReadBalance   = "failed to read balance"
	ErrMsgFailedToWriteBalance  = "failed to write balance"
)

// Error Messages - Settlement Operations
const (
	ErrMsgFailedToGetSettlementLog   = "failed to get settlement log"
	ErrMsgFailedToWriteSettlementLog = "failed to write settlement log"
	ErrMsgFailedToAcquireRun         = "failed to acquire settlement run"
	ErrMsgFailedToReleaseRun         = "failed to release settlement run"
	ErrMsgFailedToClearStaleRuns     = "failed to clear stale settlement runs"
	ErrMsgFailedToGetPeriodTotals    = "failed to get period totals"
	ErrMsgFailedToListIncomplete     = "failed to list incomplete periods"
	ErrMsgFailedToGetFailedRecord    = "failed to get failed settlement record"
	ErrMsgFailedToRecordAttempt      = "failed to record settlement attempt"
	ErrMsgFailedToMarkTerminal       = "failed to mark settlement terminal"
	ErrMsgFailedToClearFailedRecord  = "failed to clear failed settlement record"
)

// Error Messages - Policy Operations
const (
	ErrMsgFailedToGetPolicy = "failed to get active policy"
)
