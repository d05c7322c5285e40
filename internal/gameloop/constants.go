package gameloop

import "time"

const (
	DefaultDrawInterval   = 5 * time.Minute
	DefaultSettleTimeout  = 30 * time.Second
	DefaultMaxDrawsPerDay = 288

	// RedrawScanLimit caps how many stranded periods one cycle recovers.
	RedrawScanLimit = 10
)

// Log messages
const (
	LogMsgLoopStarted              = "game loop started"
	LogMsgLoopStopped              = "game loop stopped"
	LogMsgCycleCompleted           = "draw cycle completed"
	LogMsgOpenedFirstPeriod        = "opened first period"
	LogMsgOpenedPeriod             = "opened next period"
	LogMsgDrawRecorded             = "draw result recorded"
	LogMsgResultAlreadyRecorded    = "draw result already recorded by another node"
	LogMsgSettlementAlreadyRunning = "settlement already running elsewhere, moving on"
	LogMsgSettlementTimedOut       = "settlement exceeded cycle timeout, left to compensation"
	LogMsgSettlementFailed         = "settlement failed, left to compensation"
	LogMsgCycleFailed              = "draw cycle failed"
	LogMsgFailedToLoadPolicy       = "failed to load control policy, drawing unbiased"
	LogMsgFailedToLoadExposure     = "failed to load period exposure, drawing unbiased"
	LogMsgFailedToLoadTargetWagers = "failed to load control target wagers"
	LogMsgFailedToPublishDraw      = "failed to publish draw result"
	LogMsgFailedToScanUndrawn      = "failed to scan for stranded undrawn periods"
	LogMsgRedrawingStrandedPeriod  = "re-drawing period stranded without a result"
	LogMsgRedrawFailed             = "failed to re-draw stranded period"
)

// Error contexts
const (
	ErrContextEnsureOpenPeriod  = "failed to open initial period"
	ErrContextLoadCurrentPeriod = "failed to load current period"
	ErrContextOpenNextPeriod    = "failed to open next period"
	ErrContextRecordResult      = "failed to record draw result"
)
