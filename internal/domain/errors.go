package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgPeriodNotFound       = "period not found"
	ErrMsgPeriodExists         = "period already exists"
	ErrMsgPeriodNotClosed      = "period is not closed"
	ErrMsgPeriodAlreadyDrawn   = "period already has a draw result"
	ErrMsgInvalidDrawResult    = "invalid draw result"
	ErrMsgWagerNotFound        = "wager not found"
	ErrMsgWagerAlreadySettled  = "wager already settled"
	ErrMsgUnknownBetKind       = "unknown bet kind"
	ErrMsgMemberNotFound       = "member not found"
	ErrMsgAgentNotFound        = "agent not found"
	ErrMsgBrokenAgentChain     = "broken agent chain"
	ErrMsgSettlementInProgress = "settlement already in progress"
	ErrMsgSettlementTerminal   = "settlement permanently failed"
	ErrMsgDuplicatePosting     = "duplicate ledger posting"
	ErrMsgInsufficientFunds    = "insufficient funds"
	ErrMsgInvalidInput         = "invalid input"

	// ErrMsgTxClosed matches pgx.ErrTxClosed, used to suppress rollback noise
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrPeriodNotFound       = errors.New(ErrMsgPeriodNotFound)
	ErrPeriodExists         = errors.New(ErrMsgPeriodExists)
	ErrPeriodNotClosed      = errors.New(ErrMsgPeriodNotClosed)
	ErrPeriodAlreadyDrawn   = errors.New(ErrMsgPeriodAlreadyDrawn)
	ErrInvalidDrawResult    = errors.New(ErrMsgInvalidDrawResult)
	ErrWagerNotFound        = errors.New(ErrMsgWagerNotFound)
	ErrWagerAlreadySettled  = errors.New(ErrMsgWagerAlreadySettled)
	ErrUnknownBetKind       = errors.New(ErrMsgUnknownBetKind)
	ErrMemberNotFound       = errors.New(ErrMsgMemberNotFound)
	ErrAgentNotFound        = errors.New(ErrMsgAgentNotFound)
	ErrBrokenAgentChain     = errors.New(ErrMsgBrokenAgentChain)
	ErrSettlementInProgress = errors.New(ErrMsgSettlementInProgress)
	ErrSettlementTerminal   = errors.New(ErrMsgSettlementTerminal)
	ErrDuplicatePosting     = errors.New(ErrMsgDuplicatePosting)
	ErrInsufficientFunds    = errors.New(ErrMsgInsufficientFunds)
	ErrInvalidInput         = errors.New(ErrMsgInvalidInput)
)
