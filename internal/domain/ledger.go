package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountKind discriminates who a posting credits or debits.
type AccountKind string

const (
	AccountMember AccountKind = "member"
	AccountAgent  AccountKind = "agent"
)

// PostingType classifies a ledger posting.
type PostingType string

const (
	PostingStake  PostingType = "stake"
	PostingPayout PostingType = "payout"
	PostingRebate PostingType = "rebate"
)

// Posting is an immutable ledger fact. It is both the balance mutation
// mechanism and the durable idempotency witness: the existence of a posting
// for a given (period, wager, account, type) key means the credit has already
// been applied and must not be re-emitted.
type Posting struct {
	ID            uuid.UUID   `json:"id"`
	PeriodID      PeriodID    `json:"period_id"`
	WagerID       *uuid.UUID  `json:"wager_id,omitempty"`
	AccountKind   AccountKind `json:"account_kind"`
	AccountID     uuid.UUID   `json:"account_id"`
	Type          PostingType `json:"type"`
	Amount        int64       `json:"amount"`
	BalanceBefore int64       `json:"balance_before"`
	BalanceAfter  int64       `json:"balance_after"`
	CreatedAt     time.Time   `json:"created_at"`
}

// SettlementLog is the authoritative "this period is done" record, unique per
// period. It is written only after every wager of the period has been settled.
type SettlementLog struct {
	PeriodID     PeriodID   `json:"period_id"`
	Result       DrawResult `json:"result"`
	SettledCount int        `json:"settled_count"`
	WinCount     int        `json:"win_count"`
	TotalPayout  int64      `json:"total_payout"`
	TotalRebate  int64      `json:"total_rebate"`
	CompletedAt  time.Time  `json:"completed_at"`
}

// SettlementTotals aggregates a period's settled wagers and rebate postings
// straight from the store, so a resumed settlement writes accurate log totals
// even when an earlier attempt already settled part of the period.
type SettlementTotals struct {
	SettledCount int   `json:"settled_count"`
	WinCount     int   `json:"win_count"`
	TotalPayout  int64 `json:"total_payout"`
	TotalRebate  int64 `json:"total_rebate"`
}

// FailedSettlement is the durable retry record for a period whose settlement
// did not complete. Terminal records require operator intervention.
type FailedSettlement struct {
	PeriodID  PeriodID  `json:"period_id"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	Terminal  bool      `json:"terminal"`
	UpdatedAt time.Time `json:"updated_at"`
}
