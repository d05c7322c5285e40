package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spinworks/draw10/internal/domain"
)

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SettleTx groups the operations that must land atomically when settling one
// wager: the outcome write, the balance mutations, and their ledger postings.
// A balance change must never be visible without its posting; the posting's
// unique key is the idempotency witness for repeated settlement attempts.
type SettleTx interface {
	Tx

	// MarkWagerSettled transitions a wager Unsettled -> Settled and records
	// outcome and payout. Returns the number of rows affected; zero means the
	// wager was already settled by an earlier attempt.
	MarkWagerSettled(ctx context.Context, id uuid.UUID, outcome domain.Outcome, payout int64) (int64, error)

	// Balance reads lock the account row until the transaction ends.
	GetMemberBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error)
	GetAgentBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error)
	SetMemberBalance(ctx context.Context, id uuid.UUID, balance int64) error
	SetAgentBalance(ctx context.Context, id uuid.UUID, balance int64) error

	// InsertPosting writes a ledger posting. A unique-key conflict is mapped
	// to domain.ErrDuplicatePosting.
	InsertPosting(ctx context.Context, posting *domain.Posting) error

	// HasPosting reports whether a posting already exists for the given
	// idempotency key. wagerID may be nil for period-level postings.
	HasPosting(ctx context.Context, period domain.PeriodID, wagerID *uuid.UUID, accountID uuid.UUID, postingType domain.PostingType) (bool, error)
}
