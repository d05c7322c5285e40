// Package ledger applies balance mutations through postings. Every balance
// change of a member or agent goes through Apply inside a settlement
// transaction, so a balance is never visible without the posting that
// explains it, and repeated attempts are caught on the posting's unique key.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/repository"
)

// Entry describes one balance mutation. Amount is signed: positive credits
// the account, negative debits it.
type Entry struct {
	Period      domain.PeriodID
	WagerID     *uuid.UUID
	AccountKind domain.AccountKind
	AccountID   uuid.UUID
	Type        domain.PostingType
	Amount      int64
}

// Apply writes the posting and the balance move atomically within tx. A
// conflicting posting key returns domain.ErrDuplicatePosting with the balance
// untouched, making repeated application a no-op.
func Apply(ctx context.Context, tx repository.SettleTx, entry Entry) (*domain.Posting, error) {
	balance, err := readBalanceForUpdate(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	after := balance + entry.Amount
	if after < 0 {
		return nil, fmt.Errorf("%w: account %s balance %d, change %d",
			domain.ErrInsufficientFunds, entry.AccountID, balance, entry.Amount)
	}

	posting := &domain.Posting{
		ID:            uuid.New(),
		PeriodID:      entry.Period,
		WagerID:       entry.WagerID,
		AccountKind:   entry.AccountKind,
		AccountID:     entry.AccountID,
		Type:          entry.Type,
		Amount:        entry.Amount,
		BalanceBefore: balance,
		BalanceAfter:  after,
		CreatedAt:     time.Now().UTC(),
	}

	if err := tx.InsertPosting(ctx, posting); err != nil {
		if errors.Is(err, domain.ErrDuplicatePosting) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToInsertPosting, err)
	}

	if err := writeBalance(ctx, tx, entry, after); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateBalance, err)
	}

	return posting, nil
}

func readBalanceForUpdate(ctx context.Context, tx repository.SettleTx, entry Entry) (int64, error) {
	switch entry.AccountKind {
	case domain.AccountMember:
		return tx.GetMemberBalanceForUpdate(ctx, entry.AccountID)
	case domain.AccountAgent:
		return tx.GetAgentBalanceForUpdate(ctx, entry.AccountID)
	default:
		return 0, fmt.Errorf("%w: account kind %q", domain.ErrInvalidInput, entry.AccountKind)
	}
}

func writeBalance(ctx context.Context, tx repository.SettleTx, entry Entry, balance int64) error {
	switch entry.AccountKind {
	case domain.AccountMember:
		return tx.SetMemberBalance(ctx, entry.AccountID, balance)
	case domain.AccountAgent:
		return tx.SetAgentBalance(ctx, entry.AccountID, balance)
	default:
		return fmt.Errorf("%w: account kind %q", domain.ErrInvalidInput, entry.AccountKind)
	}
}
