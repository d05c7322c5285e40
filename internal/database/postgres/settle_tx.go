package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spinworks/draw10/internal/domain"
)

// settleTx implements repository.SettleTx on one pgx transaction. Everything
// here commits or rolls back together: the wager outcome, the balance rows,
// and the postings that witness them.
type settleTx struct {
	tx pgx.Tx
}

func (t *settleTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

func (t *settleTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *settleTx) MarkWagerSettled(ctx context.Context, id uuid.UUID, outcome domain.Outcome, payout int64) (int64, error) {
	query := `
		UPDATE wagers
		SET state = $2, outcome = $3, payout_cents = $4, settled_at = NOW()
		WHERE wager_id = $1 AND state = $5
	`

	tag, err := t.tx.Exec(ctx, query,
		id,
		string(domain.WagerStateSettled),
		string(outcome),
		payout,
		string(domain.WagerStateUnsettled),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToMarkSettled, err)
	}
	return tag.RowsAffected(), nil
}

func (t *settleTx) GetMemberBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error) {
	return t.balanceForUpdate(ctx, "members", "member_id", id)
}

func (t *settleTx) GetAgentBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error) {
	return t.balanceForUpdate(ctx, "agents", "agent_id", id)
}

func (t *settleTx) balanceForUpdate(ctx context.Context, table, column string, id uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`SELECT balance_cents FROM %s WHERE %s = $1 FOR UPDATE`, table, column)

	var balance int64
	if err := t.tx.QueryRow(ctx, query, id).Scan(&balance); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToReadBalance, err)
	}
	return balance, nil
}

func (t *settleTx) SetMemberBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	return t.setBalance(ctx, "members", "member_id", id, balance)
}

func (t *settleTx) SetAgentBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	return t.setBalance(ctx, "agents", "agent_id", id, balance)
}

func (t *settleTx) setBalance(ctx context.Context, table, column string, id uuid.UUID, balance int64) error {
	query := fmt.Sprintf(`UPDATE %s SET balance_cents = $2 WHERE %s = $1`, table, column)

	tag, err := t.tx.Exec(ctx, query, id, balance)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToWriteBalance, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: account %s not found", ErrMsgFailedToWriteBalance, id)
	}
	return nil
}

func (t *settleTx) InsertPosting(ctx context.Context, posting *domain.Posting) error {
	query := `
		INSERT INTO postings (period_id, wager_id, account_kind, account_id, posting_type,
		                      amount_cents, balance_before_cents, balance_after_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING posting_id, created_at
	`

	err := t.tx.QueryRow(ctx, query,
		int64(posting.PeriodID),
		posting.WagerID,
		string(posting.AccountKind),
		posting.AccountID,
		string(posting.Type),
		posting.Amount,
		posting.BalanceBefore,
		posting.BalanceAfter,
	).Scan(&posting.ID, &posting.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePosting
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertPosting, err)
	}
	return nil
}

func (t *settleTx) HasPosting(ctx context.Context, period domain.PeriodID, wagerID *uuid.UUID, accountID uuid.UUID, postingType domain.PostingType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM postings
			WHERE period_id = $1
			  AND wager_id IS NOT DISTINCT FROM $2
			  AND account_id = $3
			  AND posting_type = $4
		)
	`

	var exists bool
	err := t.tx.QueryRow(ctx, query, int64(period), wagerID, accountID, string(postingType)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCheckPosting, err)
	}
	return exists, nil
}
