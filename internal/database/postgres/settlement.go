package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/repository"
)

type settlementRepository struct {
	db    *pgxpool.Pool
	owner string
}

// NewSettlementRepository creates a new PostgreSQL settlement repository. The
// owner identity recorded on run markers is derived from hostname and pid, so
// a stale marker can be traced back to the process that left it.
func NewSettlementRepository(db *pgxpool.Pool) repository.Settlement {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &settlementRepository{
		db:    db,
		owner: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

func (r *settlementRepository) GetSettlementLog(ctx context.Context, period domain.PeriodID) (*domain.SettlementLog, error) {
	query := `
		SELECT period_id, result, settled_count, win_count, total_payout_cents, total_rebate_cents, completed_at
		FROM settlement_logs
		WHERE period_id = $1
	`

	var log domain.SettlementLog
	var rawID int64
	var rawResult string

	err := r.db.QueryRow(ctx, query, int64(period)).Scan(
		&rawID,
		&rawResult,
		&log.SettledCount,
		&log.WinCount,
		&log.TotalPayout,
		&log.TotalRebate,
		&log.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSettlementLog, err)
	}

	log.PeriodID = domain.PeriodID(rawID)
	result, err := domain.ParseDrawResult(rawResult)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidStoredResult, err)
	}
	log.Result = result
	return &log, nil
}

func (r *settlementRepository) WriteSettlementLog(ctx context.Context, log *domain.SettlementLog) error {
	query := `
		INSERT INTO settlement_logs (period_id, result, settled_count, win_count, total_payout_cents, total_rebate_cents, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		int64(log.PeriodID),
		log.Result.String(),
		log.SettledCount,
		log.WinCount,
		log.TotalPayout,
		log.TotalRebate,
		log.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent settler beat us past the barrier; the period is done.
			return nil
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToWriteSettlementLog, err)
	}
	return nil
}

// AcquireRun is the test-and-set: the row insert succeeds for exactly one
// settler per period.
func (r *settlementRepository) AcquireRun(ctx context.Context, period domain.PeriodID) (bool, error) {
	query := `
		INSERT INTO settlement_runs (period_id, owner)
		VALUES ($1, $2)
		ON CONFLICT (period_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, int64(period), r.owner)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToAcquireRun, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *settlementRepository) ReleaseRun(ctx context.Context, period domain.PeriodID) error {
	query := `
		DELETE FROM settlement_runs
		WHERE period_id = $1 AND owner = $2
	`

	if _, err := r.db.Exec(ctx, query, int64(period), r.owner); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToReleaseRun, err)
	}
	return nil
}

func (r *settlementRepository) ClearStaleRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM settlement_runs
		WHERE started_at < NOW() - $1::interval
	`

	tag, err := r.db.Exec(ctx, query, olderThan.String())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToClearStaleRuns, err)
	}
	return tag.RowsAffected(), nil
}

func (r *settlementRepository) GetUnsettledWagers(ctx context.Context, period domain.PeriodID) ([]domain.Wager, error) {
	query := wagerSelectColumns + `
		FROM wagers
		WHERE period_id = $1 AND state = $2
		ORDER BY placed_at
	`

	rows, err := r.db.Query(ctx, query, int64(period), string(domain.WagerStateUnsettled))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWagers, err)
	}
	defer rows.Close()

	return scanWagers(rows)
}

func (r *settlementRepository) GetPeriodTotals(ctx context.Context, period domain.PeriodID) (*domain.SettlementTotals, error) {
	totals := &domain.SettlementTotals{}

	wagerQuery := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE outcome = $3),
		       COALESCE(SUM(payout_cents), 0)
		FROM wagers
		WHERE period_id = $1 AND state = $2
	`
	err := r.db.QueryRow(ctx, wagerQuery, int64(period), string(domain.WagerStateSettled), string(domain.OutcomeWon)).
		Scan(&totals.SettledCount, &totals.WinCount, &totals.TotalPayout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPeriodTotals, err)
	}

	rebateQuery := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM postings
		WHERE period_id = $1 AND posting_type = $2
	`
	err = r.db.QueryRow(ctx, rebateQuery, int64(period), string(domain.PostingRebate)).Scan(&totals.TotalRebate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPeriodTotals, err)
	}

	return totals, nil
}

func (r *settlementRepository) ListIncompletePeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.PeriodID, error) {
	query := `
		SELECT DISTINCT w.period_id
		FROM wagers w
		JOIN periods p ON p.period_id = w.period_id
		LEFT JOIN settlement_logs sl ON sl.period_id = w.period_id
		WHERE w.state = $1
		  AND sl.period_id IS NULL
		  AND p.close_at <= NOW()
		  AND ($2 = 0 OR w.period_id < $2)
		ORDER BY w.period_id
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, string(domain.WagerStateUnsettled), int64(before), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListIncomplete, err)
	}
	defer rows.Close()

	var periods []domain.PeriodID
	for rows.Next() {
		var raw int64
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListIncomplete, err)
		}
		periods = append(periods, domain.PeriodID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListIncomplete, err)
	}
	return periods, nil
}

func (r *settlementRepository) GetFailedSettlement(ctx context.Context, period domain.PeriodID) (*domain.FailedSettlement, error) {
	query := `
		SELECT period_id, attempts, last_error, terminal, updated_at
		FROM failed_settlements
		WHERE period_id = $1
	`

	var record domain.FailedSettlement
	var rawID int64

	err := r.db.QueryRow(ctx, query, int64(period)).Scan(
		&rawID,
		&record.Attempts,
		&record.LastError,
		&record.Terminal,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetFailedRecord, err)
	}

	record.PeriodID = domain.PeriodID(rawID)
	return &record, nil
}

func (r *settlementRepository) RecordFailedAttempt(ctx context.Context, period domain.PeriodID, lastError string) (*domain.FailedSettlement, error) {
	query := `
		INSERT INTO failed_settlements (period_id, attempts, last_error, updated_at)
		VALUES ($1, 1, $2, NOW())
		ON CONFLICT (period_id) DO UPDATE
		SET attempts = failed_settlements.attempts + 1,
		    last_error = EXCLUDED.last_error,
		    updated_at = NOW()
		RETURNING period_id, attempts, last_error, terminal, updated_at
	`

	var record domain.FailedSettlement
	var rawID int64

	err := r.db.QueryRow(ctx, query, int64(period), lastError).Scan(
		&rawID,
		&record.Attempts,
		&record.LastError,
		&record.Terminal,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToRecordAttempt, err)
	}

	record.PeriodID = domain.PeriodID(rawID)
	return &record, nil
}

func (r *settlementRepository) MarkTerminal(ctx context.Context, period domain.PeriodID) error {
	query := `
		UPDATE failed_settlements
		SET terminal = TRUE, updated_at = NOW()
		WHERE period_id = $1
	`

	if _, err := r.db.Exec(ctx, query, int64(period)); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarkTerminal, err)
	}
	return nil
}

func (r *settlementRepository) ClearFailedSettlement(ctx context.Context, period domain.PeriodID) error {
	query := `
		DELETE FROM failed_settlements
		WHERE period_id = $1
	`

	if _, err := r.db.Exec(ctx, query, int64(period)); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToClearFailedRecord, err)
	}
	return nil
}

func (r *settlementRepository) BeginSettleTx(ctx context.Context) (repository.SettleTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &settleTx{tx: tx}, nil
}
