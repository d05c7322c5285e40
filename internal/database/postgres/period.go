package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/repository"
)

type periodRepository struct {
	db *pgxpool.Pool
}

// NewPeriodRepository creates a new PostgreSQL period repository
func NewPeriodRepository(db *pgxpool.Pool) repository.Period {
	return &periodRepository{db: db}
}

func (r *periodRepository) CreatePeriod(ctx context.Context, period *domain.Period) error {
	query := `
		INSERT INTO periods (period_id, open_at, close_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, int64(period.ID), period.OpenAt, period.CloseAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPeriodExists
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreatePeriod, err)
	}
	return nil
}

func (r *periodRepository) GetPeriod(ctx context.Context, id domain.PeriodID) (*domain.Period, error) {
	query := `
		SELECT period_id, open_at, close_at, result, drawn_at, official
		FROM periods
		WHERE period_id = $1
	`

	period, err := scanPeriod(r.db.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPeriod, err)
	}
	return period, nil
}

func (r *periodRepository) GetLatestPeriod(ctx context.Context) (*domain.Period, error) {
	query := `
		SELECT period_id, open_at, close_at, result, drawn_at, official
		FROM periods
		ORDER BY period_id DESC
		LIMIT 1
	`

	period, err := scanPeriod(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPeriod, err)
	}
	return period, nil
}

func (r *periodRepository) SetResult(ctx context.Context, id domain.PeriodID, result domain.DrawResult, official bool) error {
	if err := result.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE periods
		SET result = $2, drawn_at = NOW(), official = $3
		WHERE period_id = $1 AND result IS NULL
	`

	tag, err := r.db.Exec(ctx, query, int64(id), result.String(), official)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetResult, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the period does not exist or a result already landed.
		if _, err := r.GetPeriod(ctx, id); err != nil {
			return err
		}
		return domain.ErrPeriodAlreadyDrawn
	}
	return nil
}

func (r *periodRepository) GetExposure(ctx context.Context, id domain.PeriodID) (*domain.ExposureSummary, error) {
	summary := &domain.ExposureSummary{PeriodID: id}

	totalsQuery := `
		SELECT COALESCE(SUM(stake_cents), 0), COUNT(*)
		FROM wagers
		WHERE period_id = $1 AND state = $2
	`
	err := r.db.QueryRow(ctx, totalsQuery, int64(id), string(domain.WagerStateUnsettled)).
		Scan(&summary.TotalStake, &summary.WagerCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetExposure, err)
	}

	exactQuery := `
		SELECT position, number, COALESCE(SUM(stake_cents), 0)
		FROM wagers
		WHERE period_id = $1 AND state = $2 AND kind = $3 AND position IN (1, 2)
		GROUP BY position, number
	`
	rows, err := r.db.Query(ctx, exactQuery, int64(id), string(domain.WagerStateUnsettled), string(domain.BetKindExact))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetExposure, err)
	}
	defer rows.Close()

	for rows.Next() {
		var position, number int
		var stake int64
		if err := rows.Scan(&position, &number, &stake); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetExposure, err)
		}
		if number < 1 || number > domain.PositionCount {
			continue
		}
		switch position {
		case 1:
			summary.StakeByFirst[number] = stake
		case 2:
			summary.StakeBySecond[number] = stake
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetExposure, err)
	}

	return summary, nil
}

func (r *periodRepository) ListUndrawnPeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.Period, error) {
	query := `
		SELECT period_id, open_at, close_at, result, drawn_at, official
		FROM periods
		WHERE result IS NULL
		  AND close_at <= NOW()
		  AND ($1 = 0 OR period_id < $1)
		ORDER BY period_id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, int64(before), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListUndrawn, err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListUndrawn, err)
		}
		periods = append(periods, *period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListUndrawn, err)
	}
	return periods, nil
}

func (r *periodRepository) GetOpenWagersByMember(ctx context.Context, id domain.PeriodID, memberID uuid.UUID) ([]domain.Wager, error) {
	query := wagerSelectColumns + `
		FROM wagers
		WHERE period_id = $1 AND member_id = $2 AND state = $3
		ORDER BY placed_at
	`

	rows, err := r.db.Query(ctx, query, int64(id), memberID, string(domain.WagerStateUnsettled))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWagers, err)
	}
	defer rows.Close()

	return scanWagers(rows)
}

// scanPeriod maps one periods row, parsing the stored CSV result.
func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var period domain.Period
	var rawID int64
	var rawResult *string

	err := row.Scan(&rawID, &period.OpenAt, &period.CloseAt, &rawResult, &period.DrawnAt, &period.Official)
	if err != nil {
		return nil, err
	}

	period.ID = domain.PeriodID(rawID)
	if rawResult != nil {
		result, err := domain.ParseDrawResult(*rawResult)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgInvalidStoredResult, err)
		}
		period.Result = &result
	}
	return &period, nil
}
