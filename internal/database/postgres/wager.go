package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spinworks/draw10/internal/domain"
)

const wagerSelectColumns = `
	SELECT wager_id, period_id, member_id, kind, side, number, position, position_b,
	       stake_cents, odds_thousandths, state, outcome, payout_cents, placed_at, settled_at`

// scanWagers maps wagers rows to domain objects.
func scanWagers(rows pgx.Rows) ([]domain.Wager, error) {
	var wagers []domain.Wager

	for rows.Next() {
		var w domain.Wager
		var rawPeriod int64

		err := rows.Scan(
			&w.ID,
			&rawPeriod,
			&w.MemberID,
			&w.Kind,
			&w.Side,
			&w.Number,
			&w.Position,
			&w.PositionB,
			&w.Stake,
			&w.Odds,
			&w.State,
			&w.Outcome,
			&w.Payout,
			&w.PlacedAt,
			&w.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWagers, err)
		}

		w.PeriodID = domain.PeriodID(rawPeriod)
		wagers = append(wagers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWagers, err)
	}
	return wagers, nil
}
