package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spinworks/draw10/internal/domain"
)

// Period defines data access for period lifecycle and exposure queries.
type Period interface {
	CreatePeriod(ctx context.Context, period *domain.Period) error
	GetPeriod(ctx context.Context, id domain.PeriodID) (*domain.Period, error)

	// GetLatestPeriod returns the newest period, or nil when none exist yet.
	GetLatestPeriod(ctx context.Context) (*domain.Period, error)

	// SetResult records the draw result for a period. The write succeeds only
	// when no result exists yet; a second write returns
	// domain.ErrPeriodAlreadyDrawn, keeping results immutable once settlement
	// may have begun.
	SetResult(ctx context.Context, id domain.PeriodID, result domain.DrawResult, official bool) error

	// GetExposure aggregates the period's unsettled stake: totals plus the
	// exact-bet stake per number on the first two positions.
	GetExposure(ctx context.Context, id domain.PeriodID) (*domain.ExposureSummary, error)

	// GetOpenWagersByMember returns a member's unsettled wagers for a period,
	// used by the single-target control mode.
	GetOpenWagersByMember(ctx context.Context, id domain.PeriodID, memberID uuid.UUID) ([]domain.Wager, error)

	// ListUndrawnPeriods returns periods that closed without a recorded
	// result, oldest first. A zero before means no upper bound. Normally
	// empty: a period appears here only when a result write failed after the
	// next period already opened, and it stays here until a cycle re-attempts
	// the draw.
	ListUndrawnPeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.Period, error)
}
