package repository

import (
	"context"
	"time"

	"github.com/spinworks/draw10/internal/domain"
)

// Settlement defines the data access required by the settlement engine and the
// compensation supervisor.
type Settlement interface {
	// GetSettlementLog returns the completion record for a period, or nil if
	// the period has not been settled.
	GetSettlementLog(ctx context.Context, period domain.PeriodID) (*domain.SettlementLog, error)

	// WriteSettlementLog records period completion. Unique on period.
	WriteSettlementLog(ctx context.Context, log *domain.SettlementLog) error

	// AcquireRun atomically claims the exclusivity marker for a period via a
	// unique insert. Returns false when another settler already holds it. The
	// claim check and the insert are a single test-and-set.
	AcquireRun(ctx context.Context, period domain.PeriodID) (bool, error)

	// ReleaseRun drops the exclusivity marker.
	ReleaseRun(ctx context.Context, period domain.PeriodID) error

	// ClearStaleRuns removes markers older than the cutoff, left behind by a
	// crashed settler. Returns the number of markers cleared.
	ClearStaleRuns(ctx context.Context, olderThan time.Duration) (int64, error)

	// GetUnsettledWagers loads every unsettled wager of a period.
	GetUnsettledWagers(ctx context.Context, period domain.PeriodID) ([]domain.Wager, error)

	// GetPeriodTotals aggregates the period's settled wagers and rebate
	// postings from the store. Used at the settlement-log barrier so resumed
	// runs report whole-period totals, not just their own batch.
	GetPeriodTotals(ctx context.Context, period domain.PeriodID) (*domain.SettlementTotals, error)

	// ListIncompletePeriods returns closed periods that have unsettled wagers
	// but no settlement log, oldest first. Closed, not drawn: a period whose
	// result write failed must still surface here, or its stakes stay locked
	// with no retry and no operator signal. A zero before means no upper
	// bound. This query alone must be sufficient to rebuild the supervisor's
	// work queue after a restart.
	ListIncompletePeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.PeriodID, error)

	// Failed-settlement bookkeeping for the compensation supervisor.
	GetFailedSettlement(ctx context.Context, period domain.PeriodID) (*domain.FailedSettlement, error)
	RecordFailedAttempt(ctx context.Context, period domain.PeriodID, lastError string) (*domain.FailedSettlement, error)
	MarkTerminal(ctx context.Context, period domain.PeriodID) error
	ClearFailedSettlement(ctx context.Context, period domain.PeriodID) error

	// BeginSettleTx opens the per-wager atomic scope.
	BeginSettleTx(ctx context.Context) (SettleTx, error)
}
