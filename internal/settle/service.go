// Package settle orchestrates once-per-period settlement: evaluating every
// outstanding wager against the period's draw result, crediting payouts,
// distributing rebates, and recording the settlement log exactly once.
package settle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spinworks/draw10/internal/concurrency"
	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/event"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
	"github.com/spinworks/draw10/internal/rebate"
	"github.com/spinworks/draw10/internal/repository"
)

// Service defines the interface for settlement operations
type Service interface {
	// Settle runs settlement for a closed period. A period that already has a
	// settlement log returns immediately with AlreadyDone set; a period being
	// settled by another invocation returns domain.ErrSettlementInProgress.
	Settle(ctx context.Context, period domain.PeriodID) (domain.SettlementSummary, error)
}

// FailureSink receives periods whose settlement attempt failed. The engine
// never propagates settlement failure to the game loop; it hands the period
// here instead so new periods keep opening.
type FailureSink interface {
	Enqueue(period domain.PeriodID, cause error)
}

type service struct {
	repo       repository.Settlement
	periods    repository.Period
	rebateSvc  rebate.Service
	eventBus   event.Bus
	failures   FailureSink
	locks      *concurrency.LockManager
	maxWorkers int
	maxOdds    int64
}

// NewService creates a new settlement service. maxOdds is the engine-wide
// odds ceiling in thousandths; a stored wager above it settles at the
// ceiling, not at its recorded odds.
func NewService(repo repository.Settlement, periods repository.Period, rebateSvc rebate.Service, eventBus event.Bus, failures FailureSink, maxWorkers int, maxOdds int64) Service {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &service{
		repo:       repo,
		periods:    periods,
		rebateSvc:  rebateSvc,
		eventBus:   eventBus,
		failures:   failures,
		locks:      concurrency.NewLockManager(),
		maxWorkers: maxWorkers,
		maxOdds:    maxOdds,
	}
}

func (s *service) Settle(ctx context.Context, period domain.PeriodID) (domain.SettlementSummary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	summary := domain.SettlementSummary{PeriodID: period}

	// In-process fast path; the database marker below remains the authority
	// across processes.
	unlock, ok := s.locks.TryLock(period.String())
	if !ok {
		metrics.SettlementsTotal.WithLabelValues(metrics.StatusBusy).Inc()
		return summary, domain.ErrSettlementInProgress
	}
	defer unlock()

	existing, err := s.repo.GetSettlementLog(ctx, period)
	if err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToCheckLog, err))
	}
	if existing != nil {
		log.Info(LogMsgPeriodAlreadySettled, "period", period)
		metrics.SettlementsTotal.WithLabelValues(metrics.StatusNoop).Inc()
		summary.AlreadyDone = true
		summary.SettledCount = existing.SettledCount
		summary.WinCount = existing.WinCount
		summary.TotalPayout = existing.TotalPayout
		summary.TotalRebate = existing.TotalRebate
		return summary, nil
	}

	// The acquire is a unique insert: test-and-set relative to the log check,
	// so two concurrent settlers cannot both believe they are first.
	acquired, err := s.repo.AcquireRun(ctx, period)
	if err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToAcquireRun, err))
	}
	if !acquired {
		log.Info(LogMsgSettlementBusy, "period", period)
		metrics.SettlementsTotal.WithLabelValues(metrics.StatusBusy).Inc()
		return summary, domain.ErrSettlementInProgress
	}
	defer s.releaseRun(ctx, period)

	p, err := s.periods.GetPeriod(ctx, period)
	if err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToLoadPeriod, err))
	}
	if p == nil {
		return summary, s.fail(ctx, period, domain.ErrPeriodNotFound)
	}
	if p.Result == nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%w: period %s has no draw result", domain.ErrPeriodNotClosed, period))
	}
	result := *p.Result

	wagers, err := s.repo.GetUnsettledWagers(ctx, period)
	if err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToLoadWagers, err))
	}

	outcome := s.settleWagers(ctx, period, result, wagers)

	if outcome.failed > 0 {
		err := fmt.Errorf("%s: %d of %d wagers failed, first: %w",
			ErrContextPartialSettlement, outcome.failed, len(wagers), outcome.firstErr)
		return summary, s.fail(ctx, period, err)
	}

	// Totals come from the store rather than this batch, so a run that
	// resumed a partially settled period still reports the whole period.
	totals, err := s.repo.GetPeriodTotals(ctx, period)
	if err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToLoadTotals, err))
	}
	summary.SettledCount = totals.SettledCount
	summary.WinCount = totals.WinCount
	summary.TotalPayout = totals.TotalPayout
	summary.TotalRebate = totals.TotalRebate

	// Barrier: the log is written only after every wager of the period
	// settled. Its existence is the authoritative completion signal.
	record := &domain.SettlementLog{
		PeriodID:     period,
		Result:       result,
		SettledCount: totals.SettledCount,
		WinCount:     totals.WinCount,
		TotalPayout:  totals.TotalPayout,
		TotalRebate:  totals.TotalRebate,
		CompletedAt:  time.Now().UTC(),
	}
	if err := s.repo.WriteSettlementLog(ctx, record); err != nil {
		return summary, s.fail(ctx, period, fmt.Errorf("%s: %w", ErrContextFailedToWriteLog, err))
	}

	if err := s.repo.ClearFailedSettlement(ctx, period); err != nil {
		// Cosmetic leftover; the settlement log already marks the period done.
		log.Warn(LogMsgFailedToClearRetryRecord, "period", period, "error", err)
	}

	if err := s.eventBus.Publish(ctx, event.NewPeriodSettledEvent(summary)); err != nil {
		log.Warn(LogMsgFailedToPublishSettled, "period", period, "error", err)
	}

	metrics.SettlementsTotal.WithLabelValues(metrics.StatusCompleted).Inc()
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	log.Info(LogMsgSettlementComplete,
		"period", period,
		"settled", totals.SettledCount,
		"won", totals.WinCount,
		"totalPayout", totals.TotalPayout,
		"totalRebate", totals.TotalRebate,
		"duration", time.Since(start))

	return summary, nil
}

// fail records the failure, hands the period to the compensation supervisor,
// and returns the error for the direct caller. The game loop treats it as
// advisory; only the supervisor acts on it.
func (s *service) fail(ctx context.Context, period domain.PeriodID, cause error) error {
	if errors.Is(cause, domain.ErrSettlementInProgress) {
		return cause
	}
	logger.FromContext(ctx).Error(LogMsgSettlementFailed, "period", period, "error", cause)
	metrics.SettlementsTotal.WithLabelValues(metrics.StatusFailed).Inc()
	if s.failures != nil {
		s.failures.Enqueue(period, cause)
	}
	return cause
}

func (s *service) releaseRun(ctx context.Context, period domain.PeriodID) {
	if err := s.repo.ReleaseRun(ctx, period); err != nil {
		logger.FromContext(ctx).Warn(LogMsgFailedToReleaseRun, "period", period, "error", err)
	}
}
