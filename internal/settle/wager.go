package settle

import (
	"context"
	"fmt"
	"sync"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/evaluate"
	"github.com/spinworks/draw10/internal/ledger"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
	"github.com/spinworks/draw10/internal/repository"
)

// batchOutcome accumulates the results of settling one period's wagers.
type batchOutcome struct {
	mu          sync.Mutex
	settled     int
	won         int
	failed      int
	totalPayout int64
	totalRebate int64
	firstErr    error
}

func (o *batchOutcome) recordSuccess(outcome domain.Outcome, payout, rebateTotal int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled++
	if outcome == domain.OutcomeWon {
		o.won++
		o.totalPayout += payout
	}
	o.totalRebate += rebateTotal
}

func (o *batchOutcome) recordFailure(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
	if o.firstErr == nil {
		o.firstErr = err
	}
}

// settleWagers evaluates the period's wagers with bounded concurrency. Wagers
// are independent of each other; each settles in its own transaction, and a
// failure in one never stops the rest.
func (s *service) settleWagers(ctx context.Context, period domain.PeriodID, result domain.DrawResult, wagers []domain.Wager) *batchOutcome {
	outcome := &batchOutcome{}

	sem := make(chan struct{}, s.maxWorkers)
	var wg sync.WaitGroup

	for i := range wagers {
		wager := wagers[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			won, payout, rebateTotal, err := s.settleOne(ctx, period, result, &wager)
			if err != nil {
				logger.FromContext(ctx).Error(LogMsgWagerSettleFailed,
					"period", period, "wagerID", wager.ID, "error", err)
				outcome.recordFailure(err)
				return
			}
			outcome.recordSuccess(won, payout, rebateTotal)
		}()
	}
	wg.Wait()

	return outcome
}

// settleOne settles a single wager atomically: the outcome write, the payout
// posting, and the rebate postings commit together or not at all.
func (s *service) settleOne(ctx context.Context, period domain.PeriodID, result domain.DrawResult, wager *domain.Wager) (domain.Outcome, int64, int64, error) {
	if s.maxOdds > 0 && wager.Odds > s.maxOdds {
		logger.FromContext(ctx).Warn(LogMsgOddsAboveCeiling,
			"wagerID", wager.ID, "odds", wager.Odds, "ceiling", s.maxOdds)
		wager.Odds = s.maxOdds
	}

	outcome, payout, err := evaluate.Evaluate(wager, result)
	if err != nil {
		return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToEvaluate, err)
	}

	tx, err := s.repo.BeginSettleTx(ctx)
	if err != nil {
		return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	// Compare-and-set on the wager state: zero rows means an earlier attempt
	// already settled it, payout and rebate included, so this one is a no-op.
	rows, err := tx.MarkWagerSettled(ctx, wager.ID, outcome, payout)
	if err != nil {
		return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToMarkSettled, err)
	}
	if rows == 0 {
		logger.FromContext(ctx).Debug(LogMsgWagerAlreadySettled, "wagerID", wager.ID)
		return domain.OutcomeUnknown, 0, 0, nil
	}

	if outcome == domain.OutcomeWon && payout > 0 {
		wagerID := wager.ID
		_, err := ledger.Apply(ctx, tx, ledger.Entry{
			Period:      period,
			WagerID:     &wagerID,
			AccountKind: domain.AccountMember,
			AccountID:   wager.MemberID,
			Type:        domain.PostingPayout,
			Amount:      payout,
		})
		if err != nil {
			return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToCreditPayout, err)
		}
	}

	// Rebate rides on turnover, win or lose.
	rebateTotal, err := s.rebateSvc.Distribute(ctx, tx, wager)
	if err != nil {
		return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToDistribute, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OutcomeUnknown, 0, 0, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	metrics.WagersSettled.Inc()
	if outcome == domain.OutcomeWon {
		metrics.PayoutCents.Add(float64(payout))
	}

	return outcome, payout, rebateTotal, nil
}
