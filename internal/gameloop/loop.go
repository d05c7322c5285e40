// Package gameloop drives the recurring draw cycle. One loop advances
// periods on a fixed cadence: close the current period, generate and publish
// its result, open the next period, then hand the closed period to
// settlement under a short timeout. The loop never waits out a stuck
// settlement; abandoned periods belong to the compensation supervisor.
package gameloop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/draw"
	"github.com/spinworks/draw10/internal/event"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/repository"
	"github.com/spinworks/draw10/internal/settle"
)

// Config tunes the loop's cadence.
type Config struct {
	DrawInterval   time.Duration // time between period closes
	SettleTimeout  time.Duration // how long one cycle waits on settlement
	MaxDrawsPerDay int           // sequence rollover point for period IDs
}

// DefaultConfig returns the production cadence.
func DefaultConfig() Config {
	return Config{
		DrawInterval:   DefaultDrawInterval,
		SettleTimeout:  DefaultSettleTimeout,
		MaxDrawsPerDay: DefaultMaxDrawsPerDay,
	}
}

// Loop runs the draw cycle until its context is cancelled.
type Loop struct {
	periods   repository.Period
	policies  repository.Policy
	generator *draw.Generator
	settler   settle.Service
	publisher event.Bus
	config    Config
}

// NewLoop creates a game loop. The publisher should be a resilient wrapper so
// a flaky downstream consumer cannot stall the cycle.
func NewLoop(
	periods repository.Period,
	policies repository.Policy,
	generator *draw.Generator,
	settler settle.Service,
	publisher event.Bus,
	config Config,
) *Loop {
	return &Loop{
		periods:   periods,
		policies:  policies,
		generator: generator,
		settler:   settler,
		publisher: publisher,
		config:    config,
	}
}

// Run blocks until ctx is cancelled, executing one cycle per DrawInterval.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := l.ensureOpenPeriod(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrContextEnsureOpenPeriod, err)
	}

	ticker := time.NewTicker(l.config.DrawInterval)
	defer ticker.Stop()

	log.Info(LogMsgLoopStarted, "drawInterval", l.config.DrawInterval, "settleTimeout", l.config.SettleTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Info(LogMsgLoopStopped)
			return ctx.Err()
		case <-ticker.C:
			if err := l.RunCycle(ctx); err != nil {
				log.Error(LogMsgCycleFailed, "error", err)
			}
		}
	}
}

// RunCycle executes one full draw cycle for the current period. Exported so
// tests and operational tooling can drive a single cycle without the ticker.
func (l *Loop) RunCycle(ctx context.Context) error {
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	log := logger.FromContext(ctx)

	current, err := l.periods.GetLatestPeriod(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextLoadCurrentPeriod, err)
	}
	if current == nil {
		return l.ensureOpenPeriod(ctx)
	}

	// Open the next period before drawing so intake never sees a gap.
	if err := l.openNextPeriod(ctx, current); err != nil {
		return err
	}

	l.recoverStrandedPeriods(ctx, current.ID)

	if !current.HasResult() {
		if err := l.drawPeriod(ctx, current); err != nil {
			return err
		}
	}

	l.settlePeriod(ctx, current.ID)
	log.Info(LogMsgCycleCompleted, "period", current.ID)
	return nil
}

// recoverStrandedPeriods re-draws closed periods left without a result by an
// earlier failed result write. The next period opens before the draw lands,
// so once a newer period exists nothing else would ever draw the older one:
// GetLatestPeriod no longer returns it and settlement cannot run without a
// result.
func (l *Loop) recoverStrandedPeriods(ctx context.Context, before domain.PeriodID) {
	log := logger.FromContext(ctx)

	stranded, err := l.periods.ListUndrawnPeriods(ctx, before, RedrawScanLimit)
	if err != nil {
		log.Warn(LogMsgFailedToScanUndrawn, "error", err)
		return
	}

	for i := range stranded {
		period := stranded[i]
		log.Warn(LogMsgRedrawingStrandedPeriod, "period", period.ID)
		if err := l.drawPeriod(ctx, &period); err != nil {
			log.Error(LogMsgRedrawFailed, "period", period.ID, "error", err)
			continue
		}
		l.settlePeriod(ctx, period.ID)
	}
}

// drawPeriod generates a result for the period, records it, and broadcasts
// it. Losing the SetResult race to another node is benign: the result that
// won is the official one.
func (l *Loop) drawPeriod(ctx context.Context, period *domain.Period) error {
	log := logger.FromContext(ctx)

	policy, err := l.policies.GetActivePolicy(ctx)
	if err != nil {
		log.Warn(LogMsgFailedToLoadPolicy, "period", period.ID, "error", err)
		policy = nil
	}

	exposure, err := l.periods.GetExposure(ctx, period.ID)
	if err != nil {
		log.Warn(LogMsgFailedToLoadExposure, "period", period.ID, "error", err)
		exposure = nil
	}

	// The single-target mode needs the target's open wagers in hand.
	if exposure != nil && policy.AppliesTo(period.ID) &&
		policy.Mode == domain.ControlModeSingleTarget && policy.TargetID != nil {
		wagers, err := l.periods.GetOpenWagersByMember(ctx, period.ID, *policy.TargetID)
		if err != nil {
			log.Warn(LogMsgFailedToLoadTargetWagers, "period", period.ID, "error", err)
		} else {
			exposure.TargetWagers = wagers
		}
	}

	result := l.generator.Generate(ctx, period.ID, policy, exposure)

	if err := l.periods.SetResult(ctx, period.ID, result, false); err != nil {
		if errors.Is(err, domain.ErrPeriodAlreadyDrawn) {
			log.Info(LogMsgResultAlreadyRecorded, "period", period.ID)
			return nil
		}
		return fmt.Errorf("%s: %w", ErrContextRecordResult, err)
	}

	log.Info(LogMsgDrawRecorded, "period", period.ID, "result", result.String())

	if err := l.publisher.Publish(ctx, event.NewDrawPublishedEvent(period.ID, result, false)); err != nil {
		// The resilient publisher retries and dead-letters on its own; a
		// failed broadcast never blocks settlement.
		log.Warn(LogMsgFailedToPublishDraw, "period", period.ID, "error", err)
	}
	return nil
}

// settlePeriod invokes settlement under the loop's timeout. Timeouts and
// failures are logged and left for the compensation supervisor.
func (l *Loop) settlePeriod(ctx context.Context, period domain.PeriodID) {
	log := logger.FromContext(ctx)

	settleCtx, cancel := context.WithTimeout(ctx, l.config.SettleTimeout)
	defer cancel()

	if _, err := l.settler.Settle(settleCtx, period); err != nil {
		switch {
		case errors.Is(err, domain.ErrSettlementInProgress):
			log.Info(LogMsgSettlementAlreadyRunning, "period", period)
		case errors.Is(err, context.DeadlineExceeded):
			log.Warn(LogMsgSettlementTimedOut, "period", period, "timeout", l.config.SettleTimeout)
		default:
			log.Error(LogMsgSettlementFailed, "period", period, "error", err)
		}
	}
}

// ensureOpenPeriod bootstraps the very first period on a fresh store.
func (l *Loop) ensureOpenPeriod(ctx context.Context) error {
	current, err := l.periods.GetLatestPeriod(ctx)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}

	now := time.Now().UTC()
	first := &domain.Period{
		ID:      domain.NewPeriodID(now, 1),
		OpenAt:  now,
		CloseAt: now.Add(l.config.DrawInterval),
	}
	if err := l.periods.CreatePeriod(ctx, first); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgOpenedFirstPeriod, "period", first.ID)
	return nil
}

func (l *Loop) openNextPeriod(ctx context.Context, current *domain.Period) error {
	now := time.Now().UTC()
	next := &domain.Period{
		ID:      current.ID.Next(l.config.MaxDrawsPerDay),
		OpenAt:  now,
		CloseAt: now.Add(l.config.DrawInterval),
	}
	if err := l.periods.CreatePeriod(ctx, next); err != nil {
		if errors.Is(err, domain.ErrPeriodExists) {
			return nil
		}
		return fmt.Errorf("%s: %w", ErrContextOpenNextPeriod, err)
	}
	logger.FromContext(ctx).Info(LogMsgOpenedPeriod, "period", next.ID)
	return nil
}
