// Package compensation resumes partially settled periods. It runs orthogonal
// to the game loop: a fixed-interval scan finds periods with unsettled wagers
// and no settlement log, retries them idempotently with bounded backoff, and
// parks anything past the retry budget for operator intervention.
package compensation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/event"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
	"github.com/spinworks/draw10/internal/repository"
	"github.com/spinworks/draw10/internal/settle"
)

// Config tunes the supervisor's retry behavior.
type Config struct {
	MaxRetries  int           // attempts before a period is parked terminal
	BaseBackoff time.Duration // delay after the first failure; grows linearly per attempt
	StaleRunAge time.Duration // exclusivity markers older than this are from dead settlers
	ScanLimit   int           // periods picked up per scan
}

// DefaultConfig returns the production retry budget.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
		StaleRunAge: DefaultStaleRunAge,
		ScanLimit:   DefaultScanLimit,
	}
}

// Supervisor retries failed or abandoned settlements. The in-memory schedule
// is a cache only: the durable pair (unsettled wagers, missing settlement
// log) plus the failed_settlements table rebuilds the queue after a restart.
type Supervisor struct {
	repo     repository.Settlement
	eventBus event.Bus
	config   Config

	mu      sync.Mutex
	settler settle.Service
	nextTry map[domain.PeriodID]time.Time
}

// NewSupervisor creates a new compensation supervisor. Bind the settlement
// service before the first scan.
func NewSupervisor(repo repository.Settlement, eventBus event.Bus, config Config) *Supervisor {
	return &Supervisor{
		repo:     repo,
		eventBus: eventBus,
		config:   config,
		nextTry:  make(map[domain.PeriodID]time.Time),
	}
}

// Bind attaches the settlement service. Split from the constructor because
// the settlement service itself is constructed with the supervisor as its
// failure sink.
func (s *Supervisor) Bind(settler settle.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settler = settler
}

// Enqueue implements settle.FailureSink. It only warms the schedule; the next
// scan would find the period from the store regardless.
func (s *Supervisor) Enqueue(period domain.PeriodID, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nextTry[period]; !ok {
		s.nextTry[period] = time.Now().Add(s.config.BaseBackoff)
	}
}

// Process runs one scan. It satisfies worker.Job so the scheduler can drive
// it at a fixed interval.
func (s *Supervisor) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	settler := s.settler
	s.mu.Unlock()
	if settler == nil {
		return errors.New(ErrMsgSettlerNotBound)
	}

	if cleared, err := s.repo.ClearStaleRuns(ctx, s.config.StaleRunAge); err != nil {
		log.Warn(LogMsgFailedToClearStaleRuns, "error", err)
	} else if cleared > 0 {
		log.Info(LogMsgClearedStaleRuns, "count", cleared)
	}

	periods, err := s.repo.ListIncompletePeriods(ctx, domain.PeriodID(0), s.config.ScanLimit)
	if err != nil {
		log.Error(LogMsgFailedToScanPeriods, "error", err)
		return err
	}

	for _, period := range periods {
		s.retryPeriod(ctx, settler, period)
	}

	s.prune(periods)
	return nil
}

func (s *Supervisor) retryPeriod(ctx context.Context, settler settle.Service, period domain.PeriodID) {
	log := logger.FromContext(ctx)

	record, err := s.repo.GetFailedSettlement(ctx, period)
	if err != nil {
		log.Error(LogMsgFailedToLoadRetryRecord, "period", period, "error", err)
		return
	}
	if record != nil && record.Terminal {
		return
	}

	attempts := 0
	if record != nil {
		attempts = record.Attempts
	}

	if attempts >= s.config.MaxRetries {
		s.park(ctx, period, record)
		return
	}

	s.mu.Lock()
	next, scheduled := s.nextTry[period]
	s.mu.Unlock()
	if scheduled && time.Now().Before(next) {
		return
	}

	log.Info(LogMsgRetryingSettlement, "period", period, "attempt", attempts+1)
	metrics.CompensationRetries.Inc()

	if _, err := settler.Settle(ctx, period); err != nil {
		if errors.Is(err, domain.ErrSettlementInProgress) {
			return
		}

		updated, recErr := s.repo.RecordFailedAttempt(ctx, period, err.Error())
		if recErr != nil {
			log.Error(LogMsgFailedToRecordAttempt, "period", period, "error", recErr)
			updated = &domain.FailedSettlement{PeriodID: period, Attempts: attempts + 1}
		}

		// Linear-growth backoff: base, 2*base, 3*base, ...
		delay := s.config.BaseBackoff * time.Duration(updated.Attempts)
		s.mu.Lock()
		s.nextTry[period] = time.Now().Add(delay)
		s.mu.Unlock()

		if pubErr := s.eventBus.Publish(ctx, event.NewSettlementFailedEvent(period, updated.Attempts, err, false)); pubErr != nil {
			log.Warn(LogMsgFailedToPublishFailure, "period", period, "error", pubErr)
		}
		return
	}

	s.mu.Lock()
	delete(s.nextTry, period)
	s.mu.Unlock()
	log.Info(LogMsgCompensationSucceeded, "period", period)
}

// park writes the terminal failure record and stops automatic retries. The
// period stays visible in scans but is skipped until an operator intervenes.
func (s *Supervisor) park(ctx context.Context, period domain.PeriodID, record *domain.FailedSettlement) {
	log := logger.FromContext(ctx)

	// With MaxRetries <= 0 the budget check fires before any attempt was
	// recorded, so there is no record yet.
	if record == nil {
		record = &domain.FailedSettlement{PeriodID: period, LastError: ErrMsgNoAttemptRecorded}
	}

	if err := s.repo.MarkTerminal(ctx, period); err != nil {
		log.Error(LogMsgFailedToMarkTerminal, "period", period, "error", err)
		return
	}

	metrics.TerminalFailures.Inc()
	log.Error(LogMsgRetryBudgetExhausted, "period", period, "attempts", record.Attempts)

	lastErr := errors.New(record.LastError)
	if err := s.eventBus.Publish(ctx, event.NewSettlementFailedEvent(period, record.Attempts, lastErr, true)); err != nil {
		log.Warn(LogMsgFailedToPublishFailure, "period", period, "error", err)
	}

	s.mu.Lock()
	delete(s.nextTry, period)
	s.mu.Unlock()
}

// prune drops schedule entries for periods no longer reported incomplete.
func (s *Supervisor) prune(current []domain.PeriodID) {
	keep := make(map[domain.PeriodID]struct{}, len(current))
	for _, p := range current {
		keep[p] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.nextTry {
		if _, ok := keep[p]; !ok {
			delete(s.nextTry, p)
		}
	}
}
