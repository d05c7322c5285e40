// Package rebate distributes turnover commission up a member's agent chain.
// Each agent carries a cumulative-cap percentage: the cap bounds the total
// share of this agent plus everyone below it in the chain, so an agent's own
// share is its cap minus the highest cap already consumed below it.
package rebate

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/ledger"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
	"github.com/spinworks/draw10/internal/repository"
)

// Service defines the interface for rebate distribution
type Service interface {
	// Distribute emits the rebate postings for one wager inside tx and
	// returns the total rebate credited in cents. Rebate is computed on
	// stake, independent of the wager's outcome. Repeated invocation for the
	// same wager is a no-op thanks to the posting idempotency key.
	Distribute(ctx context.Context, tx repository.SettleTx, wager *domain.Wager) (int64, error)

	// InvalidateChain drops a member's cached agent chain, for use when the
	// external directory reassigns the member.
	InvalidateChain(memberID string)
}

type service struct {
	agents    repository.Agent
	chains    *chainCache
	maxCapBps int64
}

// NewService creates a new rebate service. maxCapBps is the engine-wide
// ceiling on cumulative rebate caps; a directory entry above it is clamped
// rather than trusted.
func NewService(agents repository.Agent, maxCapBps int64) Service {
	return &service{
		agents:    agents,
		chains:    newChainCache(ChainCacheSize, ChainCacheTTL),
		maxCapBps: maxCapBps,
	}
}

func (s *service) Distribute(ctx context.Context, tx repository.SettleTx, wager *domain.Wager) (int64, error) {
	log := logger.FromContext(ctx)

	chain, err := s.chain(ctx, wager)
	if err != nil {
		return 0, err
	}

	var total int64
	previousCap := int64(0)

	// Walk from the direct agent toward the root. previousCap tracking makes
	// the walk inherently sequential per wager; wagers themselves are
	// independent of each other.
	for _, agent := range chain {
		capBps := agent.RebateCapBps
		if s.maxCapBps > 0 && capBps > s.maxCapBps {
			log.Warn(LogMsgRebateCapClamped,
				"agentID", agent.ID, "capBps", capBps, "ceilingBps", s.maxCapBps,
				"wagerID", wager.ID)
			metrics.RebateAnomalies.Inc()
			capBps = s.maxCapBps
		}

		shareBps := capBps - previousCap
		if shareBps <= 0 {
			// A flat or decreasing cap is a directory misconfiguration. Skip
			// the node, keep the rest of the chain alive.
			log.Warn(LogMsgRebateCapAnomaly,
				"agentID", agent.ID, "capBps", agent.RebateCapBps, "previousCapBps", previousCap,
				"wagerID", wager.ID)
			metrics.RebateAnomalies.Inc()
			continue
		}

		amount := wager.Stake * shareBps / domain.BpsScale
		if amount > 0 {
			credited, err := s.credit(ctx, tx, wager, agent, amount)
			if err != nil {
				return total, err
			}
			if credited {
				total += amount
			}
		}
		previousCap = capBps
	}

	metrics.RebateCents.Add(float64(total))
	return total, nil
}

// credit applies one agent's rebate posting. Returns false when the posting
// already existed from an earlier attempt.
func (s *service) credit(ctx context.Context, tx repository.SettleTx, wager *domain.Wager, agent *domain.Agent, amount int64) (bool, error) {
	exists, err := tx.HasPosting(ctx, wager.PeriodID, &wager.ID, agent.ID, domain.PostingRebate)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrContextFailedToCheckPosting, err)
	}
	if exists {
		return false, nil
	}

	wagerID := wager.ID
	_, err = ledger.Apply(ctx, tx, ledger.Entry{
		Period:      wager.PeriodID,
		WagerID:     &wagerID,
		AccountKind: domain.AccountAgent,
		AccountID:   agent.ID,
		Type:        domain.PostingRebate,
		Amount:      amount,
	})
	if err != nil {
		// Lost a race with a concurrent settler; the posting is there, which
		// is all that matters.
		if errors.Is(err, domain.ErrDuplicatePosting) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", ErrContextFailedToCreditAgent, err)
	}
	return true, nil
}

func (s *service) chain(ctx context.Context, wager *domain.Wager) (domain.AgentChain, error) {
	if chain, ok := s.chains.Get(wager.MemberID.String()); ok {
		return chain, nil
	}

	chain, err := s.agents.GetChain(ctx, wager.MemberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadChain, err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: member %s", domain.ErrBrokenAgentChain, wager.MemberID)
	}

	s.chains.Set(wager.MemberID.String(), chain)
	return chain, nil
}

func (s *service) InvalidateChain(memberID string) {
	s.chains.Remove(memberID)
}
