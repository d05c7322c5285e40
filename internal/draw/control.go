package draw

import (
	"github.com/spinworks/draw10/internal/domain"
)

// generateAutoDetect suppresses aggregate payout when the period's total
// unsettled stake crosses the configured threshold: the numbers carrying the
// most exact-bet stake on the first two positions are kept out of those
// positions. Below the threshold it behaves exactly like normal mode.
func (g *Generator) generateAutoDetect(exposure *domain.ExposureSummary) domain.DrawResult {
	if exposure == nil || exposure.TotalStake <= g.autoDetectThreshold {
		return g.shuffle()
	}

	result := g.shuffle()

	// Walk candidate numbers for the first two positions from the least-staked
	// side, swapping the current occupant out when a colder number exists.
	relocate := func(position int, stakes [domain.PositionCount + 1]int64) {
		current := result[position-1]
		coldest, coldestStake := current, stakes[current]
		for n := 1; n <= domain.PositionCount; n++ {
			if n == result[0] || n == result[1] {
				continue
			}
			if stakes[n] < coldestStake {
				coldest, coldestStake = n, stakes[n]
			}
		}
		if coldest != current {
			g.swapNumbers(&result, current, coldest)
		}
	}

	relocate(1, exposure.StakeByFirst)
	relocate(2, exposure.StakeBySecond)

	return result
}

// generateTargeted biases the draw for a single member (or, in agent-line
// deployments, an aggregated line) per the policy's direction. The bias is
// drawn as a Bernoulli trial with the policy's strength; when the trial does
// not trigger the draw is unbiased.
func (g *Generator) generateTargeted(policy *domain.ControlPolicy, exposure *domain.ExposureSummary) domain.DrawResult {
	if exposure == nil || len(exposure.TargetWagers) == 0 {
		return g.shuffle()
	}
	if !g.chance(policy.Strength) {
		return g.shuffle()
	}

	switch policy.Direction {
	case domain.BiasFavorWin:
		return g.forceOneWin(exposure.TargetWagers)
	case domain.BiasFavorLoss:
		return g.forceAllExactLosses(exposure.TargetWagers)
	default:
		return g.shuffle()
	}
}

// forceOneWin constructs a permutation consistent with at least one of the
// target's exact-number wagers winning. Targets holding no exact-number wager
// get an unbiased draw.
func (g *Generator) forceOneWin(wagers []domain.Wager) domain.DrawResult {
	exact := make([]domain.Wager, 0, len(wagers))
	for _, w := range wagers {
		if w.Kind == domain.BetKindExact {
			exact = append(exact, w)
		}
	}
	if len(exact) == 0 {
		return g.shuffle()
	}

	pick := exact[g.intn(len(exact))]
	result := g.shuffle()
	if result.At(pick.Position) != pick.Number {
		g.swapNumbers(&result, result.At(pick.Position), pick.Number)
	}
	return result
}

// forceAllExactLosses relocates every conflicting number so that none of the
// target's exact-number wagers lands on its bet position. With up to ten
// distinct exact bets this cannot always succeed; remaining conflicts after
// one pass are accepted (the bias is a heuristic, not a guarantee).
func (g *Generator) forceAllExactLosses(wagers []domain.Wager) domain.DrawResult {
	result := g.shuffle()

	for _, w := range wagers {
		if w.Kind != domain.BetKindExact {
			continue
		}
		if w.Position < 1 || w.Position > domain.PositionCount {
			continue
		}
		if result.At(w.Position) != w.Number {
			continue
		}
		// Swap the bet number with any position that doesn't create a new
		// conflict for the same member.
		for offset := 1; offset < domain.PositionCount; offset++ {
			other := (w.Position-1+offset)%domain.PositionCount + 1
			if conflicts(wagers, other, w.Number) {
				continue
			}
			result[w.Position-1], result[other-1] = result[other-1], result[w.Position-1]
			break
		}
	}

	return result
}

func conflicts(wagers []domain.Wager, position, number int) bool {
	for _, w := range wagers {
		if w.Kind == domain.BetKindExact && w.Position == position && w.Number == number {
			return true
		}
	}
	return false
}

// swapNumbers exchanges the positions of two drawn numbers in place.
func (g *Generator) swapNumbers(r *domain.DrawResult, a, b int) {
	var ai, bi int
	for i, n := range r {
		if n == a {
			ai = i
		}
		if n == b {
			bi = i
		}
	}
	r[ai], r[bi] = r[bi], r[ai]
}
