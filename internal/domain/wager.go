package domain

import (
	"time"

	"github.com/google/uuid"
)

// WagerState represents the settlement state of a wager
type WagerState string

const (
	WagerStateUnsettled WagerState = "Unsettled"
	WagerStateSettled   WagerState = "Settled"
)

// Outcome represents the result of evaluating a wager
type Outcome string

const (
	OutcomeUnknown Outcome = "Unknown"
	OutcomeWon     Outcome = "Won"
	OutcomeLost    Outcome = "Lost"
)

// BetKind is the closed set of bet-type variants the engine settles.
type BetKind string

const (
	// BetKindExact wins iff the drawn number at Position equals Number.
	BetKindExact BetKind = "exact"
	// BetKindPositionSide is a named-rank two-side bet (first-place big, third-place odd, ...).
	BetKindPositionSide BetKind = "position_side"
	// BetKindGenericSide is the same predicate set with the position given as an
	// explicit index. Must evaluate identically to BetKindPositionSide.
	BetKindGenericSide BetKind = "generic_side"
	// BetKindDragonTiger compares the numbers at Position and PositionB.
	BetKindDragonTiger BetKind = "dragon_tiger"
	// BetKindSumExact wins iff first+second equals Number (3..19).
	BetKindSumExact BetKind = "sum_exact"
	// BetKindSumSide is a two-side bet on the first+second sum.
	BetKindSumSide BetKind = "sum_side"
)

// BetSide is the coarse predicate of a two-side or dragon/tiger bet.
type BetSide string

const (
	SideBig    BetSide = "big"
	SideSmall  BetSide = "small"
	SideOdd    BetSide = "odd"
	SideEven   BetSide = "even"
	SideDragon BetSide = "dragon"
	SideTiger  BetSide = "tiger"
	SideNone   BetSide = ""
)

// Wager is a member's bet on one period. Stake and payout are in cents; Odds is
// the total-return multiplier in thousandths, locked at placement and never
// recomputed at settlement.
type Wager struct {
	ID        uuid.UUID  `json:"id"`
	PeriodID  PeriodID   `json:"period_id"`
	MemberID  uuid.UUID  `json:"member_id"`
	Kind      BetKind    `json:"kind"`
	Side      BetSide    `json:"side,omitempty"`
	Number    int        `json:"number,omitempty"`
	Position  int        `json:"position,omitempty"`
	PositionB int        `json:"position_b,omitempty"`
	Stake     int64      `json:"stake"`
	Odds      int64      `json:"odds"`
	State     WagerState `json:"state"`
	Outcome   Outcome    `json:"outcome"`
	Payout    int64      `json:"payout"`
	PlacedAt  time.Time  `json:"placed_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// WinPayout returns the total return (principal included) for this wager if it
// wins: stake times the locked-in odds, rounded down to the cent.
func (w *Wager) WinPayout() int64 {
	return w.Stake * w.Odds / OddsScale
}

// SettlementSummary reports what one settlement run did.
type SettlementSummary struct {
	PeriodID     PeriodID `json:"period_id"`
	SettledCount int      `json:"settled_count"`
	WinCount     int      `json:"win_count"`
	TotalPayout  int64    `json:"total_payout"`
	TotalRebate  int64    `json:"total_rebate"`
	AlreadyDone  bool     `json:"already_done"`
}
