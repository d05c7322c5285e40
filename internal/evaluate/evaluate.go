// Package evaluate decides wagers against a draw result. It is pure: no I/O,
// no clock, no odds lookup. Given the same wager and result it returns the
// same outcome bit-for-bit, which settlement and audit tooling both rely on.
package evaluate

import (
	"fmt"

	"github.com/spinworks/draw10/internal/domain"
)

// Evaluate returns the outcome of a wager against a draw result, and the
// payout in cents. Payout is the total return including principal
// (stake * locked odds) on a win, zero otherwise.
func Evaluate(w *domain.Wager, r domain.DrawResult) (domain.Outcome, int64, error) {
	won, err := wins(w, r)
	if err != nil {
		return domain.OutcomeUnknown, 0, err
	}
	if won {
		return domain.OutcomeWon, w.WinPayout(), nil
	}
	return domain.OutcomeLost, 0, nil
}

func wins(w *domain.Wager, r domain.DrawResult) (bool, error) {
	switch w.Kind {
	case domain.BetKindExact:
		if err := checkPosition(w.Position); err != nil {
			return false, err
		}
		if w.Number < 1 || w.Number > domain.PositionCount {
			return false, fmt.Errorf("%w: bet number %d out of range", domain.ErrInvalidInput, w.Number)
		}
		return r.At(w.Position) == w.Number, nil

	case domain.BetKindPositionSide, domain.BetKindGenericSide:
		// The named-rank and explicit-index variants are priced differently at
		// intake but must decide identically for the same position.
		if err := checkPosition(w.Position); err != nil {
			return false, err
		}
		return sideMatches(w.Side, r.At(w.Position), domain.PositionBigBoundary)

	case domain.BetKindDragonTiger:
		if err := checkPosition(w.Position); err != nil {
			return false, err
		}
		if err := checkPosition(w.PositionB); err != nil {
			return false, err
		}
		a, b := r.At(w.Position), r.At(w.PositionB)
		switch w.Side {
		case domain.SideDragon:
			return a > b, nil
		case domain.SideTiger:
			return a < b, nil
		default:
			return false, fmt.Errorf("%w: side %q for dragon/tiger", domain.ErrInvalidInput, w.Side)
		}

	case domain.BetKindSumExact:
		if w.Number < domain.SumValueMin || w.Number > domain.SumValueMax {
			return false, fmt.Errorf("%w: sum value %d out of range", domain.ErrInvalidInput, w.Number)
		}
		return r.SumValue() == w.Number, nil

	case domain.BetKindSumSide:
		return sideMatches(w.Side, r.SumValue(), domain.SumBigBoundary)

	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownBetKind, w.Kind)
	}
}

// sideMatches applies a two-side predicate to a drawn value. bigBoundary is
// the smallest value counted as big; it differs between per-position bets (6)
// and sum-value bets (12).
func sideMatches(side domain.BetSide, value, bigBoundary int) (bool, error) {
	switch side {
	case domain.SideBig:
		return value >= bigBoundary, nil
	case domain.SideSmall:
		return value < bigBoundary, nil
	case domain.SideOdd:
		return value%2 == 1, nil
	case domain.SideEven:
		return value%2 == 0, nil
	default:
		return false, fmt.Errorf("%w: side %q for two-side bet", domain.ErrInvalidInput, side)
	}
}

func checkPosition(position int) error {
	if position < 1 || position > domain.PositionCount {
		return fmt.Errorf("%w: position %d out of range", domain.ErrInvalidInput, position)
	}
	return nil
}
