package domain

// OddsScale is the fixed-point scale of Wager.Odds: an odds value of 9890
// means a 9.89x total return.
const OddsScale = 1000

// BpsScale is the fixed-point scale of rebate caps: 10000 basis points = 100%.
const BpsScale = 10000

// Two-side boundaries. A position number is big at 6 or above; the first+second
// sum is big at 12 or above. The boundaries differ on purpose.
const (
	PositionBigBoundary = 6
	SumBigBoundary      = 12
)

// Sum-value bounds for first+second exact bets.
const (
	SumValueMin = 3
	SumValueMax = 19
)
