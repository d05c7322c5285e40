package domain

import (
	"fmt"
	"time"
)

// PeriodID identifies one round of the draw game. It encodes the draw date and
// an intra-day sequence number as YYYYMMDDNNN, so IDs are monotonically
// increasing across the lifetime of the game.
type PeriodID int64

// NewPeriodID builds a period ID from a draw date and a 1-based intra-day sequence.
func NewPeriodID(day time.Time, seq int) PeriodID {
	y, m, d := day.Date()
	return PeriodID(int64(y)*1e7 + int64(m)*1e5 + int64(d)*1e3 + int64(seq))
}

// Seq returns the intra-day sequence number of the period.
func (p PeriodID) Seq() int {
	return int(int64(p) % 1000)
}

// Day returns the draw date encoded in the period ID.
func (p PeriodID) Day() time.Time {
	v := int64(p) / 1000
	return time.Date(int(v/10000), time.Month(v/100%100), int(v%100), 0, 0, 0, 0, time.UTC)
}

// Next returns the ID of the period that follows, rolling the sequence over to
// the next day after maxSeqPerDay draws.
func (p PeriodID) Next(maxSeqPerDay int) PeriodID {
	if p.Seq() >= maxSeqPerDay {
		return NewPeriodID(p.Day().AddDate(0, 0, 1), 1)
	}
	return p + 1
}

func (p PeriodID) String() string {
	return fmt.Sprintf("%d", int64(p))
}

// Period is one discrete round of the game. A period is open for wager intake
// until CloseAt, after which it receives exactly one DrawResult and is settled.
type Period struct {
	ID       PeriodID    `json:"id"`
	OpenAt   time.Time   `json:"open_at"`
	CloseAt  time.Time   `json:"close_at"`
	Result   *DrawResult `json:"result,omitempty"`
	DrawnAt  *time.Time  `json:"drawn_at,omitempty"`
	Official bool        `json:"official"` // result supplied externally rather than generated
}

// HasResult reports whether the period's draw result has been recorded.
func (p *Period) HasResult() bool {
	return p.Result != nil
}
