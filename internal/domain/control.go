package domain

import (
	"time"

	"github.com/google/uuid"
)

// ControlMode selects how the result generator biases a draw.
type ControlMode string

const (
	ControlModeNormal       ControlMode = "normal"
	ControlModeAutoDetect   ControlMode = "auto_detect"
	ControlModeSingleTarget ControlMode = "single_target"
	ControlModeAgentLine    ControlMode = "agent_line"
)

// BiasDirection is the desired outcome for the control target.
type BiasDirection string

const (
	BiasFavorWin  BiasDirection = "favor_win"
	BiasFavorLoss BiasDirection = "favor_loss"
)

// ControlPolicy is the at-most-one active win/loss control record. It is
// maintained by an external admin surface and read-only to the engine.
type ControlPolicy struct {
	ID         uuid.UUID     `json:"id"`
	Mode       ControlMode   `json:"mode"`
	TargetID   *uuid.UUID    `json:"target_id,omitempty"` // member or agent, per mode
	Direction  BiasDirection `json:"direction"`
	Strength   float64       `json:"strength"` // bias probability in [0,1]
	FromPeriod PeriodID      `json:"from_period"`
	Active     bool          `json:"active"`
	CreatedAt  time.Time     `json:"created_at"`
}

// AppliesTo reports whether the policy is in force for the given period.
func (p *ControlPolicy) AppliesTo(period PeriodID) bool {
	return p != nil && p.Active && period >= p.FromPeriod
}

// ExposureSummary aggregates the unsettled stake of one period, used by the
// auto-detect and targeted control modes.
type ExposureSummary struct {
	PeriodID      PeriodID                 `json:"period_id"`
	TotalStake    int64                    `json:"total_stake"`
	WagerCount    int                      `json:"wager_count"`
	StakeByFirst  [PositionCount + 1]int64 `json:"stake_by_first"`          // index = bet number, exact bets on position 1
	StakeBySecond [PositionCount + 1]int64 `json:"stake_by_second"`         // index = bet number, exact bets on position 2
	TargetWagers  []Wager                  `json:"target_wagers,omitempty"` // open wagers of the control target
}
