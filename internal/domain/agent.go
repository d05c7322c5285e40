package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is a betting account. Balance is in cents and is mutated only through
// ledger postings.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AgentID   uuid.UUID `json:"agent_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Agent is a node in the commission tree. RebateCapBps is the cumulative cap:
// the maximum rebate share, in basis points of turnover, obtainable by this
// agent and all of its descendants combined. Caps grow moving toward the root.
type Agent struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	RebateCapBps int64      `json:"rebate_cap_bps"`
	Balance      int64      `json:"balance"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsRoot reports whether the agent sits at the top of the tree.
func (a *Agent) IsRoot() bool {
	return a.ParentID == nil
}

// AgentChain is a member's ancestor list ordered from the direct agent up to
// the root, materialized once per settlement run.
type AgentChain []*Agent

// RootCapBps returns the cumulative cap of the chain's root, which bounds the
// total rebate payable on a wager's stake.
func (c AgentChain) RootCapBps() int64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].RebateCapBps
}
