package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/repository"
)

type agentRepository struct {
	db *pgxpool.Pool
}

// NewAgentRepository creates a new PostgreSQL agent/member directory repository
func NewAgentRepository(db *pgxpool.Pool) repository.Agent {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetMember(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT member_id, username, agent_id, balance_cents, created_at
		FROM members
		WHERE member_id = $1
	`

	var member domain.Member
	err := r.db.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.Username,
		&member.AgentID,
		&member.Balance,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetMember, err)
	}
	return &member, nil
}

func (r *agentRepository) GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	query := `
		SELECT agent_id, username, parent_id, rebate_cap_bps, balance_cents, created_at
		FROM agents
		WHERE agent_id = $1
	`

	var agent domain.Agent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&agent.ID,
		&agent.Username,
		&agent.ParentID,
		&agent.RebateCapBps,
		&agent.Balance,
		&agent.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetAgent, err)
	}
	return &agent, nil
}

// GetChain walks the agent tree root-ward in one recursive query. The result
// is ordered from the member's direct agent up to the root. The recursion is
// capped at MaxChainDepth so a cyclic parent_id cannot loop the query.
func (r *agentRepository) GetChain(ctx context.Context, memberID uuid.UUID) (domain.AgentChain, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT a.agent_id, a.username, a.parent_id, a.rebate_cap_bps, a.balance_cents, a.created_at, 1 AS depth
			FROM agents a
			JOIN members m ON m.agent_id = a.agent_id
			WHERE m.member_id = $1
			UNION ALL
			SELECT p.agent_id, p.username, p.parent_id, p.rebate_cap_bps, p.balance_cents, p.created_at, c.depth + 1
			FROM agents p
			JOIN chain c ON p.agent_id = c.parent_id
			WHERE c.depth < $2
		)
		SELECT agent_id, username, parent_id, rebate_cap_bps, balance_cents, created_at
		FROM chain
		ORDER BY depth
	`

	rows, err := r.db.Query(ctx, query, memberID, MaxChainDepth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetChain, err)
	}
	defer rows.Close()

	var chain domain.AgentChain
	for rows.Next() {
		var agent domain.Agent
		err := rows.Scan(
			&agent.ID,
			&agent.Username,
			&agent.ParentID,
			&agent.RebateCapBps,
			&agent.Balance,
			&agent.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetChain, err)
		}
		chain = append(chain, &agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetChain, err)
	}

	if len(chain) == 0 {
		return nil, domain.ErrBrokenAgentChain
	}
	// The capped walk ends at a root unless the directory contains a cycle.
	// Crediting a looped chain would pay the same agents once per lap.
	if !chain[len(chain)-1].IsRoot() {
		return nil, domain.ErrBrokenAgentChain
	}
	return chain, nil
}
