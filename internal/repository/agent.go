package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spinworks/draw10/internal/domain"
)

// Agent defines read access to the agent/member directory. The directory is
// maintained by an external admin surface; the engine only reads it.
type Agent interface {
	GetMember(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error)

	// GetChain materializes a member's ancestor list from the direct agent up
	// to the root in a single query, so the cap-differential walk is a plain
	// loop rather than per-level fetches.
	GetChain(ctx context.Context, memberID uuid.UUID) (domain.AgentChain, error)
}
