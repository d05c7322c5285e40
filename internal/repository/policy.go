package repository

import (
	"context"

	"github.com/spinworks/draw10/internal/domain"
)

// Policy defines read access to the win/loss control policy store. Policies
// are activated and deactivated by an external admin surface.
type Policy interface {
	// GetActivePolicy returns the currently active policy, or nil when control
	// is off. At most one policy is active at a time.
	GetActivePolicy(ctx context.Context) (*domain.ControlPolicy, error)
}
