package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/repository"
)

type policyRepository struct {
	db *pgxpool.Pool
}

// NewPolicyRepository creates a new PostgreSQL control policy repository
func NewPolicyRepository(db *pgxpool.Pool) repository.Policy {
	return &policyRepository{db: db}
}

func (r *policyRepository) GetActivePolicy(ctx context.Context) (*domain.ControlPolicy, error) {
	query := `
		SELECT policy_id, mode, target_id, direction, strength, from_period, active, created_at
		FROM control_policies
		WHERE active
	`

	var policy domain.ControlPolicy
	var rawFromPeriod int64

	err := r.db.QueryRow(ctx, query).Scan(
		&policy.ID,
		&policy.Mode,
		&policy.TargetID,
		&policy.Direction,
		&policy.Strength,
		&rawFromPeriod,
		&policy.Active,
		&policy.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPolicy, err)
	}

	policy.FromPeriod = domain.PeriodID(rawFromPeriod)
	return &policy, nil
}
