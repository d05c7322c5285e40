package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/audit"
	"github.com/spinworks/draw10/internal/database/postgres"
	"github.com/spinworks/draw10/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Period     repository.Period
	Settlement repository.Settlement
	Agent      repository.Agent
	Policy     repository.Policy
	Audit      audit.Repository
}

// InitializeRepositories creates all repository implementations.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Period:     postgres.NewPeriodRepository(dbPool),
		Settlement: postgres.NewSettlementRepository(dbPool),
		Agent:      postgres.NewAgentRepository(dbPool),
		Policy:     postgres.NewPolicyRepository(dbPool),
		Audit:      postgres.NewAuditRepository(dbPool),
	}
}
