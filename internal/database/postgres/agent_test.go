package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spinworks/draw10/internal/database"
	"github.com/spinworks/draw10/internal/database/schema"
	"github.com/spinworks/draw10/internal/domain"
)

var (
	testDBConnString string
)

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()

	if !testing.Short() {
		ctx := context.Background()
		var connStr string
		connStr, terminate = setupContainer(ctx)
		testDBConnString = connStr
	}

	code := m.Run()

	if terminate != nil {
		terminate()
	}

	os.Exit(code)
}

func setupContainer(ctx context.Context) (string, func()) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	pgContainer, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return "", func() {}
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		pgContainer.Terminate(ctx)
		return "", func() {}
	}

	return connStr, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}
}

func requireDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}
}

func seedAgent(t *testing.T, pool *pgxpool.Pool, username string, parent *uuid.UUID, capBps int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO agents (agent_id, username, parent_id, rebate_cap_bps) VALUES ($1, $2, $3, $4)",
		id, username, parent, capBps)
	require.NoError(t, err)
	return id
}

func seedMember(t *testing.T, pool *pgxpool.Pool, username string, agentID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO members (member_id, username, agent_id) VALUES ($1, $2, $3)",
		id, username, agentID)
	require.NoError(t, err)
	return id
}

// TestGetChain_WalksToRoot verifies the recursive walk orders the chain from
// the member's direct agent up to the root.
func TestGetChain_WalksToRoot(t *testing.T) {
	requireDB(t)

	pool, err := database.NewPool(context.Background(), testDBConnString, 5, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	_, err = pool.Exec(ctx, schema.SchemaSQL)
	require.NoError(t, err)

	root := seedAgent(t, pool, "chain-root", nil, 110)
	mid := seedAgent(t, pool, "chain-mid", &root, 80)
	leaf := seedAgent(t, pool, "chain-leaf", &mid, 50)
	member := seedMember(t, pool, "chain-member", leaf)

	repo := NewAgentRepository(pool)
	chain, err := repo.GetChain(ctx, member)
	require.NoError(t, err)
	require.Len(t, chain, 3)

	assert.Equal(t, leaf, chain[0].ID)
	assert.Equal(t, mid, chain[1].ID)
	assert.Equal(t, root, chain[2].ID)
	assert.True(t, chain[2].IsRoot())
}

// TestGetChain_CyclicParentTerminates verifies a cyclic parent_id, which an
// admin UPDATE can introduce despite the foreign key, does not loop the
// recursive query. The walk stops at the depth cap and the chain is rejected
// rather than credited with repeated laps.
func TestGetChain_CyclicParentTerminates(t *testing.T) {
	requireDB(t)

	pool, err := database.NewPool(context.Background(), testDBConnString, 5, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	_, err = pool.Exec(ctx, schema.SchemaSQL)
	require.NoError(t, err)

	top := seedAgent(t, pool, "cycle-top", nil, 110)
	bottom := seedAgent(t, pool, "cycle-bottom", &top, 50)
	member := seedMember(t, pool, "cycle-member", bottom)

	// Close the loop: top now points back down at bottom.
	_, err = pool.Exec(ctx, "UPDATE agents SET parent_id = $1 WHERE agent_id = $2", bottom, top)
	require.NoError(t, err)

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo := NewAgentRepository(pool)
	chain, err := repo.GetChain(queryCtx, member)
	require.ErrorIs(t, err, domain.ErrBrokenAgentChain)
	assert.Nil(t, chain)
}
