package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spinworks/draw10/internal/database/schema"
	"github.com/spinworks/draw10/internal/testing/leaktest"
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

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
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

// TestPool_SchemaApplies verifies the embedded schema creates all settlement tables
func TestPool_SchemaApplies(t *testing.T) {
	requireDB(t)

	pool, err := NewPool(context.Background(), testDBConnString, 5, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	_, err = pool.Exec(ctx, schema.SchemaSQL)
	require.NoError(t, err)

	for _, table := range []string{"periods", "wagers", "postings", "settlement_logs", "settlement_runs", "failed_settlements", "audit_events"} {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

// TestPool_ConnectionsReleased verifies connections are returned to the pool
func TestPool_ConnectionsReleased(t *testing.T) {
	requireDB(t)

	pool, err := NewPool(context.Background(), testDBConnString, 5, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		conn, err := pool.Acquire(ctx)
		require.NoError(t, err, "Failed to acquire connection on iteration %d", i)

		var result int
		err = conn.QueryRow(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)

		conn.Release()
	}

	stats := pool.Stat()
	assert.Equal(t, int32(0), stats.AcquiredConns(), "All connections should be released")
}

// TestPool_MaxConnsEnforced verifies pool respects MaxConns limit
func TestPool_MaxConnsEnforced(t *testing.T) {
	requireDB(t)

	maxConns := 3
	pool, err := NewPool(context.Background(), testDBConnString, maxConns, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conns := make([]interface{ Release() }, 0, maxConns)
	for i := 0; i < maxConns; i++ {
		conn, err := pool.Acquire(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)
	}

	stats := pool.Stat()
	assert.Equal(t, int32(maxConns), stats.AcquiredConns())

	acquireDone := make(chan error, 1)
	go func() {
		shortCtx, shortCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer shortCancel()
		_, err := pool.Acquire(shortCtx)
		acquireDone <- err
	}()

	select {
	case err := <-acquireDone:
		assert.Error(t, err, "Should fail to acquire when pool is exhausted")
	case <-time.After(500 * time.Millisecond):
		t.Error("Acquire should have timed out")
	}

	conns[0].Release()

	conn, err := pool.Acquire(ctx)
	assert.NoError(t, err)
	if conn != nil {
		conn.Release()
	}

	for i := 1; i < maxConns; i++ {
		conns[i].Release()
	}
}

// TestPool_ConcurrentAccess tests thread safety
func TestPool_ConcurrentAccess(t *testing.T) {
	requireDB(t)

	pool, err := NewPool(context.Background(), testDBConnString, 10, 1*time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	checker := leaktest.NewGoroutineChecker(t)

	var wg sync.WaitGroup
	concurrency := 20

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			ctx := context.Background()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				t.Errorf("Worker %d failed to acquire connection: %v", id, err)
				return
			}
			defer conn.Release()

			var result int
			err = conn.QueryRow(ctx, "SELECT $1::int", id).Scan(&result)
			if err != nil {
				t.Errorf("Worker %d query failed: %v", id, err)
			}
		}(i)
	}

	wg.Wait()

	stats := pool.Stat()
	assert.Equal(t, int32(0), stats.AcquiredConns(), "All connections should be released")

	checker.Check(2)
}
