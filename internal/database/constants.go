package database

import "time"

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2

	// DefaultMaxConnIdleTime is how long a connection may sit idle before being closed
	DefaultMaxConnIdleTime = 5 * time.Minute

	// DefaultMaxConnLifetime is the maximum lifetime of a pooled connection
	DefaultMaxConnLifetime = 30 * time.Minute

	// PingTimeout bounds the startup connectivity check
	PingTimeout = 10 * time.Second
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
)
