// Package store persists finished optimization sessions to PostgreSQL.
// The pipeline only ever appends; nothing in the core reads records back.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/profile-optimizer/internal/types"
)

// Recorder receives one record per session that reaches a terminal state.
type Recorder interface {
	RecordSession(ctx context.Context, record types.SessionRecord) error
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// RecordSession appends one terminal session record.
func (db *DB) RecordSession(ctx context.Context, record types.SessionRecord) error {
	improvements, err := json.Marshal(record.Improvements)
	if err != nil {
		return fmt.Errorf("failed to marshal improvements: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO optimization_sessions
		   (session_id, mode, model_used, score_before, score_after, improvement_count, improvements, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.SessionID, record.Mode, record.ModelUsed,
		record.ScoreBefore, record.ScoreAfter, record.ImprovementCount,
		improvements, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to record session %s: %w", record.SessionID, err)
	}
	return nil
}

// Nop is a Recorder that discards every record, used when no database is
// configured.
type Nop struct{}

func (Nop) RecordSession(context.Context, types.SessionRecord) error { return nil }
