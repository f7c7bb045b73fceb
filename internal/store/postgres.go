package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the full run history in a build_runs table. Last
// returns the newest row, so cooldown semantics match the file store while
// operators keep every past run for inspection.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a pooled connection and ensures the
// build_runs table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS build_runs (
			run_id UUID PRIMARY KEY,
			ts BIGINT NOT NULL,
			success BOOLEAN NOT NULL,
			date TEXT NOT NULL,
			version TEXT NOT NULL,
			properties_count INT NOT NULL DEFAULT 0,
			reason TEXT,
			error TEXT,
			git_push BOOLEAN,
			stats JSONB NOT NULL DEFAULT '{}'::jsonb
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure build_runs table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Last returns the newest run record, or (nil, nil) for an empty history.
func (s *PostgresStore) Last(ctx context.Context) (*RunRecord, error) {
	rec := &RunRecord{}
	var statsJSON []byte
	var reason, errMsg *string
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, ts, success, date, version, properties_count,
		       reason, error, git_push, stats
		FROM build_runs ORDER BY ts DESC LIMIT 1`).
		Scan(&rec.RunID, &rec.Timestamp, &rec.Success, &rec.Date, &rec.Version,
			&rec.PropertiesCount, &reason, &errMsg, &rec.GitPush, &statsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load last run: %w", err)
	}

	if reason != nil {
		rec.Reason = *reason
	}
	if errMsg != nil {
		rec.Error = *errMsg
	}
	if err := json.Unmarshal(statsJSON, &rec.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode run stats: %w", err)
	}
	return rec, nil
}

// Put appends the record to the run history.
func (s *PostgresStore) Put(ctx context.Context, rec *RunRecord) error {
	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO build_runs
			(run_id, ts, success, date, version, properties_count,
			 reason, error, git_push, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			ts = $2, success = $3, date = $4, version = $5,
			properties_count = $6, reason = $7, error = $8,
			git_push = $9, stats = $10`,
		rec.RunID, rec.Timestamp, rec.Success, rec.Date, rec.Version,
		rec.PropertiesCount, nullable(rec.Reason), nullable(rec.Error),
		rec.GitPush, statsJSON)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
