package database

import (
	"context"
	"fmt"
)

// schema creates the ledger tables. Profiles are normally provisioned by
// the identity provider; the table is created here for standalone setups.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id               TEXT PRIMARY KEY,
		tokens_remaining INTEGER NOT NULL DEFAULT 0 CHECK (tokens_remaining >= 0),
		plan_type        TEXT NOT NULL DEFAULT 'free',
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		video_id      TEXT,
		tokens_amount INTEGER NOT NULL,
		type          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS video_usage (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		video_id      TEXT NOT NULL,
		video_url     TEXT NOT NULL DEFAULT '',
		title         TEXT NOT NULL DEFAULT '',
		output_type   TEXT NOT NULL,
		status        TEXT NOT NULL,
		error_message TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_video_usage_user_video ON video_usage (user_id, video_id)`,
	`CREATE INDEX IF NOT EXISTS idx_video_usage_user_created ON video_usage (user_id, created_at DESC)`,
}

// EnsureSchema creates missing ledger tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
