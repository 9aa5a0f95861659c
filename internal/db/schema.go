package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on boot. Statements are idempotent
// so repeated boots are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			external_id TEXT PRIMARY KEY,
			email       TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			role        TEXT NOT NULL DEFAULT 'candidate',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id                      UUID PRIMARY KEY,
			title                   TEXT NOT NULL,
			description             TEXT NOT NULL DEFAULT '',
			interviewer_external_id TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
			candidate_external_id   TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
			start_at                TIMESTAMPTZ NOT NULL,
			status                  TEXT NOT NULL DEFAULT 'scheduled',
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_interviewer ON meetings(interviewer_external_id)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_candidate ON meetings(candidate_external_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
