package store

import (
	"context"
	"fmt"
)

// schema is applied on startup. Every statement is idempotent so repeated
// boots against the same database are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		issuer TEXT NOT NULL,
		issued_on DATE,
		accent_color TEXT NOT NULL DEFAULT '#1a365d',
		template_path TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE events ADD COLUMN IF NOT EXISTS template_path TEXT`,
	`CREATE TABLE IF NOT EXISTS recipients (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		position INT NOT NULL,
		name TEXT NOT NULL,
		certification_id TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (event_id, certification_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipients_event ON recipients (event_id, position)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		total INT NOT NULL DEFAULT 0,
		rendered INT NOT NULL DEFAULT 0,
		failed INT NOT NULL DEFAULT 0,
		archive_path TEXT,
		archive_size BIGINT NOT NULL DEFAULT 0,
		error TEXT,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_event ON jobs (event_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		actor_ip TEXT,
		action TEXT NOT NULL,
		event_id UUID,
		detail TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_occurred ON audit_log (occurred_at)`,
}

// Migrate applies the schema. It runs inside startup before the server
// accepts traffic.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
