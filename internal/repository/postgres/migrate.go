package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS issues (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL CHECK (status IN ('Open', 'InProgress', 'Done')),
		priority    TEXT NOT NULL CHECK (priority IN ('Low', 'Medium', 'High')),
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_status_created ON issues (status, created_at)`,
}

// Migrate creates the issues table and its status index. It is safe to run
// more than once.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

// DB exposes the pool for migrations.
func (r *IssueRepo) DB() *sql.DB { return r.db }
