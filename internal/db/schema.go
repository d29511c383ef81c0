package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate bootstraps the schema. Statements are idempotent so the API and
// worker can both run this at start without coordination.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  TEXT PRIMARY KEY,
		username            TEXT NOT NULL,
		email               TEXT NOT NULL UNIQUE,
		password_hash       TEXT NOT NULL,
		role                TEXT NOT NULL DEFAULT 'user',
		reset_token         TEXT,
		reset_token_expires TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id),
		expense_name TEXT NOT NULL,
		expense_type TEXT NOT NULL,
		expense_date TIMESTAMPTZ NOT NULL,
		issued_to    TEXT NOT NULL,
		amount       DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS expenses_user_date_idx ON expenses (user_id, expense_date)`,

	`CREATE TABLE IF NOT EXISTS todo_lists (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		list_name  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT todo_lists_user_name_uniq UNIQUE (user_id, list_name)
	)`,

	// Tasks are rows of their own so task edits never rewrite the whole
	// list; deleting a list still removes its tasks in one statement.
	`CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		list_id    TEXT NOT NULL REFERENCES todo_lists(id) ON DELETE CASCADE,
		task_name  TEXT NOT NULL,
		duration   TIMESTAMPTZ NOT NULL,
		reminder   TIMESTAMPTZ,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_list_idx ON tasks (list_id)`,

	`CREATE TABLE IF NOT EXISTS sticky_notes (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL DEFAULT '',
		color      TEXT NOT NULL DEFAULT '#FFF9A9',
		rotation   DOUBLE PRECISION NOT NULL DEFAULT 0,
		pos_x      DOUBLE PRECISION NOT NULL DEFAULT 0,
		pos_y      DOUBLE PRECISION NOT NULL DEFAULT 0,
		pinned     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sticky_notes_user_idx ON sticky_notes (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		payload    JSONB NOT NULL,
		status     TEXT NOT NULL,
		attempts   INT NOT NULL DEFAULT 0,
		max_tries  INT NOT NULL DEFAULT 5,
		run_at     TIMESTAMPTZ NOT NULL,
		locked_by  TEXT,
		locked_at  TIMESTAMPTZ,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_pending_idx ON jobs (status, run_at)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
