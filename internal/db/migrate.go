package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// full list is replayed on each start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS learning_plans (
		id                TEXT PRIMARY KEY,
		learner_id        TEXT NOT NULL,
		goals             TEXT NOT NULL,
		months            REAL NOT NULL CHECK(months > 0),
		hours_per_week    REAL NOT NULL CHECK(hours_per_week > 0),
		project_related   INTEGER NOT NULL DEFAULT 0,
		project_name      TEXT NOT NULL DEFAULT '',
		tech_stacks       TEXT NOT NULL DEFAULT '[]',
		generated_text    TEXT NOT NULL DEFAULT '',
		adjusted_text     TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'pending_approval'
		                  CHECK(status IN ('pending_approval','approved','in_progress','completed','rejected')),
		admin_notes       TEXT NOT NULL DEFAULT '',
		approved_by       TEXT NOT NULL DEFAULT '',
		approved_at       TEXT,
		redeemable_points INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_learning_plans_learner ON learning_plans(learner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_plans_status ON learning_plans(status)`,

	`CREATE TABLE IF NOT EXISTS learning_items (
		id              TEXT PRIMARY KEY,
		plan_id         TEXT NOT NULL REFERENCES learning_plans(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		objectives      TEXT NOT NULL DEFAULT '',
		estimated_hours REAL NOT NULL CHECK(estimated_hours > 0),
		prerequisites   TEXT NOT NULL DEFAULT '',
		order_index     INTEGER NOT NULL CHECK(order_index >= 1),
		placeholder     INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'not_started'
		                CHECK(status IN ('not_started','in_progress','completed')),
		content         TEXT NOT NULL DEFAULT '',
		started_at      TEXT,
		completed_at    TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL,
		UNIQUE(plan_id, order_index)
	)`,

	`CREATE TABLE IF NOT EXISTS plan_chat_messages (
		id         TEXT PRIMARY KEY,
		plan_id    TEXT NOT NULL REFERENCES learning_plans(id) ON DELETE CASCADE,
		sender     TEXT NOT NULL CHECK(sender IN ('learner','admin','ai')),
		sender_id  TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_chat_messages_plan ON plan_chat_messages(plan_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS assessments (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL DEFAULT 'module' CHECK (kind IN ('module', 'final')),
		item_id      TEXT REFERENCES learning_items(id) ON DELETE CASCADE,
		plan_id      TEXT NOT NULL REFERENCES learning_plans(id) ON DELETE CASCADE,
		questions    TEXT NOT NULL,
		answers      TEXT NOT NULL DEFAULT '[]',
		score        INTEGER,
		passed       INTEGER NOT NULL DEFAULT 0,
		submitted_at TEXT,
		created_at   TEXT NOT NULL,
		CHECK ((kind = 'module') = (item_id IS NOT NULL))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assessments_item ON assessments(item_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_plan_kind ON assessments(plan_id, kind, created_at)`,
}
