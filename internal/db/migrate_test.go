package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = "2025-01-01T00:00:00Z"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertPlan(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO learning_plans (id, learner_id, goals, months, hours_per_week, created_at, updated_at)
		VALUES (?, 'learner', 'Learn Go', 1, 5, ?, ?)`, id, ts, ts)
	require.NoError(t, err)
}

func insertItem(db *sql.DB, id, planID string, order int) error {
	_, err := db.Exec(`INSERT INTO learning_items (id, plan_id, title, estimated_hours, order_index, created_at, updated_at)
		VALUES (?, ?, 'Module', 2, ?, ?, ?)`, id, planID, order, ts, ts)
	return err
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"learning_plans", "learning_items", "plan_chat_messages", "assessments"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{
		"idx_learning_plans_learner",
		"idx_learning_plans_status",
		"idx_plan_chat_messages_plan",
		"idx_assessments_item",
		"idx_assessments_plan_kind",
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestOpenDB_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	err := insertItem(db, "i1", "no-such-plan", 1)
	assert.Error(t, err, "items must reference an existing plan")
}

func TestOpenDB_FileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "learnpath.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestMigrate_ItemOrderIsUniquePerPlan(t *testing.T) {
	db := openTestDB(t)
	insertPlan(t, db, "p1")
	insertPlan(t, db, "p2")

	require.NoError(t, insertItem(db, "i1", "p1", 1))
	assert.Error(t, insertItem(db, "i2", "p1", 1), "duplicate order index within a plan")
	assert.NoError(t, insertItem(db, "i3", "p2", 1), "same order index in another plan")
	assert.Error(t, insertItem(db, "i4", "p1", 0), "order index is 1-based")
}

func TestMigrate_StatusCheckConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO learning_plans (id, learner_id, goals, months, hours_per_week, status, created_at, updated_at)
		VALUES ('p1', 'l', 'g', 1, 5, 'INVALID', ?, ?)`, ts, ts)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO learning_plans (id, learner_id, goals, months, hours_per_week, created_at, updated_at)
		VALUES ('p2', 'l', 'g', 0, 5, ?, ?)`, ts, ts)
	assert.Error(t, err, "months must be positive")
}

func TestMigrate_DeletingPlanCascades(t *testing.T) {
	db := openTestDB(t)
	insertPlan(t, db, "p1")
	require.NoError(t, insertItem(db, "i1", "p1", 1))
	_, err := db.Exec(`INSERT INTO plan_chat_messages (id, plan_id, sender, body, created_at) VALUES ('m1', 'p1', 'learner', 'hi', ?)`, ts)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM learning_plans WHERE id = 'p1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM learning_items`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM plan_chat_messages`).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrate_AssessmentKindMatchesItem(t *testing.T) {
	db := openTestDB(t)
	insertPlan(t, db, "p1")
	require.NoError(t, insertItem(db, "i1", "p1", 1))

	insert := func(id, kind string, itemID any) error {
		_, err := db.Exec(`INSERT INTO assessments (id, kind, item_id, plan_id, questions, created_at)
			VALUES (?, ?, ?, 'p1', '[]', ?)`, id, kind, itemID, ts)
		return err
	}
	assert.NoError(t, insert("a1", "module", "i1"))
	assert.NoError(t, insert("a2", "final", nil))
	assert.Error(t, insert("a3", "module", nil), "module quizzes need an item")
	assert.Error(t, insert("a4", "final", "i1"), "the final quiz belongs to no item")
	assert.Error(t, insert("a5", "midterm", nil))
}
