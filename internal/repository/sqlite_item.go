package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
)

const itemColumns = `id, plan_id, title, objectives, estimated_hours, prerequisites,
		order_index, placeholder, status, content, started_at, completed_at,
		created_at, updated_at`

// SQLiteLearningItemRepo implements LearningItemRepo using a SQLite database.
type SQLiteLearningItemRepo struct {
	db db.DBTX
}

func NewSQLiteLearningItemRepo(conn db.DBTX) *SQLiteLearningItemRepo {
	return &SQLiteLearningItemRepo{db: conn}
}

func (r *SQLiteLearningItemRepo) ReplaceForPlan(ctx context.Context, planID string, items []*domain.LearningItem) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM learning_items WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("clearing learning items: %w", err)
	}
	query := `INSERT INTO learning_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		if it.PlanID != planID {
			return fmt.Errorf("item %q belongs to plan %q, not %q", it.Title, it.PlanID, planID)
		}
		_, err := r.db.ExecContext(ctx, query,
			it.ID,
			it.PlanID,
			it.Title,
			it.Objectives,
			it.EstimatedHours,
			it.Prerequisites,
			it.OrderIndex,
			boolToInt(it.Placeholder),
			string(it.Status),
			it.Content,
			nullableTime(it.StartedAt),
			nullableTime(it.CompletedAt),
			formatTime(it.CreatedAt),
			formatTime(it.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting learning item %d: %w", it.OrderIndex, err)
		}
	}
	return nil
}

func (r *SQLiteLearningItemRepo) GetByID(ctx context.Context, id string) (*domain.LearningItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM learning_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err != nil {
		return nil, notFound(err, "learning item")
	}
	return it, nil
}

func (r *SQLiteLearningItemRepo) GetByOrder(ctx context.Context, planID string, orderIndex int) (*domain.LearningItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM learning_items WHERE plan_id = ? AND order_index = ?`,
		planID, orderIndex)
	it, err := scanItem(row)
	if err != nil {
		return nil, notFound(err, "learning item")
	}
	return it, nil
}

func (r *SQLiteLearningItemRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.LearningItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM learning_items WHERE plan_id = ? ORDER BY order_index`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing learning items: %w", err)
	}
	defer rows.Close()

	var items []*domain.LearningItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning learning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating learning items: %w", err)
	}
	return items, nil
}

// Update persists the mutable progress fields. Structure fields (title,
// hours, order) only change through ReplaceForPlan.
func (r *SQLiteLearningItemRepo) Update(ctx context.Context, it *domain.LearningItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE learning_items SET status = ?, content = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		string(it.Status),
		it.Content,
		nullableTime(it.StartedAt),
		nullableTime(it.CompletedAt),
		formatTime(it.UpdatedAt),
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating learning item: %w", err)
	}
	return requireOneRow(res, "learning item")
}

func scanItem(s rowScanner) (*domain.LearningItem, error) {
	var (
		it                     domain.LearningItem
		placeholder            int
		status                 string
		startedAt, completedAt sql.NullString
		createdAt, updatedAt   string
	)
	err := s.Scan(
		&it.ID, &it.PlanID, &it.Title, &it.Objectives, &it.EstimatedHours, &it.Prerequisites,
		&it.OrderIndex, &placeholder, &status, &it.Content, &startedAt, &completedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Placeholder = intToBool(placeholder)
	it.Status = domain.ItemStatus(status)
	it.StartedAt = parseNullableTime(startedAt)
	it.CompletedAt = parseNullableTime(completedAt)
	if it.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &it, nil
}
