package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
)

// planColumns is the canonical SELECT column list for learning_plans.
const planColumns = `id, learner_id, goals, months, hours_per_week, project_related,
		project_name, tech_stacks, generated_text, adjusted_text, status, admin_notes,
		approved_by, approved_at, redeemable_points, created_at, updated_at`

// SQLiteLearningPlanRepo implements LearningPlanRepo using a SQLite database.
type SQLiteLearningPlanRepo struct {
	db db.DBTX
}

func NewSQLiteLearningPlanRepo(conn db.DBTX) *SQLiteLearningPlanRepo {
	return &SQLiteLearningPlanRepo{db: conn}
}

func (r *SQLiteLearningPlanRepo) Create(ctx context.Context, p *domain.LearningPlan) error {
	stacks, err := encodeStacks(p.TechStacks)
	if err != nil {
		return err
	}
	query := `INSERT INTO learning_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.LearnerID,
		p.Goals,
		p.Months,
		p.HoursPerWeek,
		boolToInt(p.ProjectRelated),
		p.ProjectName,
		stacks,
		p.GeneratedText,
		p.AdjustedText,
		string(p.Status),
		p.AdminNotes,
		p.ApprovedBy,
		nullableTime(p.ApprovedAt),
		p.RedeemablePoints,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting learning plan: %w", err)
	}
	return nil
}

func (r *SQLiteLearningPlanRepo) GetByID(ctx context.Context, id string) (*domain.LearningPlan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM learning_plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if err != nil {
		return nil, notFound(err, "learning plan")
	}
	return p, nil
}

func (r *SQLiteLearningPlanRepo) FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.LearningPlan, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM learning_plans WHERE id LIKE ? ESCAPE '\' ORDER BY created_at`,
		escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("finding learning plans by prefix: %w", err)
	}
	defer rows.Close()
	return scanPlans(rows)
}

func (r *SQLiteLearningPlanRepo) List(ctx context.Context, filter PlanFilter) ([]*domain.LearningPlan, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.LearnerID != "" {
		where = append(where, "learner_id = ?")
		args = append(args, filter.LearnerID)
	}
	query := `SELECT ` + planColumns + ` FROM learning_plans`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing learning plans: %w", err)
	}
	defer rows.Close()
	return scanPlans(rows)
}

func (r *SQLiteLearningPlanRepo) Update(ctx context.Context, p *domain.LearningPlan) error {
	stacks, err := encodeStacks(p.TechStacks)
	if err != nil {
		return err
	}
	query := `UPDATE learning_plans SET goals = ?, months = ?, hours_per_week = ?,
		project_related = ?, project_name = ?, tech_stacks = ?, generated_text = ?,
		adjusted_text = ?, status = ?, admin_notes = ?, approved_by = ?, approved_at = ?,
		redeemable_points = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Goals,
		p.Months,
		p.HoursPerWeek,
		boolToInt(p.ProjectRelated),
		p.ProjectName,
		stacks,
		p.GeneratedText,
		p.AdjustedText,
		string(p.Status),
		p.AdminNotes,
		p.ApprovedBy,
		nullableTime(p.ApprovedAt),
		p.RedeemablePoints,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating learning plan: %w", err)
	}
	return requireOneRow(res, "learning plan")
}

func scanPlan(s rowScanner) (*domain.LearningPlan, error) {
	var (
		p                    domain.LearningPlan
		projectRelated       int
		stacks, status       string
		approvedAt           sql.NullString
		createdAt, updatedAt string
	)
	err := s.Scan(
		&p.ID, &p.LearnerID, &p.Goals, &p.Months, &p.HoursPerWeek, &projectRelated,
		&p.ProjectName, &stacks, &p.GeneratedText, &p.AdjustedText, &status, &p.AdminNotes,
		&p.ApprovedBy, &approvedAt, &p.RedeemablePoints, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ProjectRelated = intToBool(projectRelated)
	p.Status = domain.PlanStatus(status)
	p.ApprovedAt = parseNullableTime(approvedAt)
	if err := json.Unmarshal([]byte(stacks), &p.TechStacks); err != nil {
		return nil, fmt.Errorf("decoding tech stacks: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlans(rows *sql.Rows) ([]*domain.LearningPlan, error) {
	var plans []*domain.LearningPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning learning plan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating learning plans: %w", err)
	}
	return plans, nil
}

func encodeStacks(stacks []domain.TechStack) (string, error) {
	if stacks == nil {
		stacks = []domain.TechStack{}
	}
	b, err := json.Marshal(stacks)
	if err != nil {
		return "", fmt.Errorf("encoding tech stacks: %w", err)
	}
	return string(b), nil
}

// requireOneRow turns an UPDATE that matched nothing into ErrNotFound.
func requireOneRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}
