package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
)

const assessmentColumns = `id, kind, item_id, plan_id, questions, answers, score, passed, submitted_at, created_at`

// SQLiteAssessmentRepo stores quizzes with their questions and latest answers
// as JSON documents. Final quizzes are stored with a NULL item_id.
type SQLiteAssessmentRepo struct {
	db db.DBTX
}

func NewSQLiteAssessmentRepo(conn db.DBTX) *SQLiteAssessmentRepo {
	return &SQLiteAssessmentRepo{db: conn}
}

func (r *SQLiteAssessmentRepo) Create(ctx context.Context, a *domain.Assessment) error {
	questions, answers, err := encodeQuiz(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO assessments (`+assessmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		string(assessmentKind(a)),
		nullableString(a.ItemID),
		a.PlanID,
		questions,
		answers,
		nullableInt(a.Score),
		boolToInt(a.Passed),
		nullableTime(a.SubmittedAt),
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting assessment: %w", err)
	}
	return nil
}

func (r *SQLiteAssessmentRepo) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	a, err := scanAssessment(row)
	if err != nil {
		return nil, notFound(err, "assessment")
	}
	return a, nil
}

func (r *SQLiteAssessmentRepo) LatestForItem(ctx context.Context, itemID string) (*domain.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE item_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, itemID)
	a, err := scanAssessment(row)
	if err != nil {
		return nil, notFound(err, "assessment")
	}
	return a, nil
}

// LatestFinalForPlan returns the most recent final quiz of a plan.
func (r *SQLiteAssessmentRepo) LatestFinalForPlan(ctx context.Context, planID string) (*domain.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE plan_id = ? AND kind = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, planID, string(domain.AssessmentFinal))
	a, err := scanAssessment(row)
	if err != nil {
		return nil, notFound(err, "final assessment")
	}
	return a, nil
}

// Update records a submission. Questions are immutable once created.
func (r *SQLiteAssessmentRepo) Update(ctx context.Context, a *domain.Assessment) error {
	_, answers, err := encodeQuiz(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessments SET answers = ?, score = ?, passed = ?, submitted_at = ? WHERE id = ?`,
		answers, nullableInt(a.Score), boolToInt(a.Passed), nullableTime(a.SubmittedAt), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating assessment: %w", err)
	}
	return requireOneRow(res, "assessment")
}

func assessmentKind(a *domain.Assessment) domain.AssessmentKind {
	if a.Kind == "" {
		return domain.AssessmentModule
	}
	return a.Kind
}

func encodeQuiz(a *domain.Assessment) (string, string, error) {
	questions, err := json.Marshal(a.Questions)
	if err != nil {
		return "", "", fmt.Errorf("encoding questions: %w", err)
	}
	ans := a.Answers
	if ans == nil {
		ans = []string{}
	}
	answers, err := json.Marshal(ans)
	if err != nil {
		return "", "", fmt.Errorf("encoding answers: %w", err)
	}
	return string(questions), string(answers), nil
}

func scanAssessment(s rowScanner) (*domain.Assessment, error) {
	var (
		a                  domain.Assessment
		kind               string
		itemID             sql.NullString
		questions, answers string
		score              sql.NullInt64
		passed             int
		submittedAt        sql.NullString
		createdAt          string
	)
	err := s.Scan(&a.ID, &kind, &itemID, &a.PlanID, &questions, &answers, &score, &passed, &submittedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	a.Kind = domain.AssessmentKind(kind)
	a.ItemID = itemID.String

	if err := json.Unmarshal([]byte(questions), &a.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	a.Passed = intToBool(passed)
	a.SubmittedAt = parseNullableTime(submittedAt)
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
