package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPlanRepo(t *testing.T) *SQLiteLearningPlanRepo {
	t.Helper()
	return NewSQLiteLearningPlanRepo(testutil.NewTestDB(t))
}

func TestPlanRepo_CreateAndGetByID(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	p := testutil.NewTestPlan("Learn Kubernetes operators",
		testutil.WithDuration(1.5, 8),
		testutil.WithGeneratedText("Module 1: Operators\nEstimated Time: 4 hours"),
		testutil.WithTechStacks(
			domain.TechStack{Name: "Go", Proficiency: domain.ProficiencyAdvanced, YearsOfExperience: 4},
			domain.TechStack{Name: "Kubernetes", Proficiency: domain.ProficiencyBeginner},
		),
	)
	p.ProjectRelated = true
	p.ProjectName = "Platform"
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Goals, got.Goals)
	assert.Equal(t, 1.5, got.Months)
	assert.Equal(t, 8.0, got.HoursPerWeek)
	assert.True(t, got.ProjectRelated)
	assert.Equal(t, "Platform", got.ProjectName)
	assert.Equal(t, p.TechStacks, got.TechStacks)
	assert.Equal(t, p.GeneratedText, got.GeneratedText)
	assert.Equal(t, domain.PlanPendingApproval, got.Status)
	assert.Nil(t, got.ApprovedAt)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestPlanRepo_GetByID_NotFound(t *testing.T) {
	repo := setupPlanRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_UpdateApproval(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	p := testutil.NewTestPlan("Rust")
	require.NoError(t, repo.Create(ctx, p))

	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, p.Approve("admin-7", 150, now))
	p.AdjustedText = "Module 1: Ownership"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanApproved, got.Status)
	assert.Equal(t, "admin-7", got.ApprovedBy)
	assert.Equal(t, 150, got.RedeemablePoints)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, now.Equal(*got.ApprovedAt))
	assert.Equal(t, "Module 1: Ownership", got.AdjustedText)
}

func TestPlanRepo_UpdateMissing(t *testing.T) {
	repo := setupPlanRepo(t)
	err := repo.Update(context.Background(), testutil.NewTestPlan("ghost"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_FindByIDPrefix(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	a := testutil.NewTestPlan("a")
	a.ID = "abc12345-0000"
	b := testutil.NewTestPlan("b")
	b.ID = "abc99999-0000"
	c := testutil.NewTestPlan("c")
	c.ID = "zzz00000-0000"
	for _, p := range []*domain.LearningPlan{a, b, c} {
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.FindByIDPrefix(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.FindByIDPrefix(ctx, "abc1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = repo.FindByIDPrefix(ctx, "a_c")
	require.NoError(t, err)
	assert.Empty(t, got, "underscore is matched literally")
}

func TestPlanRepo_ListFilters(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p1 := testutil.NewTestPlan("one", testutil.WithCreatedAt(base))
	p2 := testutil.NewTestPlan("two", testutil.WithCreatedAt(base.Add(time.Hour)),
		testutil.WithPlanStatus(domain.PlanApproved))
	p3 := testutil.NewTestPlan("three", testutil.WithCreatedAt(base.Add(2*time.Hour)),
		testutil.WithLearner("learner-2"))
	for _, p := range []*domain.LearningPlan{p1, p2, p3} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.List(ctx, PlanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Goals, "newest first")

	pending, err := repo.List(ctx, PlanFilter{Status: domain.PlanPendingApproval})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	mine, err := repo.List(ctx, PlanFilter{Status: domain.PlanPendingApproval, LearnerID: "learner-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "one", mine[0].Goals)
}
