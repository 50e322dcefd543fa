package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_StartLocksLaterModules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail := f.approvedPlan(t)
	svc := f.progressService()

	_, err := svc.Start(ctx, detail.Plan.ID, 2)
	require.ErrorIs(t, err, domain.ErrItemLocked)

	item, err := svc.Start(ctx, detail.Plan.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemInProgress, item.Status)
	require.NotNil(t, item.StartedAt)

	plan, err := f.plans.GetByID(ctx, detail.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanInProgress, plan.Status, "first start begins the plan")

	// Starting again is a no-op.
	again, err := svc.Start(ctx, detail.Plan.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, again.StartedAt)
	assert.WithinDuration(t, *item.StartedAt, *again.StartedAt, time.Millisecond)
}

func TestProgressService_CompleteUnlocksNext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail := f.approvedPlan(t)
	svc := f.progressService()

	_, err := svc.Complete(ctx, detail.Plan.ID, 2)
	require.ErrorIs(t, err, domain.ErrItemLocked)

	_, err = svc.Complete(ctx, detail.Plan.ID, 1)
	require.NoError(t, err)

	item, err := svc.Start(ctx, detail.Plan.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemInProgress, item.Status)
}

func TestProgressService_LastCompletionAwaitsFinalQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail := f.approvedPlan(t)
	svc := f.progressService()

	for i := 1; i <= 4; i++ {
		_, err := svc.Start(ctx, detail.Plan.ID, i)
		require.NoError(t, err)
		_, err = svc.Complete(ctx, detail.Plan.ID, i)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, detail.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanInProgress, summary.Plan.Status, "the final quiz completes the plan")
	assert.True(t, summary.FinalQuizDue)
	assert.Equal(t, 100, summary.Pct)
	assert.Equal(t, 4, summary.Completed)
	assert.Nil(t, summary.Next)
	assert.Equal(t, summary.HoursTotal, summary.HoursCompleted)

	// Completing again is idempotent.
	_, err = svc.Complete(ctx, detail.Plan.ID, 4)
	require.NoError(t, err)
}

func TestProgressService_CompleteBeginsApprovedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail := f.approvedPlan(t)

	_, err := f.progressService().Complete(ctx, detail.Plan.ID, 1)
	require.NoError(t, err)

	plan, err := f.plans.GetByID(ctx, detail.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanInProgress, plan.Status)
}

func TestProgressService_RequiresApprovedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail, err := f.planService(nil).Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)
	svc := f.progressService()

	_, err = svc.Start(ctx, detail.Plan.ID, 1)
	require.ErrorIs(t, err, ErrPlanNotLearnable)

	_, err = svc.Complete(ctx, detail.Plan.ID, 1)
	require.ErrorIs(t, err, ErrPlanNotLearnable)
}

func TestProgressService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detail := f.approvedPlan(t)
	svc := f.progressService()

	_, err := svc.Complete(ctx, detail.Plan.ID, 1)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, detail.Plan.DisplayID())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 25, summary.Pct)
	assert.Equal(t, 20.0, summary.HoursTotal)
	assert.Equal(t, 5.0, summary.HoursCompleted)
	require.NotNil(t, summary.Next)
	assert.Equal(t, 2, summary.Next.OrderIndex)

	assert.Equal(t, domain.RiskOnTrack, summary.Pace.Level)
	assert.Equal(t, 15.0, summary.Pace.RemainingHours)
	require.NotNil(t, summary.Pace.DaysLeft)
	assert.Greater(t, *summary.Pace.DaysLeft, 29)
}

func TestProgressService_StartMissingModule(t *testing.T) {
	f := newFixture(t)
	detail := f.approvedPlan(t)
	_, err := f.progressService().Start(context.Background(), detail.Plan.ID, 9)
	require.Error(t, err)
}
