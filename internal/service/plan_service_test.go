package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/repository"
	"github.com/alexanderramin/learnpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_SubmitWithText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.planService(nil).Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)

	assert.Equal(t, domain.PlanPendingApproval, detail.Plan.Status)
	require.Len(t, detail.Items, 4)
	assert.Equal(t, "Module 1: Topic 1", detail.Items[0].Title)
	assert.Equal(t, 5.0, detail.Items[0].EstimatedHours)
	assert.Equal(t, "", detail.Items[0].Prerequisites)
	assert.Equal(t, "Module 1", detail.Items[1].Prerequisites)

	stored, err := f.items.ListByPlan(ctx, detail.Plan.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestPlanService_SubmitDraftsWithWriter(t *testing.T) {
	f := newFixture(t)
	writer := &fakePlanWriter{draft: "**Module 1: Goroutines**\nEstimated Time: 3 hours"}
	req := submitRequest("")
	req.Profile = domain.LearnerProfile{Role: "SRE"}

	detail, err := f.planService(writer).Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Learn Go concurrency", writer.lastReq.Goals)
	assert.Equal(t, "SRE", writer.lastReq.Profile.Role)
	assert.Equal(t, writer.draft, detail.Plan.GeneratedText)
	require.Len(t, detail.Items, 4, "backfilled to the expected count")
	assert.Equal(t, 3.0, detail.Items[0].EstimatedHours)
	assert.True(t, detail.Items[3].Placeholder)
}

func TestPlanService_SubmitErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planService(nil).Submit(ctx, submitRequest(""))
	require.ErrorIs(t, err, llm.ErrDisabled)

	_, err = f.planService(&fakePlanWriter{err: llm.ErrTimeout}).Submit(ctx, submitRequest(""))
	require.ErrorIs(t, err, llm.ErrTimeout)

	bad := submitRequest("Module 1: x")
	bad.Goals = " "
	_, err = f.planService(nil).Submit(ctx, bad)
	require.Error(t, err)

	plans, err := f.plans.List(ctx, repository.PlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestPlanService_SubmitClipsLongText(t *testing.T) {
	f := newFixture(t)
	policy := DefaultPlanPolicy()
	text := testutil.PlanText(4, 5)
	policy.MaxPlanBytes = strings.Index(text, "Module 3:")
	svc := NewPlanService(f.plans, f.items, f.messages, f.uow, nil, policy)

	detail, err := svc.Submit(context.Background(), submitRequest(text))
	require.NoError(t, err)

	assert.Len(t, detail.Plan.GeneratedText, policy.MaxPlanBytes)
	require.Len(t, detail.Items, 4)
	assert.False(t, detail.Items[1].Placeholder)
	assert.True(t, detail.Items[2].Placeholder, "modules past the cut are backfilled")
}

func TestPlanService_SubmitRollsBackOnItemFailure(t *testing.T) {
	f := newFixture(t)
	// Exec #1 inserts the plan, #2 clears items, #3 inserts the first item.
	failUoW := &testutil.FailOnNthExecUoW{DB: f.db, FailOn: 3, Err: errors.New("injected item insert failure")}
	svc := NewPlanService(f.plans, f.items, f.messages, failUoW, nil, DefaultPlanPolicy())

	_, err := svc.Submit(context.Background(), submitRequest(testutil.PlanText(4, 5)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected item insert failure")

	plans, err := f.plans.List(context.Background(), repository.PlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans, "plan insert rolled back with the items")
}

func TestPlanService_ImproveReplacesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := &fakePlanWriter{improved: testutil.PlanText(2, 8)}
	svc := f.planService(writer)

	detail, err := svc.Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)
	oldIDs := []string{detail.Items[0].ID, detail.Items[1].ID}

	improved, err := svc.Improve(ctx, detail.Plan.DisplayID(), domain.SenderLearner, "learner-1", "fewer, longer modules")
	require.NoError(t, err)

	assert.Equal(t, writer.improved, improved.Plan.AdjustedText)
	assert.Equal(t, writer.improved, improved.Plan.PlanText())
	require.Len(t, improved.Items, 4)
	assert.Equal(t, 8.0, improved.Items[0].EstimatedHours)
	assert.True(t, improved.Items[2].Placeholder)
	assert.NotContains(t, oldIDs, improved.Items[0].ID)

	msgs, err := svc.Messages(ctx, detail.Plan.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.SenderLearner, msgs[0].Sender)
	assert.Equal(t, "fewer, longer modules", msgs[0].Body)
	assert.Equal(t, domain.SenderAI, msgs[1].Sender)
}

func TestPlanService_ImproveKeepsRequestWhenModelFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := &fakePlanWriter{err: llm.ErrProviderUnavailable}
	svc := f.planService(writer)

	detail, err := svc.Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)

	_, err = svc.Improve(ctx, detail.Plan.ID, domain.SenderAdmin, "admin-1", "add testing")
	require.ErrorIs(t, err, llm.ErrProviderUnavailable)

	msgs, err := svc.Messages(ctx, detail.Plan.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.SenderAdmin, msgs[0].Sender)

	got, err := svc.Get(ctx, detail.Plan.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Plan.AdjustedText)
	assert.Equal(t, detail.Items[0].ID, got.Items[0].ID)
}

func TestPlanService_ImproveRejectsSettledPlan(t *testing.T) {
	f := newFixture(t)
	detail := f.approvedPlan(t)

	_, err := f.planService(&fakePlanWriter{improved: "x"}).
		Improve(context.Background(), detail.Plan.ID, domain.SenderLearner, "learner-1", "more")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.planService(&fakePlanWriter{improved: "x"}).
		Improve(context.Background(), detail.Plan.ID, domain.SenderAI, "", "more")
	require.Error(t, err)
}

func TestPlanService_ApproveKeepsItemsWhenTextUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.planService(nil)

	detail, err := svc.Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, detail.Plan.ID, "admin-1", 250, "")
	require.NoError(t, err)

	assert.Equal(t, domain.PlanApproved, approved.Plan.Status)
	assert.Equal(t, 250, approved.Plan.RedeemablePoints)
	assert.Equal(t, detail.Items[0].ID, approved.Items[0].ID)

	_, err = svc.Approve(ctx, detail.Plan.ID, "admin-1", 250, "")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPlanService_ApproveWithAdjustedTextReparses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.planService(nil)

	detail, err := svc.Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, detail.Plan.ID, "admin-1", 0, testutil.PlanText(4, 9))
	require.NoError(t, err)

	stored, err := f.items.ListByPlan(ctx, detail.Plan.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, 9.0, stored[0].EstimatedHours)
	assert.Equal(t, approved.Items[0].ID, stored[0].ID)
}

func TestPlanService_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.planService(nil)

	detail, err := svc.Submit(ctx, submitRequest(testutil.PlanText(4, 5)))
	require.NoError(t, err)

	plan, err := svc.Reject(ctx, detail.Plan.ID, "  too broad ")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanRejected, plan.Status)
	assert.Equal(t, "too broad", plan.AdminNotes)

	_, err = svc.Approve(ctx, detail.Plan.ID, "admin-1", 0, "")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPlanService_GetResolvesPrefix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.NewTestPlan("a")
	a.ID = "aaaa1111-x"
	b := testutil.NewTestPlan("b")
	b.ID = "aaaa2222-x"
	require.NoError(t, f.plans.Create(ctx, a))
	require.NoError(t, f.plans.Create(ctx, b))
	svc := f.planService(nil)

	got, err := svc.Get(ctx, "aaaa1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.Plan.ID)

	_, err = svc.Get(ctx, "aaaa")
	require.ErrorIs(t, err, ErrAmbiguousID)

	_, err = svc.Get(ctx, "zzzz")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlanService_ListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.planService(nil).List(context.Background(), repository.PlanFilter{Status: "archived"})
	require.Error(t, err)
}

func TestPlanService_Preview(t *testing.T) {
	f := newFixture(t)
	svc := f.planService(nil)

	mods, err := svc.Preview(testutil.PlanText(2, 20), 1, 10)
	require.NoError(t, err)
	require.Len(t, mods, 4)
	assert.Equal(t, 10.0, mods[0].EstimatedHours, "clamped to the weekly budget")
	assert.True(t, mods[3].Placeholder)

	_, err = svc.Preview("   ", 1, 10)
	require.ErrorIs(t, err, ErrPlanTextEmpty)

	_, err = svc.Preview("Module 1: x", 1, 0)
	require.ErrorIs(t, err, planparse.ErrInvalidContext)

	plans, err := f.plans.List(context.Background(), repository.PlanFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans, "preview never persists")
}
