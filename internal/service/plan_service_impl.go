package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/intelligence"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/alexanderramin/learnpath/internal/planparse"
	"github.com/alexanderramin/learnpath/internal/repository"
	"github.com/google/uuid"
)

// aiUpdateReply is recorded in the plan conversation after a model revision.
const aiUpdateReply = "Learning plan has been updated based on your feedback."

// PlanPolicy is the parse configuration shared by every call site that
// turns plan text into modules.
type PlanPolicy struct {
	Parse        planparse.Options
	MaxPlanBytes int
}

func DefaultPlanPolicy() PlanPolicy {
	return PlanPolicy{
		Parse:        planparse.Options{BackfillMissing: true},
		MaxPlanBytes: 64 << 10,
	}
}

type planService struct {
	plans    repository.LearningPlanRepo
	items    repository.LearningItemRepo
	messages repository.ChatMessageRepo
	uow      db.UnitOfWork
	writer   intelligence.PlanWriter
	policy   PlanPolicy
	observer UseCaseObserver
}

// NewPlanService wires the plan use cases. writer may be nil when no model
// is configured; Submit then requires caller-supplied text.
func NewPlanService(
	plans repository.LearningPlanRepo,
	items repository.LearningItemRepo,
	messages repository.ChatMessageRepo,
	uow db.UnitOfWork,
	writer intelligence.PlanWriter,
	policy PlanPolicy,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		plans:    plans,
		items:    items,
		messages: messages,
		uow:      uow,
		writer:   writer,
		policy:   policy,
		observer: useCaseObserverOrNoop(observers),
	}
}

// modules parses text for plan under the shared policy.
func (s *planService) modules(plan *domain.LearningPlan, text string) ([]planparse.Module, error) {
	text = clipText(text, s.policy.MaxPlanBytes)
	if strings.TrimSpace(text) == "" {
		return nil, ErrPlanTextEmpty
	}
	ctx := plan.ParseContext()
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return planparse.Parse(text, ctx, s.policy.Parse), nil
}

func (s *planService) Submit(ctx context.Context, req SubmitPlanRequest) (detail *PlanDetail, err error) {
	fields := map[string]any{"learner_id": req.LearnerID}
	defer track(ctx, s.observer, "plan-submit", fields)(&err)

	now := time.Now().UTC()
	plan := &domain.LearningPlan{
		ID:             uuid.New().String(),
		LearnerID:      strings.TrimSpace(req.LearnerID),
		Goals:          strings.TrimSpace(req.Goals),
		Months:         req.Months,
		HoursPerWeek:   req.HoursPerWeek,
		ProjectRelated: req.ProjectRelated,
		ProjectName:    strings.TrimSpace(req.ProjectName),
		TechStacks:     req.TechStacks,
		Status:         domain.PlanPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = plan.Validate(); err != nil {
		return nil, err
	}

	text := req.PlanText
	if strings.TrimSpace(text) == "" {
		if s.writer == nil {
			return nil, fmt.Errorf("drafting plan: %w", llm.ErrDisabled)
		}
		text, err = s.writer.Draft(ctx, intelligence.PlanRequestFor(plan, req.Profile))
		if err != nil {
			return nil, err
		}
		fields["drafted"] = true
	}
	plan.GeneratedText = clipText(text, s.policy.MaxPlanBytes)

	mods, err := s.modules(plan, plan.GeneratedText)
	if err != nil {
		return nil, err
	}
	items := domain.ItemsFromModules(plan.ID, mods, now)
	fields["plan_id"] = plan.ID
	fields["module_count"] = len(items)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteLearningPlanRepo(tx).Create(ctx, plan); err != nil {
			return err
		}
		return repository.NewSQLiteLearningItemRepo(tx).ReplaceForPlan(ctx, plan.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return &PlanDetail{Plan: plan, Items: items}, nil
}

func (s *planService) Improve(ctx context.Context, planRef string, sender domain.SenderRole, senderID, request string) (detail *PlanDetail, err error) {
	fields := map[string]any{"plan": planRef, "sender": string(sender)}
	defer track(ctx, s.observer, "plan-improve", fields)(&err)

	if sender != domain.SenderLearner && sender != domain.SenderAdmin {
		return nil, fmt.Errorf("improvement requests come from a learner or an admin, not %q", sender)
	}
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("improvement request is empty")
	}

	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	if !plan.CanRevise() {
		return nil, fmt.Errorf("%w: plan %s is %s and can no longer be revised",
			domain.ErrInvalidTransition, plan.DisplayID(), plan.Status)
	}
	if s.writer == nil {
		return nil, fmt.Errorf("improving plan: %w", llm.ErrDisabled)
	}

	// The request is kept even when the model call below fails.
	if err = s.messages.Create(ctx, &domain.ChatMessage{
		ID:        uuid.New().String(),
		PlanID:    plan.ID,
		Sender:    sender,
		SenderID:  senderID,
		Body:      strings.TrimSpace(request),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	improved, err := s.writer.Improve(ctx, plan.PlanText(), request)
	if err != nil {
		return nil, err
	}
	return s.revise(ctx, plan, improved, fields, func(ctx context.Context, tx db.DBTX, now time.Time) error {
		return repository.NewSQLiteChatMessageRepo(tx).Create(ctx, &domain.ChatMessage{
			ID:        uuid.New().String(),
			PlanID:    plan.ID,
			Sender:    domain.SenderAI,
			Body:      aiUpdateReply,
			CreatedAt: now,
		})
	})
}

// revise stores text as the plan's adjusted text and rebuilds the module set
// when the effective text changed. extra runs in the same transaction.
func (s *planService) revise(
	ctx context.Context,
	plan *domain.LearningPlan,
	text string,
	fields map[string]any,
	extra func(ctx context.Context, tx db.DBTX, now time.Time) error,
) (*PlanDetail, error) {
	now := time.Now().UTC()
	before := plan.PlanText()
	if strings.TrimSpace(text) != "" {
		plan.AdjustedText = clipText(text, s.policy.MaxPlanBytes)
	}
	plan.UpdatedAt = now

	current, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	items := current
	reparse := plan.PlanText() != before || len(current) == 0
	if reparse {
		mods, err := s.modules(plan, plan.PlanText())
		if err != nil {
			return nil, err
		}
		items = domain.ItemsFromModules(plan.ID, mods, now)
	}
	fields["plan_id"] = plan.ID
	fields["reparsed"] = reparse
	fields["module_count"] = len(items)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteLearningPlanRepo(tx).Update(ctx, plan); err != nil {
			return err
		}
		if reparse {
			if err := repository.NewSQLiteLearningItemRepo(tx).ReplaceForPlan(ctx, plan.ID, items); err != nil {
				return err
			}
		}
		if extra != nil {
			return extra(ctx, tx, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PlanDetail{Plan: plan, Items: items}, nil
}

func (s *planService) Approve(ctx context.Context, planRef, adminID string, points int, adjustedText string) (detail *PlanDetail, err error) {
	fields := map[string]any{"plan": planRef, "admin_id": adminID, "points": points}
	defer track(ctx, s.observer, "plan-approve", fields)(&err)

	if strings.TrimSpace(adminID) == "" {
		return nil, fmt.Errorf("admin id is required")
	}
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	if err = plan.Approve(adminID, points, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.revise(ctx, plan, adjustedText, fields, nil)
}

func (s *planService) Reject(ctx context.Context, planRef, notes string) (plan *domain.LearningPlan, err error) {
	fields := map[string]any{"plan": planRef}
	defer track(ctx, s.observer, "plan-reject", fields)(&err)

	plan, err = resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	if err = plan.Reject(strings.TrimSpace(notes), time.Now().UTC()); err != nil {
		return nil, err
	}
	if err = s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) Get(ctx context.Context, planRef string) (*PlanDetail, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return &PlanDetail{Plan: plan, Items: items}, nil
}

func (s *planService) List(ctx context.Context, filter repository.PlanFilter) ([]*domain.LearningPlan, error) {
	if filter.Status != "" && !domain.ValidPlanStatuses[filter.Status] {
		return nil, fmt.Errorf("unknown plan status %q", filter.Status)
	}
	return s.plans.List(ctx, filter)
}

func (s *planService) Items(ctx context.Context, planRef string) ([]*domain.LearningItem, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	return s.items.ListByPlan(ctx, plan.ID)
}

func (s *planService) Messages(ctx context.Context, planRef string) ([]*domain.ChatMessage, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByPlan(ctx, plan.ID)
}

func (s *planService) Preview(text string, months, hoursPerWeek float64) ([]planparse.Module, error) {
	plan := &domain.LearningPlan{Months: months, HoursPerWeek: hoursPerWeek}
	mods, err := s.modules(plan, text)
	if err != nil {
		return nil, err
	}
	return mods, nil
}
