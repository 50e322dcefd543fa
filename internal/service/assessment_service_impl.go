package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/intelligence"
	"github.com/alexanderramin/learnpath/internal/llm"
	"github.com/alexanderramin/learnpath/internal/repository"
	"github.com/google/uuid"
)

const (
	// DefaultPassPct is the lowest score that passes a module quiz.
	DefaultPassPct = 30
	// DefaultFinalPassPct is the lowest score that passes the final quiz.
	DefaultFinalPassPct = 10
)

// AssessmentPolicy holds the pass marks, in percent.
type AssessmentPolicy struct {
	PassPct      int
	FinalPassPct int
}

func DefaultAssessmentPolicy() AssessmentPolicy {
	return AssessmentPolicy{PassPct: DefaultPassPct, FinalPassPct: DefaultFinalPassPct}
}

// withDefaults replaces marks outside 1..100 with the defaults.
func (p AssessmentPolicy) withDefaults() AssessmentPolicy {
	if p.PassPct <= 0 || p.PassPct > 100 {
		p.PassPct = DefaultPassPct
	}
	if p.FinalPassPct <= 0 || p.FinalPassPct > 100 {
		p.FinalPassPct = DefaultFinalPassPct
	}
	return p
}

type assessmentService struct {
	plans       repository.LearningPlanRepo
	items       repository.LearningItemRepo
	assessments repository.AssessmentRepo
	progress    ProgressService
	uow         db.UnitOfWork
	writer      intelligence.QuizWriter
	policy      AssessmentPolicy
	observer    UseCaseObserver
}

func NewAssessmentService(
	plans repository.LearningPlanRepo,
	items repository.LearningItemRepo,
	assessments repository.AssessmentRepo,
	progress ProgressService,
	uow db.UnitOfWork,
	writer intelligence.QuizWriter,
	policy AssessmentPolicy,
	observers ...UseCaseObserver,
) AssessmentService {
	return &assessmentService{
		plans:       plans,
		items:       items,
		assessments: assessments,
		progress:    progress,
		uow:         uow,
		writer:      writer,
		policy:      policy.withDefaults(),
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *assessmentService) item(ctx context.Context, planRef string, orderIndex int) (*domain.LearningPlan, *domain.LearningItem, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, nil, err
	}
	if !plan.Learnable() {
		return nil, nil, fmt.Errorf("%w: plan %s is %s", ErrPlanNotLearnable, plan.DisplayID(), plan.Status)
	}
	item, err := s.items.GetByOrder(ctx, plan.ID, orderIndex)
	if err != nil {
		return nil, nil, err
	}
	return plan, item, nil
}

func (s *assessmentService) Generate(ctx context.Context, planRef string, orderIndex int) (a *domain.Assessment, err error) {
	fields := map[string]any{"plan": planRef, "module": orderIndex}
	defer track(ctx, s.observer, "quiz-generate", fields)(&err)

	if s.writer == nil {
		return nil, fmt.Errorf("generating quiz: %w", llm.ErrDisabled)
	}
	plan, item, err := s.item(ctx, planRef, orderIndex)
	if err != nil {
		return nil, err
	}

	proficiency := intelligence.LearnerContextFor(plan, domain.LearnerProfile{}).Proficiency
	questions, err := s.writer.Write(ctx, item, item.Content, proficiency)
	if err != nil {
		return nil, err
	}
	a = &domain.Assessment{
		ID:        uuid.New().String(),
		Kind:      domain.AssessmentModule,
		ItemID:    item.ID,
		PlanID:    plan.ID,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	fields["questions"] = len(questions)
	if err = s.assessments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *assessmentService) Submit(ctx context.Context, planRef string, orderIndex int, answers []string) (res *SubmitResult, err error) {
	fields := map[string]any{"plan": planRef, "module": orderIndex}
	defer track(ctx, s.observer, "quiz-submit", fields)(&err)

	_, item, err := s.item(ctx, planRef, orderIndex)
	if err != nil {
		return nil, err
	}
	a, err := s.assessments.LatestForItem(ctx, item.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("module %d has no quiz yet: %w", orderIndex, err)
	}
	if err != nil {
		return nil, err
	}

	score, passed, err := a.Grade(answers, s.policy.PassPct, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = s.assessments.Update(ctx, a); err != nil {
		return nil, err
	}
	fields["score"] = score
	fields["passed"] = passed

	res = &SubmitResult{Assessment: a, Score: score, Passed: passed, PassPct: s.policy.PassPct}
	if passed && item.Status != domain.ItemCompleted {
		if _, err = s.progress.CompleteItem(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("completing module after pass: %w", err)
		}
		res.ItemCompleted = true
	}
	return res, nil
}

// finishedPlan resolves a plan whose modules are all completed.
func (s *assessmentService) finishedPlan(ctx context.Context, planRef string) (*domain.LearningPlan, []*domain.LearningItem, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, nil, err
	}
	if !plan.Learnable() {
		return nil, nil, fmt.Errorf("%w: plan %s is %s", ErrPlanNotLearnable, plan.DisplayID(), plan.Status)
	}
	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	if !domain.AllCompleted(items) {
		done := 0
		for _, it := range items {
			if it.Status == domain.ItemCompleted {
				done++
			}
		}
		return nil, nil, fmt.Errorf("%w: %d of %d modules done", ErrModulesIncomplete, done, len(items))
	}
	return plan, items, nil
}

func (s *assessmentService) GenerateFinal(ctx context.Context, planRef string) (a *domain.Assessment, err error) {
	fields := map[string]any{"plan": planRef}
	defer track(ctx, s.observer, "final-quiz-generate", fields)(&err)

	if s.writer == nil {
		return nil, fmt.Errorf("generating final quiz: %w", llm.ErrDisabled)
	}
	plan, items, err := s.finishedPlan(ctx, planRef)
	if err != nil {
		return nil, err
	}

	questions, err := s.writer.WriteFinal(ctx, plan, items)
	if err != nil {
		return nil, err
	}
	a = &domain.Assessment{
		ID:        uuid.New().String(),
		Kind:      domain.AssessmentFinal,
		PlanID:    plan.ID,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	fields["questions"] = len(questions)
	if err = s.assessments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SubmitFinal grades the latest final quiz. The graded attempt and the plan
// completion are stored together.
func (s *assessmentService) SubmitFinal(ctx context.Context, planRef string, answers []string) (res *SubmitResult, err error) {
	fields := map[string]any{"plan": planRef}
	defer track(ctx, s.observer, "final-quiz-submit", fields)(&err)

	plan, _, err := s.finishedPlan(ctx, planRef)
	if err != nil {
		return nil, err
	}
	a, err := s.assessments.LatestFinalForPlan(ctx, plan.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("plan %s has no final quiz yet: %w", plan.DisplayID(), err)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	score, passed, err := a.Grade(answers, s.policy.FinalPassPct, now)
	if err != nil {
		return nil, err
	}
	fields["score"] = score
	fields["passed"] = passed

	res = &SubmitResult{Assessment: a, Score: score, Passed: passed, PassPct: s.policy.FinalPassPct}
	completes := passed && plan.Status != domain.PlanCompleted
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteAssessmentRepo(tx).Update(ctx, a); err != nil {
			return err
		}
		if !completes {
			return nil
		}
		if err := plan.Complete(now); err != nil {
			return err
		}
		return repository.NewSQLiteLearningPlanRepo(tx).Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	res.PlanCompleted = completes
	fields["plan_completed"] = completes
	return res, nil
}
