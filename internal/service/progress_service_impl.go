package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/learnpath/internal/db"
	"github.com/alexanderramin/learnpath/internal/domain"
	"github.com/alexanderramin/learnpath/internal/pace"
	"github.com/alexanderramin/learnpath/internal/repository"
)

type progressService struct {
	plans    repository.LearningPlanRepo
	items    repository.LearningItemRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProgressService(
	plans repository.LearningPlanRepo,
	items repository.LearningItemRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProgressService {
	return &progressService{plans: plans, items: items, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Start opens a module. Modules unlock in order: every module but the first
// needs its predecessor completed. The first start moves the plan to
// in_progress.
func (s *progressService) Start(ctx context.Context, planRef string, orderIndex int) (item *domain.LearningItem, err error) {
	fields := map[string]any{"plan": planRef, "module": orderIndex}
	defer track(ctx, s.observer, "item-start", fields)(&err)

	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	fields["plan_id"] = plan.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLiteLearningPlanRepo(tx)
		txItems := repository.NewSQLiteLearningItemRepo(tx)

		plan, err := txPlans.GetByID(ctx, plan.ID)
		if err != nil {
			return err
		}
		if plan.Status != domain.PlanApproved && plan.Status != domain.PlanInProgress {
			return fmt.Errorf("%w: plan %s is %s", ErrPlanNotLearnable, plan.DisplayID(), plan.Status)
		}
		items, err := txItems.ListByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		item, err = itemByOrder(items, orderIndex)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemNotStarted && !domain.CanStart(items, orderIndex) {
			return fmt.Errorf("%w: complete module %d first", domain.ErrItemLocked, orderIndex-1)
		}

		now := time.Now().UTC()
		if err := item.Start(now); err != nil {
			return err
		}
		if err := txItems.Update(ctx, item); err != nil {
			return err
		}
		if plan.Status == domain.PlanApproved {
			if err := plan.Begin(now); err != nil {
				return err
			}
			return txPlans.Update(ctx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *progressService) Complete(ctx context.Context, planRef string, orderIndex int) (*domain.LearningItem, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByOrder(ctx, plan.ID, orderIndex)
	if err != nil {
		return nil, err
	}
	return s.CompleteItem(ctx, item.ID)
}

// CompleteItem marks a module completed. Completing an item that was never
// started is allowed only when it is unlocked. The plan itself completes
// when its final quiz is passed, not with its last item.
func (s *progressService) CompleteItem(ctx context.Context, itemID string) (item *domain.LearningItem, err error) {
	fields := map[string]any{"item_id": itemID}
	defer track(ctx, s.observer, "item-complete", fields)(&err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLiteLearningPlanRepo(tx)
		txItems := repository.NewSQLiteLearningItemRepo(tx)

		found, err := txItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		plan, err := txPlans.GetByID(ctx, found.PlanID)
		if err != nil {
			return err
		}
		if !plan.Learnable() {
			return fmt.Errorf("%w: plan %s is %s", ErrPlanNotLearnable, plan.DisplayID(), plan.Status)
		}
		items, err := txItems.ListByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		item, err = itemByOrder(items, found.OrderIndex)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemNotStarted && !domain.CanStart(items, item.OrderIndex) {
			return fmt.Errorf("%w: complete module %d first", domain.ErrItemLocked, item.OrderIndex-1)
		}
		fields["plan_id"] = plan.ID
		fields["module"] = item.OrderIndex

		now := time.Now().UTC()
		if err := item.Complete(now); err != nil {
			return err
		}
		if err := txItems.Update(ctx, item); err != nil {
			return err
		}
		if plan.Status == domain.PlanApproved {
			if err := plan.Begin(now); err != nil {
				return err
			}
			return txPlans.Update(ctx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *progressService) Summary(ctx context.Context, planRef string) (*Progress, error) {
	plan, err := resolvePlan(ctx, s.plans, planRef)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		Plan:       plan,
		Items:      items,
		Total:      len(items),
		Pct:        domain.ProgressPct(items),
		HoursTotal: domain.TotalHours(items),
	}
	for _, it := range items {
		if it.Status == domain.ItemCompleted {
			p.Completed++
			p.HoursCompleted += it.EstimatedHours
			continue
		}
		if p.Next == nil {
			p.Next = it
		}
	}
	p.FinalQuizDue = p.Total > 0 && p.Completed == p.Total && plan.Status != domain.PlanCompleted
	p.Pace = pace.Compute(pace.Input{
		Now:            time.Now().UTC(),
		StartedAt:      plan.ApprovedAt,
		Months:         plan.Months,
		HoursPerWeek:   plan.HoursPerWeek,
		HoursTotal:     p.HoursTotal,
		HoursCompleted: p.HoursCompleted,
	})
	return p, nil
}
